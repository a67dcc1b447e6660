package http

import "github.com/mrlokans/bookshelf/internal/session"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog BookCatalog
	Covers  CoverStore
	Health  HealthChecker

	// Sessions carry flash messages between the form post and the redirect.
	// Optional.
	Sessions *session.Manager

	// CSRF protection for the HTML form. Disabled when empty.
	CSRFSecret    []byte
	SecureCookies bool

	// Read-only mode blocks every write route.
	ReadOnly bool

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Uploaded covers are served from UploadsDir under UploadsURLPrefix.
	UploadsDir       string
	UploadsURLPrefix string

	// ExposeErrors adds internal error text to 5xx responses (development only).
	ExposeErrors bool

	// Application info
	Version string
}

package http

import (
	"html/template"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/readonly"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// HTML pages are registered only when TemplatesPath is set.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(SecurityHeadersMiddleware())

	if cfg.ExposeErrors {
		router.Use(func(c *gin.Context) {
			c.Set(contextKeyExposeErrors, true)
			c.Next()
		})
	}

	readOnly := readonly.NewMiddleware(cfg.ReadOnly)
	if readOnly.IsEnabled() {
		log.Printf("Read-only mode enabled - write operations will be blocked")
	}
	router.Use(readOnly.InjectContext())
	router.Use(readOnly.Handler())

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}
	if cfg.UploadsDir != "" {
		prefix := cfg.UploadsURLPrefix
		if prefix == "" {
			prefix = "/uploads"
		}
		router.Static(prefix, cfg.UploadsDir)
	}

	health := NewHealthController(cfg.Health, cfg.Version)
	booksController := NewBooksController(cfg.Catalog, cfg.Covers)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Books API endpoints
	api := router.Group("/api")
	api.GET("/books", booksController.List)
	api.POST("/books", booksController.Create)
	api.GET("/books/:slug", booksController.Get)
	api.PATCH("/books/:slug", booksController.Update)

	if cfg.TemplatesPath == "" {
		return router
	}

	tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	uiController := NewUIController(cfg.Catalog, cfg.Covers, cfg.Sessions)

	// UI routes. CSRF must run before the session so that the session
	// context is added on top of the request CSRF replaces.
	ui := router.Group("/")
	if len(cfg.CSRFSecret) > 0 {
		ui.Use(CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.Sessions != nil {
		ui.Use(cfg.Sessions.LoadSave())
	}
	ui.GET("/", uiController.BooksPage)
	ui.GET("/books/:slug", uiController.BookPage)
	ui.GET("/new-book", uiController.NewBookPage)
	ui.POST("/books", uiController.CreateBook)

	return router
}

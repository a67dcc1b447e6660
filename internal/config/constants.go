package config

// Default paths and limits
const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultUploadsDir is where uploaded cover images are stored by default
	DefaultUploadsDir = "./public/uploads"

	// DefaultMaxCoverBytes caps a single cover upload (5 MiB)
	DefaultMaxCoverBytes = 5 * 1024 * 1024
)

package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Uploads
		UI
		Sessions
		ReadOnly
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		Environment              string // "development" exposes error details in API responses
	}
	Database struct {
		Path           string
		QueryTimeout   time.Duration // Upper bound for a single store call
		ConnectTimeout time.Duration // Upper bound for opening + migrating + pinging
	}
	Uploads struct {
		Dir          string // Where cover images are written
		URLPrefix    string // Public path the directory is served under
		MaxFileBytes int64
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Sessions struct {
		Secret        string // CSRF key; hex or raw. Generated at startup if empty
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	ReadOnly struct {
		Enabled bool // Block every write route
	}
)

// IsDevelopment reports whether the app runs in development mode.
func (g Global) IsDevelopment() bool {
	return g.Environment == "development"
}

func NewConfig() *Config {
	// Local overrides; missing file is fine.
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("app_env", "production")

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_query_timeout", "5s")
	v.SetDefault("database_connect_timeout", "10s")

	v.SetDefault("uploads_dir", DefaultUploadsDir)
	v.SetDefault("uploads_url_prefix", "/uploads")
	v.SetDefault("uploads_max_file_bytes", DefaultMaxCoverBytes)

	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	v.SetDefault("session_secret", "")
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("session_secure_cookies", true)

	v.SetDefault("read_only_mode", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Environment:              v.GetString("APP_ENV"),
		},
		Database: Database{
			Path:           v.GetString("DATABASE_PATH"),
			QueryTimeout:   v.GetDuration("DATABASE_QUERY_TIMEOUT"),
			ConnectTimeout: v.GetDuration("DATABASE_CONNECT_TIMEOUT"),
		},
		Uploads: Uploads{
			Dir:          v.GetString("UPLOADS_DIR"),
			URLPrefix:    v.GetString("UPLOADS_URL_PREFIX"),
			MaxFileBytes: v.GetInt64("UPLOADS_MAX_FILE_BYTES"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Sessions: Sessions{
			Secret:        v.GetString("SESSION_SECRET"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SESSION_SECURE_COOKIES"),
		},
		ReadOnly: ReadOnly{
			Enabled: v.GetBool("READ_ONLY_MODE"),
		},
	}
}

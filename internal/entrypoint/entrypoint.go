package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/session"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	if !cfg.Global.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logLevel := logger.Warn
	if cfg.Global.IsDevelopment() {
		logLevel = logger.Info
	}
	conn := database.NewConnector(database.SQLiteDialer(cfg.Database, logLevel))

	// Sessions live in the catalog database, so the first connection is made
	// at startup rather than on the first request.
	db, err := conn.DB(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}

	sessions, err := session.NewManager(sqlDB, cfg.Sessions)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}

	coverStore, err := covers.NewStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix, cfg.Uploads.MaxFileBytes)
	if err != nil {
		log.Fatalf("Failed to create upload store: %v", err)
	}
	log.Printf("Cover uploads stored in %s (max %d bytes)", coverStore.Dir(), coverStore.MaxBytes())

	service := catalog.NewService(books.NewRepository(conn, cfg.Database.QueryTimeout))

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Catalog:          service,
		Covers:           coverStore,
		Health:           conn,
		Sessions:         sessions,
		CSRFSecret:       csrfSecret(cfg.Sessions.Secret),
		SecureCookies:    cfg.Sessions.SecureCookies,
		ReadOnly:         cfg.ReadOnly.Enabled,
		TemplatesPath:    cfg.UI.TemplatesPath,
		StaticPath:       cfg.UI.StaticPath,
		UploadsDir:       coverStore.Dir(),
		UploadsURLPrefix: cfg.Uploads.URLPrefix,
		ExposeErrors:     cfg.Global.IsDevelopment(),
		Version:          version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	})
}

// csrfSecret decodes a configured hex secret, falls back to the raw bytes,
// and generates a random one when nothing is configured.
func csrfSecret(configured string) []byte {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret
		}
		return []byte(configured)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}
	log.Printf("Generated CSRF secret (set SESSION_SECRET to persist across restarts)")
	return secret
}

package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// State is the lifecycle position of a Connector.
type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "uninitialized"
	}
}

// DialFunc opens a ready-to-use handle.
type DialFunc func(ctx context.Context) (*gorm.DB, error)

const connectKey = "connect"

// Connector lazily opens one database handle per process and hands the same
// handle to every caller.
//
// Callers arriving while a connection attempt is in flight wait for that
// attempt instead of starting their own. A failed attempt is forgotten so the
// next caller retries; a handle, once obtained, is kept for good.
type Connector struct {
	dial  DialFunc
	group singleflight.Group

	mu    sync.RWMutex
	db    *gorm.DB
	state State
}

// NewConnector creates a connector around a dial function.
func NewConnector(dial DialFunc) *Connector {
	return &Connector{dial: dial}
}

// DB returns the shared handle, connecting on first use. ctx only bounds how
// long this caller waits; the shared attempt itself is not cancelled by it.
func (c *Connector) DB(ctx context.Context) (*gorm.DB, error) {
	c.mu.RLock()
	db := c.db
	c.mu.RUnlock()
	if db != nil {
		return db, nil
	}

	attempt := c.group.DoChan(connectKey, func() (any, error) {
		return c.connect(context.WithoutCancel(ctx))
	})

	select {
	case res := <-attempt:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*gorm.DB), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Connector) connect(ctx context.Context) (*gorm.DB, error) {
	c.mu.Lock()
	if c.db != nil {
		db := c.db
		c.mu.Unlock()
		return db, nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	db, err := c.dial(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateUninitialized
		log.Printf("Database connection failed: %v", err)
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	c.db = db
	c.state = StateConnected
	return db, nil
}

// State reports where the connector is in its lifecycle.
func (c *Connector) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Ping checks that the shared handle is usable.
func (c *Connector) Ping(ctx context.Context) error {
	db, err := c.DB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the handle if one was opened. Used on shutdown only.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLiteDialer opens the catalog database at cfg.Path, migrates the schema
// (including the unique slug index) and pings it.
func SQLiteDialer(cfg config.Database, logLevel logger.LogLevel) DialFunc {
	return func(ctx context.Context) (*gorm.DB, error) {
		if cfg.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
			defer cancel()
		}

		dsn := cfg.Path + "?_busy_timeout=5000&_journal_mode=WAL"
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logLevel),
			TranslateError: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)

		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		if err := db.WithContext(ctx).AutoMigrate(&entities.Book{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		log.Printf("Database initialized successfully at %s", cfg.Path)
		return db, nil
	}
}

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Older drivers do not translate; fall back to the SQLite message.
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

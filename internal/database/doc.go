// Package database owns the process-wide database handle.
//
// # Connection lifecycle
//
// A Connector starts uninitialized and dials on first use:
//
//	conn := database.NewConnector(database.SQLiteDialer(cfg.Database, logger.Warn))
//	db, err := conn.DB(ctx)
//
// Concurrent callers share one in-flight attempt. A failed attempt returns the
// connector to the uninitialized state so the next call dials again. Once
// connected the handle is reused for the life of the process.
//
// # Sub-packages
//
//	database/
//	├── database.go      # Connector, SQLite dialer, migrations
//	└── books/           # Book catalog repository (implements catalog.Store)
package database

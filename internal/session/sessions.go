// Package session keeps short-lived per-visitor state (flash messages)
// in the catalog database.
package session

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/bookshelf/internal/config"
)

const keyFlash = "flash"

// Manager wraps scs.SessionManager with flash message helpers.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a session manager backed by the sessions table.
// sqlDB should be the *sql.DB underneath GORM.
func NewManager(sqlDB *sql.DB, cfg config.Sessions) (*Manager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.Lifetime

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // survives the redirect after a form post
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// SetFlash stores a one-time message shown on the next page render.
func (m *Manager) SetFlash(ctx context.Context, message string) {
	m.Put(ctx, keyFlash, message)
}

// PopFlash returns and clears the pending flash message.
func (m *Manager) PopFlash(ctx context.Context) string {
	return m.PopString(ctx, keyFlash)
}

package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/http"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// catalog.Store implementations
var _ catalog.Store = (*books.Repository)(nil)

// books.Conn implementations
var _ books.Conn = (*database.Connector)(nil)

// =============================================================================
// HTTP Dependencies
// =============================================================================

var _ http.BookCatalog = (*catalog.Service)(nil)
var _ http.CoverStore = (*covers.Store)(nil)
var _ http.HealthChecker = (*database.Connector)(nil)

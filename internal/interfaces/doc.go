// Package interfaces documents the core abstractions used throughout the application.
//
// # Data Access Interfaces
//
//   - catalog.Store: book persistence used by the catalog service (internal/catalog/service.go)
//   - books.Conn: shared database handle provider (internal/database/books/repository.go)
//
// # HTTP Interfaces
//
//   - http.BookCatalog: catalog operations used by controllers (internal/http/stores.go)
//   - http.CoverStore: cover image uploads (internal/http/stores.go)
//   - http.HealthChecker: database reachability for /health (internal/http/stores.go)
//
// # Adding a New Store Backend
//
//  1. Implement catalog.Store, returning catalog.ErrSlugConflict on a unique slug violation
//  2. Wrap connectivity and timeout failures with catalog.Persistence
//  3. Add a compile-time check to checks.go: var _ catalog.Store = (*Repository)(nil)
package interfaces

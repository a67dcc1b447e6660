package http

import (
	"context"
	"mime/multipart"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// This file consolidates the interfaces HTTP controllers depend on.

// BookCatalog is the catalog service as seen by the controllers.
type BookCatalog interface {
	Create(ctx context.Context, in catalog.BookInput) (*entities.Book, error)
	Update(ctx context.Context, slug string, patch catalog.BookPatch) (*entities.Book, error)
	GetBySlug(ctx context.Context, slug string) (*entities.Book, error)
	List(ctx context.Context) ([]entities.Book, error)
}

// CoverStore persists uploaded cover images.
type CoverStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(url string) error
	MaxBytes() int64
}

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

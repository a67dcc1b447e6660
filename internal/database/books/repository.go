// Package books stores catalog records in the books table.
//
// # Interface Implementation
//
//	var _ catalog.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(connector, cfg.Database.QueryTimeout)
//	book, err := repo.FindBySlug(ctx, "clean-code")
package books

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Conn hands out the shared database handle. *database.Connector satisfies it.
type Conn interface {
	DB(ctx context.Context) (*gorm.DB, error)
}

// Repository handles all book database operations.
type Repository struct {
	conn    Conn
	timeout time.Duration
}

// NewRepository creates a books repository. timeout bounds every call; zero
// means only the caller's context applies.
func NewRepository(conn Conn, timeout time.Duration) *Repository {
	return &Repository{conn: conn, timeout: timeout}
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// session returns a handle bound to ctx. Connection failures are persistence
// failures like any other.
func (r *Repository) session(ctx context.Context) (*gorm.DB, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, catalog.Persistence("connect", err)
	}
	return db.WithContext(ctx), nil
}

// SlugTaken reports whether a book other than excludeID holds slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	db, err := r.session(ctx)
	if err != nil {
		return false, err
	}

	query := db.Model(&entities.Book{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, translate("count books by slug", err)
	}
	return count > 0, nil
}

// Create inserts a new book.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	db, err := r.session(ctx)
	if err != nil {
		return err
	}

	if err := db.Create(book).Error; err != nil {
		book.ID = 0
		return translate("insert book", err)
	}
	return nil
}

// Update overwrites every column of an existing book except its creation time.
func (r *Repository) Update(ctx context.Context, book *entities.Book) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	db, err := r.session(ctx)
	if err != nil {
		return err
	}

	res := db.Model(book).Select("*").Omit("id", "created_at").Updates(book)
	if res.Error != nil {
		return translate("update book", res.Error)
	}
	if res.RowsAffected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// FindBySlug retrieves a book by its slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*entities.Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	db, err := r.session(ctx)
	if err != nil {
		return nil, err
	}

	var book entities.Book
	if err := db.Where("slug = ?", slug).First(&book).Error; err != nil {
		return nil, translate("find book by slug", err)
	}
	return &book, nil
}

// List returns every book, newest first. Ties on creation time fall back to
// insertion order, again newest first.
func (r *Repository) List(ctx context.Context) ([]entities.Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	db, err := r.session(ctx)
	if err != nil {
		return nil, err
	}

	books := []entities.Book{}
	if err := db.Order("created_at DESC, id DESC").Find(&books).Error; err != nil {
		return nil, translate("list books", err)
	}
	return books, nil
}

// Count returns the number of stored books.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	db, err := r.session(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&entities.Book{}).Count(&count).Error; err != nil {
		return 0, translate("count books", err)
	}
	return count, nil
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return catalog.ErrNotFound
	case database.IsUniqueViolation(err):
		return errors.Join(catalog.ErrSlugConflict, err)
	default:
		return catalog.Persistence(op, err)
	}
}

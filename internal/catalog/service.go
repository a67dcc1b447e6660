// Package catalog holds the book catalog rules: field validation, slug
// derivation and the create/update/lookup operations built on them.
//
// Within one create or update the order is fixed: validate, resolve the
// slug, commit. Nothing here locks across requests; the unique slug index in
// the store is the single source of truth and a commit that loses a race is
// retried with a freshly resolved slug.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// maxCommitAttempts bounds how many times a slug conflict at commit time is
// retried before the write is reported as a persistence failure.
const maxCommitAttempts = 5

// Store is the persistence contract the catalog needs.
type Store interface {
	// SlugTaken reports whether a book other than excludeID holds slug.
	// Storage failures are returned wrapping ErrPersistence.
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	// Create inserts a new book and sets its ID and timestamps. Returns
	// ErrSlugConflict on a unique slug violation, ErrPersistence otherwise.
	Create(ctx context.Context, book *entities.Book) error
	// Update writes every field of an existing book. Returns ErrNotFound when
	// the row is gone, ErrSlugConflict on a unique slug violation and
	// ErrPersistence otherwise.
	Update(ctx context.Context, book *entities.Book) error
	// FindBySlug loads one book. Returns ErrNotFound on a miss and
	// ErrPersistence on storage failures.
	FindBySlug(ctx context.Context, slug string) (*entities.Book, error)
	// List returns every book, newest first, as a non-nil slice. Storage
	// failures are returned wrapping ErrPersistence.
	List(ctx context.Context) ([]entities.Book, error)
}

// Service implements the catalog operations.
type Service struct {
	store     Store
	validator *Validator
}

// NewService creates a catalog service on top of a store.
func NewService(store Store) *Service {
	return &Service{
		store:     store,
		validator: NewValidator(),
	}
}

// Create validates the input, assigns a unique slug and stores the book.
func (s *Service) Create(ctx context.Context, in BookInput) (*entities.Book, error) {
	in.Normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	book := &entities.Book{}
	in.applyTo(book)

	if err := s.commit(ctx, book, true, s.store.Create); err != nil {
		return nil, err
	}
	return book, nil
}

// Update applies a partial change to the book stored under slug. The slug is
// re-derived only when the title actually changes.
func (s *Service) Update(ctx context.Context, slug string, patch BookPatch) (*entities.Book, error) {
	book, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	in := inputFromBook(book)
	patch.apply(&in)
	in.Normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	titleChanged := in.Title != book.Title
	in.applyTo(book)

	if err := s.commit(ctx, book, titleChanged, s.store.Update); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBySlug looks a book up by slug. Malformed slugs are rejected before the
// store is touched.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*entities.Book, error) {
	if slug == "" {
		return nil, fieldError("slug", "is required")
	}
	if !ValidSlug(slug) {
		return nil, fieldError("slug", "may only contain lowercase letters, numbers, hyphens and underscores")
	}
	return s.store.FindBySlug(ctx, slug)
}

// List returns every book, newest first.
func (s *Service) List(ctx context.Context) ([]entities.Book, error) {
	return s.store.List(ctx)
}

// commit writes the book, resolving its slug first when resolve is set.
// A slug conflict reported by the store re-runs resolution and the write.
func (s *Service) commit(ctx context.Context, book *entities.Book, resolve bool, write func(context.Context, *entities.Book) error) error {
	original := book.Slug

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		if resolve {
			slug, err := s.ResolveSlug(ctx, book.Title, book.ID)
			if err != nil {
				book.Slug = original
				return err
			}
			book.Slug = slug
		}

		err := write(ctx, book)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSlugConflict) {
			book.Slug = original
			return err
		}
		if !resolve {
			// The slug was not touched, so the conflict cannot be fixed here.
			return fmt.Errorf("write book %d: %w: %w", book.ID, ErrPersistence, err)
		}
		log.Printf("catalog: slug %q lost a race on commit (attempt %d/%d), resolving again", book.Slug, attempt, maxCommitAttempts)
	}

	book.Slug = original
	return fmt.Errorf("assign slug for %q after %d attempts: %w", book.Title, maxCommitAttempts, ErrPersistence)
}

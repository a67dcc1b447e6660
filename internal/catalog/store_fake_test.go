package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// memoryStore is an in-memory Store that enforces slug uniqueness on write
// the way the unique index does.
type memoryStore struct {
	mu     sync.Mutex
	books  map[uint]*entities.Book
	nextID uint

	// hideTaken makes SlugTaken answer "free" this many times, simulating a
	// concurrent writer that commits between our check and our write.
	hideTaken int
	// takenErr is returned from SlugTaken when set.
	takenErr error

	slugChecks int
	lookups    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{books: make(map[uint]*entities.Book), nextID: 1}
}

func (m *memoryStore) SlugTaken(_ context.Context, slug string, excludeID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slugChecks++
	if m.takenErr != nil {
		return false, m.takenErr
	}
	if m.hideTaken > 0 {
		m.hideTaken--
		return false, nil
	}
	return m.holderLocked(slug, excludeID) != nil, nil
}

func (m *memoryStore) holderLocked(slug string, excludeID uint) *entities.Book {
	for id, b := range m.books {
		if id != excludeID && b.Slug == slug {
			return b
		}
	}
	return nil
}

func (m *memoryStore) Create(_ context.Context, book *entities.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holderLocked(book.Slug, 0) != nil {
		return ErrSlugConflict
	}
	book.ID = m.nextID
	m.nextID++
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	stored := *book
	m.books[book.ID] = &stored
	return nil
}

func (m *memoryStore) Update(_ context.Context, book *entities.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[book.ID]; !ok {
		return ErrNotFound
	}
	if m.holderLocked(book.Slug, book.ID) != nil {
		return ErrSlugConflict
	}
	book.UpdatedAt = time.Now()
	stored := *book
	m.books[book.ID] = &stored
	return nil
}

func (m *memoryStore) FindBySlug(_ context.Context, slug string) (*entities.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if b := m.holderLocked(slug, 0); b != nil {
		found := *b
		return &found, nil
	}
	return nil, ErrNotFound
}

func (m *memoryStore) List(_ context.Context) ([]entities.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// insert stores a book with a fixed slug, bypassing resolution.
func (m *memoryStore) insert(title, slug string) *entities.Book {
	b := validBook(title)
	b.Slug = slug
	if err := m.Create(context.Background(), b); err != nil {
		panic(err)
	}
	return b
}

func validBook(title string) *entities.Book {
	return &entities.Book{
		Title:         title,
		Description:   "desc",
		Authors:       []string{"Someone"},
		PublishedYear: "2008",
		Tags:          []string{"tech"},
		Language:      "English",
		Publisher:     "Prentice Hall",
		ISBN:          "9780132350884",
		PageCount:     464,
		Format:        "Paperback",
		Edition:       "1st",
		Rating:        4.5,
		CoverImageURL: "/uploads/cover.png",
	}
}

func validInput(title string) BookInput {
	pages := 464
	rating := 4.5
	return BookInput{
		Title:         title,
		Description:   "A handbook of agile software craftsmanship",
		Authors:       []string{"Robert C. Martin"},
		PublishedYear: "2008",
		Tags:          []string{"software", "craft"},
		Language:      "English",
		Publisher:     "Prentice Hall",
		ISBN:          "9780132350884",
		PageCount:     &pages,
		Format:        "Paperback",
		Edition:       "1st",
		Rating:        &rating,
		CoverImageURL: "/uploads/clean-code.png",
	}
}

package http

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testPNG = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type testApp struct {
	router  *gin.Engine
	conn    *database.Connector
	service *catalog.Service
	covers  *covers.Store
}

// setupTestApp wires the full stack on a fresh SQLite file. configure may
// adjust the router configuration before the router is built.
func setupTestApp(t *testing.T, configure func(*RouterConfig)) *testApp {
	t.Helper()
	dir := t.TempDir()

	conn := database.NewConnector(database.SQLiteDialer(config.Database{
		Path:           filepath.Join(dir, "bookshelf.db"),
		ConnectTimeout: 5 * time.Second,
	}, logger.Silent))
	t.Cleanup(func() { conn.Close() })

	db, err := conn.DB(context.Background())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sessions, err := session.NewManager(sqlDB, config.Sessions{Lifetime: time.Hour})
	require.NoError(t, err)

	coverStore, err := covers.NewStore(filepath.Join(dir, "uploads"), "/uploads", 1024)
	require.NoError(t, err)

	service := catalog.NewService(books.NewRepository(conn, 5*time.Second))

	cfg := RouterConfig{
		Catalog:          service,
		Covers:           coverStore,
		Health:           conn,
		Sessions:         sessions,
		CSRFSecret:       []byte("test-secret-key-32-bytes-long!!!"),
		TemplatesPath:    "../../templates",
		StaticPath:       "../../static",
		UploadsDir:       coverStore.Dir(),
		UploadsURLPrefix: "/uploads",
		Version:          "test",
	}
	if configure != nil {
		configure(&cfg)
	}

	return &testApp{
		router:  NewRouter(cfg),
		conn:    conn,
		service: service,
		covers:  coverStore,
	}
}

func (a *testApp) seed(t *testing.T, title string) *entities.Book {
	t.Helper()
	book, err := a.service.Create(context.Background(), validBookInput(title))
	require.NoError(t, err)
	return book
}

func validBookInput(title string) catalog.BookInput {
	pages, rating := 464, 4.5
	return catalog.BookInput{
		Title:         title,
		Description:   "A handbook of agile software craftsmanship",
		Authors:       []string{"Robert C. Martin"},
		Tags:          []string{"software", "craft"},
		PublishedYear: "2008",
		Language:      "English",
		Publisher:     "Prentice Hall",
		ISBN:          "9780132350884",
		PageCount:     &pages,
		Format:        "Paperback",
		Edition:       "1st",
		Rating:        &rating,
		CoverImageURL: testCoverURL,
	}
}

// testCoverURL is a pre-resolved cover; an uploaded file replaces it.
const testCoverURL = "https://covers.openlibrary.org/b/isbn/9780132350884-L.jpg"

// validFormFields returns the text fields of a valid create form.
func validFormFields(title string) map[string][]string {
	return map[string][]string{
		"title":         {title},
		"description":   {"A handbook of agile software craftsmanship"},
		"authors":       {"Robert C. Martin"},
		"tags":          {"software", "craft"},
		"publishedYear": {"2008"},
		"language":      {"English"},
		"publisher":     {"Prentice Hall"},
		"isbn":          {"9780132350884"},
		"pageCount":     {"464"},
		"format":        {"Paperback"},
		"edition":       {"1st"},
		"rating":        {"4.5"},
		"coverImageUrl": {testCoverURL},
	}
}

type upload struct {
	contentType string
	filename    string
	content     []byte
}

// multipartBody encodes fields and an optional cover upload.
func multipartBody(t *testing.T, fields map[string][]string, cover *upload) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	if cover != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, coverField, cover.filename))
		h.Set("Content-Type", cover.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(cover.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

// fakeCatalog returns fixed errors for every operation.
type fakeCatalog struct {
	err error
}

func (f fakeCatalog) Create(context.Context, catalog.BookInput) (*entities.Book, error) {
	return nil, f.err
}

func (f fakeCatalog) Update(context.Context, string, catalog.BookPatch) (*entities.Book, error) {
	return nil, f.err
}

func (f fakeCatalog) GetBySlug(context.Context, string) (*entities.Book, error) {
	return nil, f.err
}

func (f fakeCatalog) List(context.Context) ([]entities.Book, error) {
	return nil, f.err
}

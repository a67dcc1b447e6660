package http

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/readonly"
	"github.com/mrlokans/bookshelf/internal/session"
)

const createdFlash = "Book created successfully"

// templateFuncs are available to every page template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"rating": func(rating float64) string {
			return strconv.FormatFloat(rating, 'f', 1, 64)
		},
	}
}

type UIController struct {
	catalog  BookCatalog
	intake   *bookIntake
	sessions *session.Manager
}

func NewUIController(catalog BookCatalog, covers CoverStore, sessions *session.Manager) *UIController {
	return &UIController{
		catalog:  catalog,
		intake:   &bookIntake{covers: covers},
		sessions: sessions,
	}
}

// bookForm is what the form template renders: submitted values plus errors.
type bookForm struct {
	Title         string
	Description   string
	Authors       string
	Tags          string
	PublishedYear string
	Language      string
	Publisher     string
	ISBN          string
	PageCount     string
	Format        string
	Edition       string
	Rating        string
	CoverImageURL string
}

func (controller *UIController) BooksPage(c *gin.Context) {
	books, err := controller.catalog.List(c.Request.Context())
	if err != nil {
		controller.pageError(c, err, "list books")
		return
	}

	c.HTML(http.StatusOK, "books", gin.H{
		"Books":      books,
		"TotalBooks": len(books),
		"Flash":      controller.popFlash(c),
		"ReadOnly":   c.GetBool(readonly.ContextKey),
	})
}

func (controller *UIController) BookPage(c *gin.Context) {
	book, err := controller.catalog.GetBySlug(c.Request.Context(), strings.TrimSpace(c.Param("slug")))
	if err != nil {
		controller.pageError(c, err, "get book")
		return
	}

	c.HTML(http.StatusOK, "book", gin.H{
		"Book":  book,
		"Flash": controller.popFlash(c),
	})
}

func (controller *UIController) NewBookPage(c *gin.Context) {
	c.HTML(http.StatusOK, "book_form", gin.H{
		"Form":      bookForm{},
		"Errors":    map[string]string{},
		"CSRFField": csrfField(c),
	})
}

func (controller *UIController) CreateBook(c *gin.Context) {
	in, coverURL, err := controller.intake.decode(c)
	if err == nil {
		var book *entities.Book
		if book, err = controller.catalog.Create(c.Request.Context(), in); err == nil {
			if controller.sessions != nil {
				controller.sessions.SetFlash(c.Request.Context(), createdFlash)
			}
			c.Redirect(http.StatusSeeOther, "/books/"+url.PathEscape(book.Slug))
			return
		}
	}
	controller.intake.discard(coverURL)
	if coverURL != "" && in.CoverImageURL == coverURL {
		// The file is gone; do not offer its URL back.
		in.CoverImageURL = ""
	}

	var ve *catalog.ValidationError
	var ce *coverError
	switch {
	case errors.As(err, &ve):
		controller.renderForm(c, in, ve.Fields, "")
	case errors.As(err, &ce):
		controller.renderForm(c, in, map[string]string{coverField: ce.message}, "")
	case errors.Is(err, errUnsupportedMediaType), errors.Is(err, errMalformedBody):
		controller.renderForm(c, in, nil, "Invalid form data format")
	default:
		controller.pageError(c, err, "create book")
	}
}

func (controller *UIController) renderForm(c *gin.Context, in catalog.BookInput, fieldErrors map[string]string, message string) {
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	c.HTML(http.StatusBadRequest, "book_form", gin.H{
		"Form":      formFromInput(in),
		"Errors":    fieldErrors,
		"Error":     message,
		"CSRFField": csrfField(c),
	})
}

func (controller *UIController) popFlash(c *gin.Context) string {
	if controller.sessions == nil {
		return ""
	}
	return controller.sessions.PopFlash(c.Request.Context())
}

// pageError renders a plain-text error page for a catalog failure.
func (controller *UIController) pageError(c *gin.Context, err error, context string) {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		c.String(http.StatusBadRequest, "Invalid book address")
	case errors.Is(err, catalog.ErrNotFound):
		c.String(http.StatusNotFound, "Book not found")
	case isRetryable(err):
		log.Printf("Persistence error (%s): %v", context, err)
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.String(http.StatusServiceUnavailable, "The catalog is temporarily unavailable. Please try again.")
	default:
		log.Printf("Internal error (%s): %v", context, err)
		c.String(http.StatusInternalServerError, "Something went wrong")
	}
}

func formFromInput(in catalog.BookInput) bookForm {
	form := bookForm{
		Title:         in.Title,
		Description:   in.Description,
		Authors:       strings.Join(in.Authors, ", "),
		Tags:          strings.Join(in.Tags, ", "),
		PublishedYear: in.PublishedYear,
		Language:      in.Language,
		Publisher:     in.Publisher,
		ISBN:          in.ISBN,
		Format:        in.Format,
		Edition:       in.Edition,
		CoverImageURL: in.CoverImageURL,
	}
	if in.PageCount != nil {
		form.PageCount = strconv.Itoa(*in.PageCount)
	}
	if in.Rating != nil {
		form.Rating = strconv.FormatFloat(*in.Rating, 'f', -1, 64)
	}
	return form
}

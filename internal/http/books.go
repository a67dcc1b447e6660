package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

const bookCacheControl = "public, s-maxage=60, stale-while-revalidate=30"

type BooksController struct {
	catalog BookCatalog
	intake  *bookIntake
}

func NewBooksController(catalog BookCatalog, covers CoverStore) *BooksController {
	return &BooksController{
		catalog: catalog,
		intake:  &bookIntake{covers: covers},
	}
}

// List handles GET /api/books.
func (controller *BooksController) List(c *gin.Context) {
	books, err := controller.catalog.List(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Books fetched successfully",
		"books":   books,
	})
}

// Create handles POST /api/books.
func (controller *BooksController) Create(c *gin.Context) {
	in, coverURL, err := controller.intake.decode(c)
	if err != nil {
		controller.intake.discard(coverURL)
		respondIntakeError(c, err)
		return
	}

	book, err := controller.catalog.Create(c.Request.Context(), in)
	if err != nil {
		controller.intake.discard(coverURL)
		respondCatalogError(c, err, "create book")
		return
	}

	respondCreated(c, gin.H{
		"message": "Book created successfully",
		"book":    book,
	})
}

// Get handles GET /api/books/:slug.
func (controller *BooksController) Get(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	book, err := controller.catalog.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		var ve *catalog.ValidationError
		switch {
		case errors.As(err, &ve) && ve.Field("slug") != "":
			respondBadRequest(c, slugMessage(slug))
		case errors.Is(err, catalog.ErrNotFound):
			respondNotFound(c, fmt.Sprintf("Book with slug %q not found", slug))
		default:
			respondCatalogError(c, err, "get book")
		}
		return
	}

	c.Header("Cache-Control", bookCacheControl)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    book,
	})
}

// Update handles PATCH /api/books/:slug. The body is a JSON object holding
// only the fields to change.
func (controller *BooksController) Update(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	var patch catalog.BookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}

	book, err := controller.catalog.Update(c.Request.Context(), slug, patch)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, fmt.Sprintf("Book with slug %q not found", slug))
			return
		}
		respondCatalogError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"book":    book,
	})
}

func slugMessage(slug string) string {
	if slug == "" {
		return "Slug parameter is required"
	}
	return "Invalid slug format. Only lowercase letters, numbers, hyphens, and underscores are allowed."
}

// respondIntakeError maps request decoding failures onto responses.
func respondIntakeError(c *gin.Context, err error) {
	var ce *coverError
	switch {
	case errors.Is(err, errUnsupportedMediaType):
		respondError(c, http.StatusUnsupportedMediaType, "Content-Type must be application/json, multipart/form-data or application/x-www-form-urlencoded")
	case errors.Is(err, errMalformedBody):
		respondBadRequest(c, "Invalid form data format")
	case errors.As(err, &ce):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: ce.message, Code: "invalid_cover"})
	default:
		respondCatalogError(c, err, "decode book")
	}
}

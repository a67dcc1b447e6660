package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

// contextKeyExposeErrors marks requests whose 5xx responses may carry the
// internal error text.
const contextKeyExposeErrors = "expose_errors"

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = 5

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // per-field validation messages
	Error   string `json:"error,omitempty"`   // internal error text, development only
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: message, Code: "bad_request"})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Message: message, Code: "not_found"})
}

// respondValidationError sends a 400 with every failed field.
func respondValidationError(c *gin.Context, ve *catalog.ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Validation failed",
		Code:    "validation_failed",
		Details: ve.Fields,
	})
}

// respondUnavailable logs the error and sends a 503 the client may retry.
func respondUnavailable(c *gin.Context, err error, context string) {
	log.Printf("Persistence error (%s): %v", context, err)
	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Message: "Service temporarily unavailable. Please try again.",
		Code:    "unavailable",
		Error:   exposedError(c, err),
	})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but only exposed to the client in development.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Message: "internal server error",
		Error:   exposedError(c, err),
	})
}

// respondError sends an error response with the given status code.
// Use the specific helpers (respondBadRequest, respondNotFound, etc.) when possible.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Message: message})
}

// respondCatalogError maps a catalog error onto its HTTP status.
func respondCatalogError(c *gin.Context, err error, context string) {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		respondValidationError(c, ve)
	case errors.Is(err, catalog.ErrNotFound):
		respondNotFound(c, "Book not found")
	case isRetryable(err):
		respondUnavailable(c, err, context)
	default:
		respondInternalError(c, err, context)
	}
}

// isRetryable reports whether err is a transient storage failure.
func isRetryable(err error) bool {
	return errors.Is(err, catalog.ErrPersistence) ||
		errors.Is(err, context.DeadlineExceeded)
}

func exposedError(c *gin.Context, err error) string {
	if c.GetBool(contextKeyExposeErrors) {
		return err.Error()
	}
	return ""
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

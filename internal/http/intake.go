package http

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/covers"
)

// coverField is the multipart field carrying the cover image.
const coverField = "coverImage"

// formOverhead is the room left for text fields on top of the cover size.
const formOverhead = 1 << 20

var (
	errUnsupportedMediaType = errors.New("unsupported media type")
	errMalformedBody        = errors.New("malformed request body")
)

// coverError is an upload the client has to fix.
type coverError struct {
	message string
	err     error
}

func (e *coverError) Error() string { return e.message }
func (e *coverError) Unwrap() error { return e.err }

// bookIntake turns create requests into catalog input, storing any cover
// image on the way.
type bookIntake struct {
	covers CoverStore
}

// decode reads a create request. JSON, multipart and urlencoded bodies are
// accepted. When a cover was stored, its URL is returned so the caller can
// remove it if the create fails. Form input decoded before a failure is
// returned alongside the error.
func (i *bookIntake) decode(c *gin.Context) (catalog.BookInput, string, error) {
	switch c.ContentType() {
	case binding.MIMEJSON:
		var in catalog.BookInput
		if err := c.ShouldBindJSON(&in); err != nil {
			return catalog.BookInput{}, "", fmt.Errorf("%w: %v", errMalformedBody, err)
		}
		return in, "", nil

	case binding.MIMEMultipartPOSTForm:
		return i.decodeMultipart(c)

	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return catalog.BookInput{}, "", fmt.Errorf("%w: %v", errMalformedBody, err)
		}
		in, err := catalog.DecodeForm(c.Request.PostForm)
		return in, "", err

	default:
		return catalog.BookInput{}, "", errUnsupportedMediaType
	}
}

func (i *bookIntake) decodeMultipart(c *gin.Context) (catalog.BookInput, string, error) {
	maxBytes := i.maxCoverBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return catalog.BookInput{}, "", &coverError{message: fileTooLargeMessage(maxBytes), err: covers.ErrTooLarge}
		}
		return catalog.BookInput{}, "", fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	in, err := catalog.DecodeForm(form.Value)
	if err != nil {
		return in, "", err
	}

	fh := coverFile(form)
	if fh == nil {
		return in, "", nil
	}
	if i.covers == nil {
		return in, "", &coverError{message: "Cover uploads are not enabled."}
	}

	url, err := i.covers.Save(fh)
	if err != nil {
		if covers.IsRejected(err) {
			return in, "", &coverError{message: coverRejection(err, maxBytes), err: err}
		}
		return in, "", fmt.Errorf("save cover: %w", err)
	}
	in.CoverImageURL = url
	return in, url, nil
}

// discard removes a cover stored for a request that did not produce a book.
func (i *bookIntake) discard(url string) {
	if url == "" || i.covers == nil {
		return
	}
	if err := i.covers.Remove(url); err != nil {
		log.Printf("Failed to remove orphaned cover %s: %v", url, err)
	}
}

func (i *bookIntake) maxCoverBytes() int64 {
	if i.covers == nil {
		return 0
	}
	return i.covers.MaxBytes()
}

// coverFile returns the uploaded cover, or nil when the field is absent or
// the browser sent an empty file input.
func coverFile(form *multipart.Form) *multipart.FileHeader {
	files := form.File[coverField]
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}
	return files[0]
}

func coverRejection(err error, maxBytes int64) string {
	if errors.Is(err, covers.ErrTooLarge) {
		return fileTooLargeMessage(maxBytes)
	}
	return "Invalid file type. Only JPEG, JPG, PNG, and WebP are allowed."
}

func fileTooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("File size exceeds %dMB limit.", maxBytes/(1<<20))
}

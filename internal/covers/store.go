// Package covers stores uploaded cover images on local disk and serves them
// under a public URL prefix.
package covers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrUnsupportedType = errors.New("unsupported cover image type")
	ErrTooLarge        = errors.New("cover image too large")
	// ErrContentMismatch means the bytes are not the image type they claim to be.
	ErrContentMismatch = errors.New("cover image content does not match its type")
)

// allowedTypes maps each accepted declared MIME type to the detected type its
// content must have.
var allowedTypes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/webp": "image/webp",
}

const (
	nameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	nameLength   = 13
)

// Store handles cover image uploads.
type Store struct {
	dir       string
	urlPrefix string
	maxBytes  int64
}

// NewStore creates a cover store writing into dir. Stored files are addressed
// as urlPrefix + "/" + name.
func NewStore(dir, urlPrefix string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// Dir returns the upload directory path.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes returns the largest accepted file size.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save checks an uploaded file and writes it to the upload directory.
// Returns the public URL of the stored file.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	declared := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	want, ok := allowedTypes[declared]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, declared)
	}
	if fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, fh.Size)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect cover type: %w", err)
	}
	if !detected.Is(want) {
		return "", fmt.Errorf("%w: declared %s, got %s", ErrContentMismatch, declared, detected.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	id, err := gonanoid.Generate(nameAlphabet, nameLength)
	if err != nil {
		return "", fmt.Errorf("generate cover name: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), id, detected.Extension())

	if err := s.write(src, filepath.Join(s.dir, name)); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + name, nil
}

// write copies src into target through a temp file in the same directory.
func (s *Store) write(src io.Reader, target string) error {
	tmpFile, err := os.CreateTemp(s.dir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	// Size on the header is client supplied; cap the copy as well.
	n, err := io.Copy(tmpFile, io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return fmt.Errorf("write cover: %w", err)
	}
	if n > s.maxBytes {
		return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("write cover: %w", err)
	}

	return os.Rename(tmpPath, target)
}

// Remove deletes a cover previously returned by Save. URLs outside the store
// are ignored.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return nil
	}
	name := strings.TrimPrefix(url, s.urlPrefix+"/")
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	log.Printf("covers: removed %s", name)
	return nil
}

// IsRejected reports whether err is a problem with the upload itself rather
// than with the server.
func IsRejected(err error) bool {
	return errors.Is(err, ErrUnsupportedType) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrContentMismatch)
}

package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no book matches a lookup.
	ErrNotFound = errors.New("book not found")

	// ErrSlugConflict is returned by a Store when the commit hit the unique
	// slug index. The service retries on it; callers never see it.
	ErrSlugConflict = errors.New("slug already taken")

	// ErrPersistence marks connectivity, timeout and unexpected storage
	// failures. These are retryable from the caller's point of view.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports every rule a record broke, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message recorded for a field, or "".
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Persistence wraps a storage failure so that both ErrPersistence and the
// underlying cause (e.g. context.DeadlineExceeded) match with errors.Is.
func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// fallbackSlug is used when a title has no characters that survive slugging.
const fallbackSlug = "book"

var (
	// \s is ASCII-only in RE2; \p{Z} and U+FEFF add the Unicode spaces.
	nonSlugChars   = regexp.MustCompile(`[^\w\s\p{Z}\x{FEFF}-]`)
	whitespaceRuns = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)
	hyphenRuns     = regexp.MustCompile(`-+`)
	slugPattern    = regexp.MustCompile(`^[a-z0-9\-_]+$`)
)

// Slugify turns a title into the base slug candidate:
//
//	"Clean Code"              → "clean-code"
//	"Thinking, Fast and Slow" → "thinking-fast-and-slow"
//	"  --C++ -- Primer "      → "c-primer"
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether s may be used as a lookup key.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// ResolveSlug finds the first free candidate among base, base-1, base-2, ...
// ignoring the record identified by selfID (0 for a record not yet stored).
// The result is only a best guess: the unique index decides at commit time.
func (s *Service) ResolveSlug(ctx context.Context, title string, selfID uint) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = fallbackSlug
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := s.store.SlugTaken(ctx, candidate, selfID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// BookInput is the client-supplied field map for a book. There is no slug
// field: slugs are always derived.
type BookInput struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Authors       []string `json:"authors" validate:"required,min=1"`
	PublishedYear string   `json:"publishedYear" validate:"required"`
	Tags          []string `json:"tags" validate:"required,min=1"`
	Language      string   `json:"language" validate:"required"`
	Publisher     string   `json:"publisher" validate:"required"`
	ISBN          string   `json:"isbn" validate:"required"`
	PageCount     *int     `json:"pageCount" validate:"required,gte=1"`
	Format        string   `json:"format" validate:"required"`
	Edition       string   `json:"edition" validate:"required"`
	Rating        *float64 `json:"rating" validate:"required,gte=0,lte=5"`
	CoverImageURL string   `json:"coverImageUrl" validate:"required"`
}

// Normalize trims every string and drops blank list entries, so that a list
// of blanks is treated the same as an empty list.
func (in *BookInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Authors = cleanList(in.Authors)
	in.PublishedYear = strings.TrimSpace(in.PublishedYear)
	in.Tags = cleanList(in.Tags)
	in.Language = strings.TrimSpace(in.Language)
	in.Publisher = strings.TrimSpace(in.Publisher)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Format = strings.TrimSpace(in.Format)
	in.Edition = strings.TrimSpace(in.Edition)
	in.CoverImageURL = strings.TrimSpace(in.CoverImageURL)
}

func cleanList(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// applyTo copies the input onto a book, leaving identity, slug and
// timestamps alone. Call only after validation.
func (in BookInput) applyTo(b *entities.Book) {
	b.Title = in.Title
	b.Description = in.Description
	b.Authors = append([]string(nil), in.Authors...)
	b.PublishedYear = in.PublishedYear
	b.Tags = append([]string(nil), in.Tags...)
	b.Language = in.Language
	b.Publisher = in.Publisher
	b.ISBN = in.ISBN
	b.PageCount = *in.PageCount
	b.Format = in.Format
	b.Edition = in.Edition
	b.Rating = *in.Rating
	b.CoverImageURL = in.CoverImageURL
}

func inputFromBook(b *entities.Book) BookInput {
	pageCount := b.PageCount
	rating := b.Rating
	return BookInput{
		Title:         b.Title,
		Description:   b.Description,
		Authors:       append([]string(nil), b.Authors...),
		PublishedYear: b.PublishedYear,
		Tags:          append([]string(nil), b.Tags...),
		Language:      b.Language,
		Publisher:     b.Publisher,
		ISBN:          b.ISBN,
		PageCount:     &pageCount,
		Format:        b.Format,
		Edition:       b.Edition,
		Rating:        &rating,
		CoverImageURL: b.CoverImageURL,
	}
}

// BookPatch is a partial update. Nil fields are left unchanged.
type BookPatch struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Authors       []string `json:"authors"`
	PublishedYear *string  `json:"publishedYear"`
	Tags          []string `json:"tags"`
	Language      *string  `json:"language"`
	Publisher     *string  `json:"publisher"`
	ISBN          *string  `json:"isbn"`
	PageCount     *int     `json:"pageCount"`
	Format        *string  `json:"format"`
	Edition       *string  `json:"edition"`
	Rating        *float64 `json:"rating"`
	CoverImageURL *string  `json:"coverImageUrl"`
}

func (p BookPatch) apply(in *BookInput) {
	setString(&in.Title, p.Title)
	setString(&in.Description, p.Description)
	if p.Authors != nil {
		in.Authors = p.Authors
	}
	setString(&in.PublishedYear, p.PublishedYear)
	if p.Tags != nil {
		in.Tags = p.Tags
	}
	setString(&in.Language, p.Language)
	setString(&in.Publisher, p.Publisher)
	setString(&in.ISBN, p.ISBN)
	if p.PageCount != nil {
		in.PageCount = p.PageCount
	}
	setString(&in.Format, p.Format)
	setString(&in.Edition, p.Edition)
	if p.Rating != nil {
		in.Rating = p.Rating
	}
	setString(&in.CoverImageURL, p.CoverImageURL)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// DecodeForm builds a BookInput from submitted form values. Repeated
// "authors"/"tags" keys accumulate, and each value may also hold a
// comma-separated list. A "slug" key is ignored. Numbers that do not parse
// are reported as a *ValidationError.
func DecodeForm(values url.Values) (BookInput, error) {
	in := BookInput{
		Title:         values.Get("title"),
		Description:   values.Get("description"),
		Authors:       splitList(values["authors"]),
		PublishedYear: values.Get("publishedYear"),
		Tags:          splitList(values["tags"]),
		Language:      values.Get("language"),
		Publisher:     values.Get("publisher"),
		ISBN:          values.Get("isbn"),
		Format:        values.Get("format"),
		Edition:       values.Get("edition"),
		CoverImageURL: values.Get("coverImageUrl"),
	}

	invalid := make(map[string]string)
	if raw := strings.TrimSpace(values.Get("pageCount")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalid["pageCount"] = "must be a whole number"
		} else {
			in.PageCount = &n
		}
	}
	if raw := strings.TrimSpace(values.Get("rating")); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			invalid["rating"] = "must be a number"
		} else {
			in.Rating = &f
		}
	}

	if len(invalid) > 0 {
		return in, &ValidationError{Fields: invalid}
	}
	return in, nil
}

func splitList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Book is the only persisted catalog record. Authors and Tags live inside the
// row as JSON arrays, so a book is always read and written as a whole.
type Book struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Title         string                      `gorm:"size:512;not null" json:"title"`
	Slug          string                      `gorm:"uniqueIndex;size:600;not null" json:"slug"`
	Description   string                      `gorm:"type:text;not null" json:"description"`
	Authors       datatypes.JSONSlice[string] `json:"authors"`
	PublishedYear string                      `gorm:"size:16" json:"publishedYear"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	Language      string                      `gorm:"size:64" json:"language"`
	Publisher     string                      `gorm:"size:256" json:"publisher"`
	ISBN          string                      `gorm:"column:isbn;size:32" json:"isbn"`
	PageCount     int                         `json:"pageCount"`
	Format        string                      `gorm:"size:64" json:"format"`
	Edition       string                      `gorm:"size:64" json:"edition"`
	Rating        float64                     `json:"rating"`
	CoverImageURL string                      `gorm:"column:cover_image_url;size:2048" json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

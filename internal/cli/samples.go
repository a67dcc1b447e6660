package cli

import (
	"fmt"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

// coverURLPattern points at the Open Library cover for an ISBN.
const coverURLPattern = "https://covers.openlibrary.org/b/isbn/%s-L.jpg"

type sample struct {
	Title         string
	Author        string
	Genre         string
	PublishedYear string
	Rating        float64
	Description   string
	Publisher     string
	ISBN          string
	PageCount     int
	Format        string
}

// sampleBooks is the starter catalog written by the seed command.
var sampleBooks = []sample{
	{
		Title: "Atomic Habits", Author: "James Clear", Genre: "Self-Help",
		PublishedYear: "2018", Rating: 4.8, Description: "Tiny changes, remarkable results",
		Publisher: "Avery", ISBN: "9780735211292", PageCount: 320, Format: "Hardcover",
	},
	{
		Title: "The Lean Startup", Author: "Eric Ries", Genre: "Business",
		PublishedYear: "2011", Rating: 4.6, Description: "How today's entrepreneurs use continuous innovation",
		Publisher: "Crown Business", ISBN: "9780307887894", PageCount: 336, Format: "Hardcover",
	},
	{
		Title: "Sapiens", Author: "Yuval Noah Harari", Genre: "History",
		PublishedYear: "2011", Rating: 4.7, Description: "A brief history of humankind",
		Publisher: "Harper", ISBN: "9780062316097", PageCount: 464, Format: "Hardcover",
	},
	{
		Title: "Clean Code", Author: "Robert C. Martin", Genre: "Technology",
		PublishedYear: "2008", Rating: 4.9, Description: "A handbook of agile software craftsmanship",
		Publisher: "Prentice Hall", ISBN: "9780132350884", PageCount: 464, Format: "Paperback",
	},
	{
		Title: "Thinking, Fast and Slow", Author: "Daniel Kahneman", Genre: "Psychology",
		PublishedYear: "2011", Rating: 4.5, Description: "The two systems that drive the way we think",
		Publisher: "Farrar, Straus and Giroux", ISBN: "9780374275631", PageCount: 499, Format: "Hardcover",
	},
	{
		Title: "The Alchemist", Author: "Paulo Coelho", Genre: "Fiction",
		PublishedYear: "1988", Rating: 4.7, Description: "A journey to discover one's destiny",
		Publisher: "HarperOne", ISBN: "9780062315007", PageCount: 208, Format: "Paperback",
	},
}

func (s sample) input() catalog.BookInput {
	pages, rating := s.PageCount, s.Rating
	return catalog.BookInput{
		Title:         s.Title,
		Description:   s.Description,
		Authors:       []string{s.Author},
		PublishedYear: s.PublishedYear,
		Tags:          []string{s.Genre},
		Language:      "English",
		Publisher:     s.Publisher,
		ISBN:          s.ISBN,
		PageCount:     &pages,
		Format:        s.Format,
		Edition:       "1st",
		Rating:        &rating,
		CoverImageURL: fmt.Sprintf(coverURLPattern, s.ISBN),
	}
}

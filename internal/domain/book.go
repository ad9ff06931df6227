// Package domain contains the book record and the closed vocabularies that
// classify it.
package domain

import (
	"slices"
)

// Book is one entry of the personal collection. Field names follow the
// camelCase layout of exported collection files.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Genre         string   `json:"genre,omitempty"`
	Format        Format   `json:"format,omitempty"`
	Status        Status   `json:"status"`
	Rating        *int     `json:"rating,omitempty"`
	Favorite      bool     `json:"favorite"`
	CurrentPage   *int     `json:"currentPage,omitempty"`
	PageCount     *int     `json:"pageCount,omitempty"`
	YearPublished *int     `json:"yearPublished,omitempty"`
	CoverImage    string   `json:"coverImage,omitempty"`
	Tags          []string `json:"tags"`
	Notes         string   `json:"notes,omitempty"`
	DatePurchased string   `json:"datePurchased,omitempty"`
	DateStarted   string   `json:"dateStarted,omitempty"`
	DateCompleted string   `json:"dateCompleted,omitempty"`
	DateAdded     string   `json:"dateAdded,omitempty"`
}

// Progress returns the reading progress as a whole percentage, clamped to
// 0..100. It is only meaningful while the book is being read or paused, and
// only when both page fields are present.
func (b *Book) Progress() (int, bool) {
	if b.Status != StatusReading && b.Status != StatusOnHold {
		return 0, false
	}
	if b.CurrentPage == nil || b.PageCount == nil || *b.PageCount <= 0 {
		return 0, false
	}
	pct := *b.CurrentPage * 100 / *b.PageCount
	return min(max(pct, 0), 100), true
}

// IsTopPick reports whether the book is a finished favorite.
func (b *Book) IsTopPick() bool {
	return b.Favorite && b.Status == StatusFinished
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (b Book) Clone() Book {
	b.Rating = cloneInt(b.Rating)
	b.CurrentPage = cloneInt(b.CurrentPage)
	b.PageCount = cloneInt(b.PageCount)
	b.YearPublished = cloneInt(b.YearPublished)
	b.Tags = slices.Clone(b.Tags)
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return b
}

// CloneBooks deep-copies a slice of books.
func CloneBooks(books []Book) []Book {
	out := make([]Book, len(books))
	for i := range books {
		out[i] = books[i].Clone()
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

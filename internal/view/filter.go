// Package view derives what a reader sees from the collection: filtered and
// sorted lists, the six shelf buckets, and the table ordering. Everything
// here is pure and never mutates its input.
package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

// RatingNone selects books without a rating.
const RatingNone = "none"

// Filter narrows the collection. Zero-valued fields do not filter.
// All set fields must match.
type Filter struct {
	// Search is matched case-insensitively as a substring of title or author.
	Search string        `json:"search,omitempty"`
	Genre  string        `json:"genre,omitempty"`
	Status domain.Status `json:"status,omitempty"`
	Format domain.Format `json:"format,omitempty"`
	// Rating is "" (any), "none" (unrated), or "1".."5".
	Rating string `json:"rating,omitempty"`
}

// Validate rejects a malformed rating selector.
func (f Filter) Validate() error {
	switch f.Rating {
	case "", RatingNone:
		return nil
	}
	n, err := strconv.Atoi(f.Rating)
	if err != nil || n < 1 || n > 5 {
		return fmt.Errorf("rating filter must be empty, %q, or 1-5, got %q", RatingNone, f.Rating)
	}
	return nil
}

// Matches reports whether b passes every set criterion.
func (f Filter) Matches(b *domain.Book) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(b.Title), q) && !strings.Contains(strings.ToLower(b.Author), q) {
			return false
		}
	}
	if f.Genre != "" && b.Genre != f.Genre {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Format != "" && b.Format != f.Format {
		return false
	}
	switch f.Rating {
	case "":
	case RatingNone:
		if b.Rating != nil {
			return false
		}
	default:
		if b.Rating == nil || strconv.Itoa(*b.Rating) != f.Rating {
			return false
		}
	}
	return true
}

// FilterBooks returns the matching books in input order.
func FilterBooks(books []domain.Book, f Filter) []domain.Book {
	out := make([]domain.Book, 0, len(books))
	for i := range books {
		if f.Matches(&books[i]) {
			out = append(out, books[i])
		}
	}
	return out
}

// Apply filters then sorts. The input slice is left untouched.
func Apply(books []domain.Book, f Filter, key SortKey) []domain.Book {
	out := FilterBooks(books, f)
	SortBooks(out, key)
	return out
}

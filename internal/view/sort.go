package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

// SortKey selects the primary ordering of shelf views.
type SortKey string

// Primary sort keys.
const (
	SortTitle     SortKey = "title"
	SortAuthor    SortKey = "author"
	SortRating    SortKey = "rating"
	SortYear      SortKey = "year"
	SortDateAdded SortKey = "dateAdded"
)

// DefaultSort is used when no key is given.
const DefaultSort = SortDateAdded

// ParseSortKey validates a raw key. Empty selects DefaultSort.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(raw); k {
	case "":
		return DefaultSort, nil
	case SortTitle, SortAuthor, SortRating, SortYear, SortDateAdded:
		return k, nil
	case "yearPublished":
		return SortYear, nil
	}
	return "", fmt.Errorf("unknown sort key %q", raw)
}

// SortBooks orders books in place. title and author ascend using
// locale-aware, case-insensitive collation. rating, year, and dateAdded
// descend with missing values last. Ties keep their input order.
func SortBooks(books []domain.Book, key SortKey) {
	switch key {
	case SortTitle:
		c := newCollator()
		slices.SortStableFunc(books, func(a, b domain.Book) int { return c.CompareString(a.Title, b.Title) })
	case SortAuthor:
		c := newCollator()
		slices.SortStableFunc(books, func(a, b domain.Book) int { return c.CompareString(a.Author, b.Author) })
	case SortRating:
		slices.SortStableFunc(books, func(a, b domain.Book) int { return descNilsLast(a.Rating, b.Rating) })
	case SortYear:
		slices.SortStableFunc(books, func(a, b domain.Book) int { return descNilsLast(a.YearPublished, b.YearPublished) })
	default:
		slices.SortStableFunc(books, func(a, b domain.Book) int { return descEmptyLast(a.DateAdded, b.DateAdded) })
	}
}

// newCollator returns a fresh collator; collate.Collator is not safe for
// concurrent use.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

func descNilsLast(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*b, *a)
}

// descEmptyLast orders ISO timestamps newest first.
func descEmptyLast(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(b, a)
}

package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

// Column is a sortable table column.
type Column string

// Table columns.
const (
	ColumnTitle     Column = "title"
	ColumnAuthor    Column = "author"
	ColumnGenre     Column = "genre"
	ColumnFormat    Column = "format"
	ColumnStatus    Column = "status"
	ColumnRating    Column = "rating"
	ColumnYear      Column = "year"
	ColumnDateAdded Column = "dateAdded"
)

// Columns lists every sortable column.
var Columns = []Column{ColumnTitle, ColumnAuthor, ColumnGenre, ColumnFormat, ColumnStatus, ColumnRating, ColumnYear, ColumnDateAdded}

// ParseColumn validates a raw column name.
func ParseColumn(raw string) (Column, error) {
	c := Column(raw)
	if slices.Contains(Columns, c) {
		return c, nil
	}
	return "", fmt.Errorf("unknown table column %q", raw)
}

// TableSort is the table's own ordering, independent of the shelf SortKey.
type TableSort struct {
	Column     Column `json:"column"`
	Descending bool   `json:"descending"`
}

// DefaultTableSort orders the table by title, ascending.
var DefaultTableSort = TableSort{Column: ColumnTitle}

// Toggle returns the ordering after a header click: the same column flips
// direction, a new column starts ascending.
func (t TableSort) Toggle(c Column) TableSort {
	if t.Column == c {
		return TableSort{Column: c, Descending: !t.Descending}
	}
	return TableSort{Column: c}
}

// SortTable returns a sorted copy. Missing values sort last in either
// direction; ties keep input order.
func SortTable(books []domain.Book, ts TableSort) []domain.Book {
	out := slices.Clone(books)
	coll := newCollator()

	compare := func(a, b domain.Book) int {
		switch ts.Column {
		case ColumnAuthor:
			return coll.CompareString(a.Author, b.Author)
		case ColumnGenre:
			return emptyLast(a.Genre, b.Genre, ts.Descending, coll.CompareString)
		case ColumnFormat:
			return emptyLast(string(a.Format), string(b.Format), ts.Descending, strings.Compare)
		case ColumnStatus:
			return cmp.Compare(statusRank(a.Status), statusRank(b.Status))
		case ColumnRating:
			return nilLast(a.Rating, b.Rating, ts.Descending)
		case ColumnYear:
			return nilLast(a.YearPublished, b.YearPublished, ts.Descending)
		case ColumnDateAdded:
			return emptyLast(a.DateAdded, b.DateAdded, ts.Descending, strings.Compare)
		default:
			return coll.CompareString(a.Title, b.Title)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.Book) int {
		c := compare(a, b)
		if ts.Descending {
			return -c
		}
		return c
	})
	return out
}

func statusRank(s domain.Status) int {
	if i := slices.Index(domain.Statuses, s); i >= 0 {
		return i
	}
	return len(domain.Statuses)
}

// nilLast compares ascending but keeps nils at the end after the caller
// negates the result for descending order.
func nilLast(a, b *int, desc bool) int {
	last := 1
	if desc {
		last = -1
	}
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return last
	case b == nil:
		return -last
	}
	return cmp.Compare(*a, *b)
}

func emptyLast(a, b string, desc bool, compare func(string, string) int) int {
	last := 1
	if desc {
		last = -1
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return last
	case b == "":
		return -last
	}
	return compare(a, b)
}

// TableState holds the current table ordering for one session.
type TableState struct {
	mu   sync.Mutex
	sort TableSort
}

// NewTableState starts at DefaultTableSort.
func NewTableState() *TableState {
	return &TableState{sort: DefaultTableSort}
}

// Get returns the current ordering.
func (s *TableState) Get() TableSort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// Toggle applies a header click and returns the new ordering.
func (s *TableState) Toggle(c Column) TableSort {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = s.sort.Toggle(c)
	return s.sort
}

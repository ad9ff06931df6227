package service

import (
	"context"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/view"
)

// ShelfView is the bucketed view of the filtered, sorted collection.
type ShelfView struct {
	Filter   view.Filter    `json:"filter"`
	Sort     view.SortKey   `json:"sort"`
	Sections []view.Section `json:"sections"`
	Matched  int            `json:"matched"`
	// Counts cover the whole collection, not just the matches.
	Counts view.Counts `json:"counts"`
}

// TableView is the filtered collection in table order.
type TableView struct {
	Filter view.Filter    `json:"filter"`
	Sort   view.TableSort `json:"sort"`
	Books  []domain.Book  `json:"books"`
	Total  int            `json:"total"`
}

// Shelves filters, sorts, and buckets the collection.
func (s *LibraryService) Shelves(ctx context.Context, f view.Filter, key view.SortKey) (*ShelfView, error) {
	if err := f.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	key, err := view.ParseSortKey(string(key))
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	books := s.List(ctx)
	matched := view.Apply(books, f, key)
	return &ShelfView{
		Filter:   f,
		Sort:     key,
		Sections: view.Bucketize(matched),
		Matched:  len(matched),
		Counts:   view.Count(books),
	}, nil
}

// Table filters the collection and orders it by the current table sort.
func (s *LibraryService) Table(ctx context.Context, f view.Filter) (*TableView, error) {
	if err := f.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	books := s.List(ctx)
	ts := s.table.Get()
	rows := view.SortTable(view.FilterBooks(books, f), ts)
	return &TableView{
		Filter: f,
		Sort:   ts,
		Books:  rows,
		Total:  len(books),
	}, nil
}

// TableSort returns the current table ordering.
func (s *LibraryService) TableSort() view.TableSort {
	return s.table.Get()
}

// ToggleTableSort applies a column header click. The same column flips
// direction; a new column starts ascending.
func (s *LibraryService) ToggleTableSort(column string) (view.TableSort, error) {
	c, err := view.ParseColumn(column)
	if err != nil {
		return view.TableSort{}, domainerrors.Validation(err.Error())
	}
	return s.table.Toggle(c), nil
}

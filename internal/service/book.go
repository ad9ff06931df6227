// Package service holds the collection and cover logic shared by the HTTP
// API and the CLI.
package service

import (
	"slices"
	"strings"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/genre"
)

// BookInput is the editable part of a book, used by Add and Edit.
// Id and dateAdded are owned by the service.
type BookInput struct {
	Title         string        `json:"title" validate:"notblank,max=500"`
	Author        string        `json:"author" validate:"notblank,max=300"`
	Genre         string        `json:"genre,omitempty" validate:"genre"`
	Format        domain.Format `json:"format,omitempty" validate:"bookformat"`
	Status        domain.Status `json:"status" validate:"bookstatus"`
	Rating        *int          `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Favorite      bool          `json:"favorite,omitempty"`
	CurrentPage   *int          `json:"currentPage,omitempty" validate:"omitempty,gte=0"`
	PageCount     *int          `json:"pageCount,omitempty" validate:"omitempty,gte=1"`
	YearPublished *int          `json:"yearPublished,omitempty"`
	CoverImage    string        `json:"coverImage,omitempty" validate:"omitempty,url"`
	Tags          []string      `json:"tags,omitempty" validate:"dive,max=100"`
	Notes         string        `json:"notes,omitempty" validate:"max=10000"`
	DatePurchased string        `json:"datePurchased,omitempty"`
	DateStarted   string        `json:"dateStarted,omitempty"`
	DateCompleted string        `json:"dateCompleted,omitempty"`
}

// BookInputFrom copies the editable fields of b.
func BookInputFrom(b *domain.Book) BookInput {
	c := b.Clone()
	return BookInput{
		Title:         c.Title,
		Author:        c.Author,
		Genre:         c.Genre,
		Format:        c.Format,
		Status:        c.Status,
		Rating:        c.Rating,
		Favorite:      c.Favorite,
		CurrentPage:   c.CurrentPage,
		PageCount:     c.PageCount,
		YearPublished: c.YearPublished,
		CoverImage:    c.CoverImage,
		Tags:          c.Tags,
		Notes:         c.Notes,
		DatePurchased: c.DatePurchased,
		DateStarted:   c.DateStarted,
		DateCompleted: c.DateCompleted,
	}
}

// apply writes the normalized input over b, leaving ID and DateAdded alone.
func (in BookInput) apply(b *domain.Book) {
	slug, _ := genre.Normalize(in.Genre)

	b.Title = strings.TrimSpace(in.Title)
	b.Author = strings.TrimSpace(in.Author)
	b.Genre = slug
	b.Format = in.Format
	b.Status = in.Status
	b.Rating = in.Rating
	b.Favorite = in.Favorite
	b.CurrentPage = in.CurrentPage
	b.PageCount = in.PageCount
	b.YearPublished = in.YearPublished
	b.CoverImage = strings.TrimSpace(in.CoverImage)
	b.Tags = normalizeTags(in.Tags)
	b.Notes = in.Notes
	b.DatePurchased = in.DatePurchased
	b.DateStarted = in.DateStarted
	b.DateCompleted = in.DateCompleted

	*b = b.Clone()
}

// normalizeTags trims tags and drops empties and repeats, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Package search keeps an in-memory full-text index of the collection for
// ranked, typo-tolerant lookup across title, author, tags, and notes.
package search

import "github.com/pagetrail/pagetrail-server/internal/domain"

// BookDocument is what gets indexed for one book.
type BookDocument struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Tags   []string `json:"tags,omitempty"`
	Notes  string   `json:"notes,omitempty"`
	Genre  string   `json:"genre,omitempty"`
	Status string   `json:"status"`
}

// NewBookDocument projects a book onto its indexed fields.
func NewBookDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		Tags:   b.Tags,
		Notes:  b.Notes,
		Genre:  b.Genre,
		Status: string(b.Status),
	}
}

// ToMap converts the document so field names match the mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":     d.ID,
		"title":  d.Title,
		"author": d.Author,
		"tags":   d.Tags,
		"notes":  d.Notes,
		"genre":  d.Genre,
		"status": d.Status,
	}
}

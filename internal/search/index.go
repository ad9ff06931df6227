package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

// Index wraps an in-memory Bleve index. The collection is the source of
// truth, so the index is rebuilt from it at startup and never persisted.
//
// All methods are safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// NewIndex creates an empty in-memory index.
func NewIndex(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx, logger: logger}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces one book.
func (s *Index) IndexBook(_ context.Context, b *domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(b.ID, NewBookDocument(b).ToMap())
}

// DeleteBook removes one book. Unknown ids are ignored.
func (s *Index) DeleteBook(_ context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// Replace swaps the whole index for one built from books. Searches keep
// hitting the old index until the new one is complete.
func (s *Index) Replace(_ context.Context, books []domain.Book) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	batch := fresh.NewBatch()
	for i := range books {
		if err := batch.Index(books[i].ID, NewBookDocument(&books[i]).ToMap()); err != nil {
			fresh.Close()
			return fmt.Errorf("batch index %s: %w", books[i].ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close replaced search index", "error", err)
	}
	s.logger.Debug("search index rebuilt", "documents", len(books))
	return nil
}

// DocumentCount returns the number of indexed books.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

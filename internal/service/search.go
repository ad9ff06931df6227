package service

import (
	"context"
	"strings"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/search"
)

// SearchMatch is one ranked full-text match.
type SearchMatch struct {
	Book  domain.Book `json:"book"`
	Score float64     `json:"score"`
}

// Search runs a ranked, typo-tolerant query over title, author, tags, and
// notes. It complements the substring filter used by the shelf views.
func (s *LibraryService) Search(ctx context.Context, query string, limit int) ([]SearchMatch, error) {
	if s.indexer == nil {
		return nil, domainerrors.Unavailable("search index is not available")
	}
	if strings.TrimSpace(query) == "" {
		return nil, domainerrors.Validation("search query is required")
	}

	res, err := s.indexer.Search(ctx, search.Params{Query: query, Limit: limit})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]SearchMatch, 0, len(res.Hits))
	for _, hit := range res.Hits {
		// The index can briefly trail the collection after a delete.
		i := s.indexOf(hit.ID)
		if i < 0 {
			continue
		}
		matches = append(matches, SearchMatch{Book: s.books[i].Clone(), Score: hit.Score})
	}
	return matches, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/id"
	"github.com/pagetrail/pagetrail-server/internal/sse"
)

// ImportMode selects how imported books combine with the collection.
type ImportMode string

// Import modes.
const (
	// ImportReplace discards the current collection.
	ImportReplace ImportMode = "replace"
	// ImportMerge appends books whose id is not already present.
	ImportMerge ImportMode = "merge"
)

// ParseImportMode validates a mode name.
func ParseImportMode(raw string) (ImportMode, error) {
	switch m := ImportMode(raw); m {
	case ImportReplace, ImportMerge:
		return m, nil
	}
	return "", domainerrors.Validationf("import mode must be %q or %q, got %q", ImportReplace, ImportMerge, raw)
}

// ImportResult summarizes an import. Normalized counts imported books whose
// status was missing or unknown and was set to wishlist.
type ImportResult struct {
	Mode       ImportMode `json:"mode"`
	Imported   int        `json:"imported"`
	Skipped    int        `json:"skipped"`
	Normalized int        `json:"normalized"`
	Total      int        `json:"total"`
}

// Import loads a JSON array of books. Nothing changes when data is not a
// JSON array of book objects. Entries without an id get a fresh one; in
// merge mode entries whose id already exists are skipped without comparing
// fields. A missing or unknown status becomes wishlist so every book sits
// on exactly one shelf.
func (s *LibraryService) Import(ctx context.Context, data []byte, mode ImportMode) (*ImportResult, error) {
	if _, err := ParseImportMode(string(mode)); err != nil {
		return nil, err
	}

	var incoming []domain.Book
	if err := json.Unmarshal(data, &incoming); err != nil {
		return nil, domainerrors.Validationf("import file is not a JSON array of books: %v", err)
	}
	if incoming == nil {
		return nil, domainerrors.Validation("import file is not a JSON array of books")
	}

	s.mu.Lock()
	var next []domain.Book
	if mode == ImportMerge {
		next = slices.Clone(s.books)
	} else {
		next = make([]domain.Book, 0, len(incoming))
	}

	seen := make(map[string]bool, len(next)+len(incoming))
	for i := range next {
		seen[next[i].ID] = true
	}

	res := &ImportResult{Mode: mode}
	for _, b := range incoming {
		if b.ID == "" {
			fresh, err := id.NewBookID()
			if err != nil {
				s.mu.Unlock()
				return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate book id")
			}
			b.ID = fresh
		}
		if seen[b.ID] {
			res.Skipped++
			continue
		}
		seen[b.ID] = true
		if !b.Status.Valid() {
			s.logger.Warn("imported book has unknown status, using wishlist", "book_id", b.ID, "status", b.Status)
			b.Status = domain.StatusWishlist
			res.Normalized++
		}
		next = append(next, b.Clone())
		res.Imported++
	}

	s.books = next
	persistErr := s.persistLocked(ctx)
	res.Total = len(s.books)
	snapshot := domain.CloneBooks(s.books)
	s.mu.Unlock()

	s.metrics.IncMutation("import")
	s.metrics.SetBooks(res.Total)
	if s.emitter != nil {
		s.emitter.Emit(sse.NewLibraryImportedEvent(string(mode), res.Imported, res.Skipped, res.Total))
		s.emitter.Emit(sse.NewLibraryChangedEvent("import", res.Total))
	}
	if s.indexer != nil {
		if err := s.indexer.Replace(ctx, snapshot); err != nil {
			s.logger.Warn("failed to rebuild search index", "error", err)
		}
	}

	s.logger.Info("library imported",
		"mode", mode,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"normalized", res.Normalized,
		"total", res.Total,
	)
	return res, persistErr
}

// Export returns the collection as indented JSON and a dated file name.
func (s *LibraryService) Export(ctx context.Context) (filename string, data []byte, err error) {
	books := s.List(ctx)

	data, err = json.MarshalIndent(books, "", "  ")
	if err != nil {
		return "", nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to encode export")
	}
	return ExportFilename(s.now()), data, nil
}

// ExportFilename names an export taken at t, using the UTC date.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("pagetrail-export-%s.json", t.UTC().Format(time.DateOnly))
}

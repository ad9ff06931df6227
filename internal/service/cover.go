package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pagetrail/pagetrail-server/internal/covers"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

// Cover sources.
const (
	CoverSourceExplicit = "explicit"
	CoverSourceResolved = "resolved"
	CoverSourceNone     = "none"
)

// CoverResolver is the part of covers.Resolver the service needs.
type CoverResolver interface {
	Resolve(ctx context.Context, title, author string) (string, bool)
	ResolveMany(ctx context.Context, reqs []covers.Request) []covers.Result
}

// BookLookup finds books by id.
type BookLookup interface {
	Get(ctx context.Context, bookID string) (*domain.Book, error)
}

// CoverResult is the cover shown for one book. URL is nil when there is none.
type CoverResult struct {
	BookID string  `json:"bookId,omitempty"`
	URL    *string `json:"url"`
	Source string  `json:"source"`
}

// CoverService answers which cover to show for a book. It never writes
// resolved URLs back into the collection.
type CoverService struct {
	books    BookLookup
	resolver CoverResolver
	logger   *slog.Logger
}

// NewCoverService creates a new cover service.
func NewCoverService(books BookLookup, resolver CoverResolver, logger *slog.Logger) *CoverService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CoverService{
		books:    books,
		resolver: resolver,
		logger:   logger,
	}
}

// ResolveBookCover prefers the book's explicit cover and falls back to the
// resolver.
func (s *CoverService) ResolveBookCover(ctx context.Context, bookID string) (*CoverResult, error) {
	b, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b.CoverImage != "" {
		return &CoverResult{BookID: b.ID, URL: &b.CoverImage, Source: CoverSourceExplicit}, nil
	}

	url, found := s.resolver.Resolve(ctx, b.Title, b.Author)
	return newCoverResult(b.ID, url, found), nil
}

// ResolveCovers resolves several books concurrently and returns id to URL,
// with nil for books that have no cover. Unknown ids are omitted.
func (s *CoverService) ResolveCovers(ctx context.Context, bookIDs []string) (map[string]*string, error) {
	out := make(map[string]*string, len(bookIDs))

	var pending []*domain.Book
	var reqs []covers.Request
	for _, bookID := range bookIDs {
		if _, done := out[bookID]; done {
			continue
		}
		b, err := s.books.Get(ctx, bookID)
		if err != nil {
			if domainerrors.Is(err, domainerrors.ErrNotFound) {
				s.logger.Debug("skipping unknown book in cover batch", "book_id", bookID)
				continue
			}
			return nil, err
		}
		if b.CoverImage != "" {
			out[b.ID] = &b.CoverImage
			continue
		}
		out[b.ID] = nil
		pending = append(pending, b)
		reqs = append(reqs, covers.Request{Title: b.Title, Author: b.Author})
	}

	for i, res := range s.resolver.ResolveMany(ctx, reqs) {
		if res.Found {
			out[pending[i].ID] = &res.URL
		}
	}
	return out, nil
}

// Resolve looks up a cover for an arbitrary title and author.
func (s *CoverService) Resolve(ctx context.Context, title, author string) (*CoverResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"title": "is required"})
	}
	url, found := s.resolver.Resolve(ctx, title, strings.TrimSpace(author))
	return newCoverResult("", url, found), nil
}

func newCoverResult(bookID, url string, found bool) *CoverResult {
	if !found {
		return &CoverResult{BookID: bookID, Source: CoverSourceNone}
	}
	return &CoverResult{BookID: bookID, URL: &url, Source: CoverSourceResolved}
}

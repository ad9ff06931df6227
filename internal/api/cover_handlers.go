package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/service"
)

func (s *Server) registerCoverRoutes() {
	limited := huma.Middlewares{s.coverRateLimit}

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Get book cover",
		Description: "Returns the explicit cover, or resolves one from Open Library and Google Books. Answers, including misses, are cached permanently.",
		Tags:        []string{"Covers"},
		Middlewares: limited,
	}, s.handleGetBookCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "batchCovers",
		Method:      http.MethodPost,
		Path:        "/api/v1/covers/batch",
		Summary:     "Resolve covers in batch",
		Description: "Returns book id to cover URL, with null for books without a cover. Unknown ids are omitted.",
		Tags:        []string{"Covers"},
		Middlewares: limited,
	}, s.handleBatchCovers)

	huma.Register(s.api, huma.Operation{
		OperationID: "lookupCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/covers",
		Summary:     "Look up a cover",
		Description: "Resolves a cover for any title and author pair",
		Tags:        []string{"Covers"},
		Middlewares: limited,
	}, s.handleLookupCover)
}

// === DTOs ===

// CoverOutput wraps a cover result for Huma.
type CoverOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         service.CoverResult
}

// BatchCoversRequest lists the books to resolve.
type BatchCoversRequest struct {
	BookIDs []string `json:"book_ids" minItems:"1" maxItems:"100" doc:"Book IDs"`
}

// BatchCoversInput wraps the batch request for Huma.
type BatchCoversInput struct {
	Body BatchCoversRequest
}

// BatchCoversResponse maps book ids to cover URLs.
type BatchCoversResponse struct {
	Covers map[string]*string `json:"covers" doc:"Book ID to cover URL, null when none"`
}

// BatchCoversOutput wraps the batch response for Huma.
type BatchCoversOutput struct {
	Body BatchCoversResponse
}

// LookupCoverInput names the pair to resolve.
type LookupCoverInput struct {
	Title  string `query:"title" required:"true" doc:"Book title"`
	Author string `query:"author" doc:"Book author"`
}

// === Handlers ===

func (s *Server) handleGetBookCover(ctx context.Context, input *BookIDInput) (*CoverOutput, error) {
	res, err := s.services.Covers.ResolveBookCover(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CoverOutput{CacheControl: coverCacheControl(res), Body: *res}, nil
}

func (s *Server) handleBatchCovers(ctx context.Context, input *BatchCoversInput) (*BatchCoversOutput, error) {
	covers, err := s.services.Covers.ResolveCovers(ctx, input.Body.BookIDs)
	if err != nil {
		return nil, err
	}
	return &BatchCoversOutput{Body: BatchCoversResponse{Covers: covers}}, nil
}

func (s *Server) handleLookupCover(ctx context.Context, input *LookupCoverInput) (*CoverOutput, error) {
	res, err := s.services.Covers.Resolve(ctx, input.Title, input.Author)
	if err != nil {
		return nil, err
	}
	return &CoverOutput{CacheControl: coverCacheControl(res), Body: *res}, nil
}

// Resolved answers never change, explicit covers can be edited.
func coverCacheControl(res *service.CoverResult) string {
	if res.Source == service.CoverSourceExplicit {
		return CacheNoStore
	}
	return CacheOneDay
}

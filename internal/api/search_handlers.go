package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Ranked full-text search over title, author, tags, and notes with typo tolerance",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains the query.
type SearchInput struct {
	Query string `query:"q" required:"true" minLength:"1" doc:"Search text"`
	Limit int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum matches"`
}

// SearchResponse lists ranked matches.
type SearchResponse struct {
	Query   string                `json:"query"`
	Matches []service.SearchMatch `json:"matches"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	matches, err := s.services.Library.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: SearchResponse{Query: input.Query, Matches: matches}}, nil
}

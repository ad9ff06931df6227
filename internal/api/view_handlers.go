package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/service"
	"github.com/pagetrail/pagetrail-server/internal/view"
)

func (s *Server) registerViewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves",
		Summary:     "Shelf view",
		Description: "Filters and sorts the collection, then splits it into the six shelves",
		Tags:        []string{"Views"},
	}, s.handleGetShelves)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTable",
		Method:      http.MethodGet,
		Path:        "/api/v1/table",
		Summary:     "Table view",
		Description: "Filters the collection and orders it by the current table sort",
		Tags:        []string{"Views"},
	}, s.handleGetTable)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTableSort",
		Method:      http.MethodGet,
		Path:        "/api/v1/table/sort",
		Summary:     "Current table sort",
		Tags:        []string{"Views"},
	}, s.handleGetTableSort)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleTableSort",
		Method:      http.MethodPost,
		Path:        "/api/v1/table/sort",
		Summary:     "Toggle table sort",
		Description: "Same column flips direction; a new column starts ascending",
		Tags:        []string{"Views"},
	}, s.handleToggleTableSort)
}

// FilterParams are the shared filter query parameters.
type FilterParams struct {
	Search string `query:"search" doc:"Case-insensitive substring of title or author"`
	Genre  string `query:"genre" doc:"Exact genre slug"`
	Status string `query:"status" doc:"Exact reading state"`
	Format string `query:"format" doc:"Exact format"`
	Rating string `query:"rating" doc:"Empty for any, none for unrated, or 1-5"`
}

func (p FilterParams) filter() view.Filter {
	return view.Filter{
		Search: p.Search,
		Genre:  p.Genre,
		Status: domain.Status(p.Status),
		Format: domain.Format(p.Format),
		Rating: p.Rating,
	}
}

// ShelvesInput contains filters and the primary sort key.
type ShelvesInput struct {
	FilterParams
	Sort string `query:"sort" doc:"title, author, rating, year, or dateAdded (default)"`
}

// ShelvesOutput wraps the shelf view for Huma.
type ShelvesOutput struct {
	Body service.ShelfView
}

// TableInput contains the filters.
type TableInput struct {
	FilterParams
}

// TableOutput wraps the table view for Huma.
type TableOutput struct {
	Body service.TableView
}

// TableSortOutput wraps the table ordering for Huma.
type TableSortOutput struct {
	Body view.TableSort
}

// ToggleTableSortRequest names the clicked column.
type ToggleTableSortRequest struct {
	Column string `json:"column" enum:"title,author,genre,format,status,rating,year,dateAdded" doc:"Column header that was clicked"`
}

// ToggleTableSortInput wraps the toggle request for Huma.
type ToggleTableSortInput struct {
	Body ToggleTableSortRequest
}

func (s *Server) handleGetShelves(ctx context.Context, input *ShelvesInput) (*ShelvesOutput, error) {
	shelves, err := s.services.Library.Shelves(ctx, input.filter(), view.SortKey(input.Sort))
	if err != nil {
		return nil, err
	}
	return &ShelvesOutput{Body: *shelves}, nil
}

func (s *Server) handleGetTable(ctx context.Context, input *TableInput) (*TableOutput, error) {
	table, err := s.services.Library.Table(ctx, input.filter())
	if err != nil {
		return nil, err
	}
	return &TableOutput{Body: *table}, nil
}

func (s *Server) handleGetTableSort(_ context.Context, _ *struct{}) (*TableSortOutput, error) {
	return &TableSortOutput{Body: s.services.Library.TableSort()}, nil
}

func (s *Server) handleToggleTableSort(_ context.Context, input *ToggleTableSortInput) (*TableSortOutput, error) {
	ts, err := s.services.Library.ToggleTableSort(input.Body.Column)
	if err != nil {
		return nil, err
	}
	return &TableSortOutput{Body: ts}, nil
}

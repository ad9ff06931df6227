package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns every book in stored order",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Add book",
		Description:   "Adds a book with a generated id and dateAdded",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Edit book",
		Description: "Replaces every editable field; id and dateAdded are kept",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Deletes a book. Requires confirm=true.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "changeBookStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/status",
		Summary:     "Change status",
		Description: "Moves a book to another reading state without touching other fields",
		Tags:        []string{"Books"},
	}, s.handleChangeStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/favorite",
		Summary:     "Toggle favorite",
		Tags:        []string{"Books"},
	}, s.handleToggleFavorite)
}

// === DTOs ===

// BookIDInput identifies one book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body domain.Book
}

// ListBooksResponse contains the collection.
type ListBooksResponse struct {
	Books []domain.Book `json:"books" doc:"Books in stored order"`
	Total int           `json:"total" doc:"Number of books"`
}

// ListBooksOutput wraps the list response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body service.BookInput
}

// UpdateBookInput wraps the edit request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.BookInput
}

// DeleteBookInput carries the explicit confirmation.
type DeleteBookInput struct {
	ID      string `path:"id" doc:"Book ID"`
	Confirm bool   `query:"confirm" doc:"Must be true to delete"`
}

// ChangeStatusRequest is the request body for a status change.
type ChangeStatusRequest struct {
	Status domain.Status `json:"status" enum:"wishlist,up-next,reading,on-hold,finished" doc:"New reading state"`
}

// ChangeStatusInput wraps the status change for Huma.
type ChangeStatusInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body ChangeStatusRequest
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	books := s.services.Library.List(ctx)
	return &ListBooksOutput{Body: ListBooksResponse{Books: books, Total: len(books)}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Library.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book, err := s.services.Library.Add(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	book, err := s.services.Library.Edit(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*struct{}, error) {
	if !input.Confirm {
		return nil, domainerrors.ValidationWithDetails("deletion must be confirmed", map[string]string{
			"confirm": "must be true",
		})
	}
	if err := s.services.Library.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleChangeStatus(ctx context.Context, input *ChangeStatusInput) (*BookOutput, error) {
	book, err := s.services.Library.ChangeStatus(ctx, input.ID, input.Body.Status)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleToggleFavorite(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Library.ToggleFavorite(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

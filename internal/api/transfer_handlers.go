package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/service"
)

func (s *Server) registerTransferRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "importBooks",
		Method:       http.MethodPost,
		Path:         "/api/v1/import",
		Summary:      "Import books",
		Description:  "Loads a JSON array of books. replace discards the collection; merge adds books whose id is new.",
		Tags:         []string{"Transfer"},
		MaxBodyBytes: MaxImportSize,
	}, s.handleImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/export",
		Summary:     "Export books",
		Description: "Downloads the collection as indented JSON",
		Tags:        []string{"Transfer"},
	}, s.handleExport)
}

// ImportInput carries the raw file so malformed JSON reaches the service
// and fails as a validation error instead of a schema error.
type ImportInput struct {
	Mode    string `query:"mode" enum:"replace,merge" default:"merge" doc:"replace or merge"`
	RawBody []byte `contentType:"application/json"`
}

// ImportOutput wraps the import summary for Huma.
type ImportOutput struct {
	Body service.ImportResult
}

// ExportOutput streams the export file.
type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	CacheControl       string `header:"Cache-Control"`
	Body               []byte
}

func (s *Server) handleImport(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	mode, err := service.ParseImportMode(input.Mode)
	if err != nil {
		return nil, err
	}
	res, err := s.services.Library.Import(ctx, input.RawBody, mode)
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Body: *res}, nil
}

func (s *Server) handleExport(ctx context.Context, _ *struct{}) (*ExportOutput, error) {
	filename, data, err := s.services.Library.Export(ctx)
	if err != nil {
		return nil, err
	}
	return &ExportOutput{
		ContentType:        "application/json",
		ContentDisposition: `attachment; filename="` + filename + `"`,
		CacheControl:       CacheNoStore,
		Body:               data,
	}, nil
}

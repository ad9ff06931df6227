package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/metrics"
	"github.com/pagetrail/pagetrail-server/internal/service"
	"github.com/pagetrail/pagetrail-server/internal/validation"
)

// ProvideValidator provides the shared input validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideLibraryService provides the library service, loading the stored collection.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewLibraryService(
		context.Background(),
		storeHandle.Repository,
		sseHandle.Manager,
		indexHandle.Index,
		validator,
		m,
		log.Logger,
	)

	log.Info("Library loaded", "books", svc.Count())

	return svc, nil
}

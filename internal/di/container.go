// Package di provides dependency injection configuration for Pagetrail.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/covers"
	"github.com/pagetrail/pagetrail-server/internal/di/providers"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/metrics"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// flags holds already-parsed flag values keyed by config flag name.
func NewContainer(flags map[string]string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ConfigFromFlags(flags))
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideValidator)

	// Storage and events
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideSSEHandler)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Cover lookups
	do.Provide(injector, providers.ProvideOutboundLimiter)
	do.Provide(injector, providers.ProvideHTTPClient)
	do.Provide(injector, providers.ProvideOpenLibraryClient)
	do.Provide(injector, providers.ProvideGoogleBooksClient)
	do.Provide(injector, providers.ProvideCoverResolver)

	// Business services
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideCoverService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the core services without starting the HTTP
// server. Configuration and storage errors surface here.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*metrics.Metrics](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*covers.Resolver](injector)
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.CoverService](injector)
	return nil
}

// Serve starts the HTTP server.
func Serve(injector *do.RootScope) error {
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}

package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/covers"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/metadata/googlebooks"
	"github.com/pagetrail/pagetrail-server/internal/metadata/openlibrary"
	"github.com/pagetrail/pagetrail-server/internal/metrics"
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

// OutboundLimiterHandle is the per-host limiter shared by the metadata clients.
type OutboundLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *OutboundLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideOutboundLimiter provides the limiter for remote cover providers.
func ProvideOutboundLimiter(i do.Injector) (*OutboundLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &OutboundLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.Covers.RequestsPerSecond, cfg.Covers.Burst),
	}, nil
}

// ProvideHTTPClient provides the HTTP client used for outbound lookups.
func ProvideHTTPClient(i do.Injector) (*http.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &http.Client{Timeout: cfg.Covers.Timeout}, nil
}

// OpenLibraryClientHandle wraps the Open Library client with shutdown capability.
type OpenLibraryClientHandle struct {
	*openlibrary.Client
}

// Shutdown implements do.Shutdownable.
func (h *OpenLibraryClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideOpenLibraryClient provides the Open Library client.
func ProvideOpenLibraryClient(i do.Injector) (*OpenLibraryClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiter := do.MustInvoke[*OutboundLimiterHandle](i)
	httpClient := do.MustInvoke[*http.Client](i)

	client := openlibrary.New(openlibrary.Options{
		BaseURL:    cfg.Covers.OpenLibraryURL,
		CoversURL:  cfg.Covers.OpenLibraryCovers,
		HTTPClient: httpClient,
		Limiter:    limiter.KeyedRateLimiter,
		Logger:     log.Logger,
	})
	return &OpenLibraryClientHandle{Client: client}, nil
}

// GoogleBooksClientHandle wraps the Google Books client with shutdown capability.
type GoogleBooksClientHandle struct {
	*googlebooks.Client
}

// Shutdown implements do.Shutdownable.
func (h *GoogleBooksClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideGoogleBooksClient provides the Google Books client.
func ProvideGoogleBooksClient(i do.Injector) (*GoogleBooksClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiter := do.MustInvoke[*OutboundLimiterHandle](i)
	httpClient := do.MustInvoke[*http.Client](i)

	client := googlebooks.New(googlebooks.Options{
		BaseURL:    cfg.Covers.GoogleBooksURL,
		APIKey:     cfg.Covers.GoogleBooksAPIKey,
		HTTPClient: httpClient,
		Limiter:    limiter.KeyedRateLimiter,
		Logger:     log.Logger,
	})
	return &GoogleBooksClientHandle{Client: client}, nil
}

// ProvideCoverResolver provides the cached cover resolver. With remote
// lookups disabled it answers from the persisted cache only.
func ProvideCoverResolver(i do.Injector) (*covers.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	var strategies []covers.Strategy
	if cfg.Covers.Enabled {
		ol := do.MustInvoke[*OpenLibraryClientHandle](i)
		gb := do.MustInvoke[*GoogleBooksClientHandle](i)
		strategies = covers.DefaultStrategies(ol.Client, gb.Client)
	} else {
		log.Info("Remote cover lookups disabled by configuration")
	}

	resolver := covers.NewResolver(context.Background(), storeHandle.Repository, strategies, log.Logger, m)
	log.Debug("Cover resolver initialized", "cached_entries", resolver.Len(), "strategies", len(strategies))

	return resolver, nil
}

// ProvideCoverService provides the cover service.
func ProvideCoverService(i do.Injector) (*service.CoverService, error) {
	library := do.MustInvoke[*service.LibraryService](i)
	resolver := do.MustInvoke[*covers.Resolver](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCoverService(library, resolver, log.Logger), nil
}

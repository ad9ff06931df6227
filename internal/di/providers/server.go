package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/api"
	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/metrics"
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
	"github.com/pagetrail/pagetrail-server/internal/service"
	"github.com/pagetrail/pagetrail-server/internal/sse"
)

// Version is reported in the OpenAPI document.
var Version = "dev"

// APIServerHandle wraps the API server and owns its per-client cover limiter.
type APIServerHandle struct {
	*api.Server
	limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *APIServerHandle) Shutdown() error {
	h.limiter.Stop()
	return nil
}

// ProvideAPIServer provides the routed HTTP handler.
func ProvideAPIServer(i do.Injector) (*APIServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	sseHandler := do.MustInvoke[*sse.Handler](i)

	services := &api.Services{
		Library: do.MustInvoke[*service.LibraryService](i),
		Covers:  do.MustInvoke[*service.CoverService](i),
	}

	limiter := ratelimit.New(cfg.Server.CoverRequestsPerSecond, cfg.Server.CoverBurst)
	srv := api.NewServer(services, sseHandler, m, limiter, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Version:     Version,
	}, log.Logger)

	return &APIServerHandle{Server: srv, limiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*APIServerHandle](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}

// Package api provides the HTTP API server and handlers for Pagetrail.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pagetrail/pagetrail-server/internal/metrics"
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
	"github.com/pagetrail/pagetrail-server/internal/service"
	"github.com/pagetrail/pagetrail-server/internal/sse"
)

// Services bundles the services the handlers call.
type Services struct {
	Library *service.LibraryService
	Covers  *service.CoverService
}

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	Version     string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services     *Services
	sseHandler   *sse.Handler
	metrics      *metrics.Metrics
	coverLimiter *ratelimit.KeyedRateLimiter
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// m and coverLimiter may be nil.
func NewServer(
	services *Services,
	sseHandler *sse.Handler,
	m *metrics.Metrics,
	coverLimiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(metricsMiddleware(m))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	humaConfig := huma.DefaultConfig("Pagetrail API", opts.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services:     services,
		sseHandler:   sseHandler,
		metrics:      m,
		coverLimiter: coverLimiter,
		router:       router,
		api:          api,
		logger:       logger,
	}

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerViewRoutes()
	s.registerCoverRoutes()
	s.registerTransferRoutes()
	s.registerSearchRoutes()

	// Streaming and scrape endpoints are plain handlers outside huma.
	if sseHandler != nil {
		router.Get("/api/v1/events", sseHandler.ServeHTTP)
	}
	router.Method(http.MethodGet, "/metrics", m.Handler())

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

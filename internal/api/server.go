// Package api provides the HTTP API server and handlers for the ShoeFit server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/shoefit/shoefit-server/internal/cache"
	"github.com/shoefit/shoefit-server/internal/metrics"
	"github.com/shoefit/shoefit-server/internal/ratelimit"
	"github.com/shoefit/shoefit-server/internal/search"
	"github.com/shoefit/shoefit-server/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	// CORSOrigins lists allowed origins. Empty allows none.
	CORSOrigins []string
	// RateLimit is the global per-IP limit in requests per minute. 0 disables it.
	RateLimit int
	// AuthRateLimit and AuthRateBurst bound the auth endpoints per IP.
	AuthRateLimit float64
	AuthRateBurst int
	// MetricsPath serves prometheus metrics when Metrics is non-nil.
	MetricsPath string
	// MaxImageBytes bounds catalog image uploads.
	MaxImageBytes int64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	search   *search.SearchIndex
	cache    *cache.Cache
	metrics  *metrics.Metrics
	opts     Options

	router          *chi.Mux
	api             huma.API
	authRateLimiter *ratelimit.KeyedRateLimiter
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// searchIndex, c and m may be nil; the matching health components and the
// metrics endpoint are then skipped.
func NewServer(
	st store.Store,
	services *Services,
	searchIndex *search.SearchIndex,
	c *cache.Cache,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = 1
	}
	if opts.AuthRateBurst <= 0 {
		opts.AuthRateBurst = 10
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = MaxUploadSize
	}

	s := &Server{
		store:           st,
		services:        services,
		search:          searchIndex,
		cache:           c,
		metrics:         m,
		opts:            opts,
		router:          chi.NewRouter(),
		authRateLimiter: ratelimit.New(opts.AuthRateLimit, opts.AuthRateBurst),
		logger:          logger,
	}

	s.setupMiddleware()
	s.api = humachi.New(s.router, newHumaConfig())
	RegisterErrorHandler()
	s.setupRoutes()

	return s
}

// newHumaConfig returns the OpenAPI configuration shared by the server and
// its tests.
func newHumaConfig() huma.Config {
	cfg := huma.DefaultConfig("ShoeFit API", "1.0.0")
	cfg.Info.Description = "Shoe size tracking and size recommendations."
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	cfg.Transformers = append(cfg.Transformers, EnvelopeTransformer)
	return cfg
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router returns the underlying chi router.
func (s *Server) Router() chi.Router {
	return s.router
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures the middleware stack. Order matters: the
// request id and real IP must be set before logging and rate limiting read
// them.
func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(metricsMiddleware(s.metrics))

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"ETag", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if s.opts.RateLimit > 0 {
		s.router.Use(httprate.Limit(
			s.opts.RateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByRealIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeRateLimited(w, s.logger)
			}),
		))
	}

	s.router.Use(authRateLimit(s.authRateLimiter, s.logger))
	s.router.Use(authMiddleware(s.services.Auth))
}

// setupRoutes registers every operation.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerCatalogRoutes()
	s.registerCatalogImageRoutes()
	s.registerShoeRoutes()
	s.registerRecommendationRoutes()

	if s.metrics != nil {
		s.router.Handle(s.opts.MetricsPath, s.metrics.Handler())
	}
}

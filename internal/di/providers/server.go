package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/shoefit/shoefit-server/internal/api"
	"github.com/shoefit/shoefit-server/internal/config"
	"github.com/shoefit/shoefit-server/internal/logger"
	"github.com/shoefit/shoefit-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:           do.MustInvoke[*service.AuthService](i),
		Session:        do.MustInvoke[*service.SessionService](i),
		Catalog:        do.MustInvoke[*service.CatalogService](i),
		Shoe:           do.MustInvoke[*service.ShoeService](i),
		Recommendation: do.MustInvoke[*service.RecommendationService](i),
	}

	handler := api.NewServer(
		storeHandle.Store,
		services,
		indexHandle.SearchIndex,
		cacheHandle.Cache,
		metricsHandle.Metrics,
		api.Options{
			CORSOrigins:   cfg.Server.CORSOrigins,
			RateLimit:     cfg.Server.RateLimit,
			AuthRateLimit: cfg.Auth.RateLimit,
			AuthRateBurst: cfg.Auth.RateBurst,
			MetricsPath:   cfg.Metrics.Path,
			MaxImageBytes: cfg.Server.MaxImageBytes,
		},
		log.Logger,
	)

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

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}

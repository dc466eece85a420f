package providers

import (
	"github.com/samber/do/v2"

	"github.com/shoefit/shoefit-server/internal/cache"
	"github.com/shoefit/shoefit-server/internal/config"
	"github.com/shoefit/shoefit-server/internal/logger"
	"github.com/shoefit/shoefit-server/internal/metrics"
)

// CacheHandle wraps the recommendation cache. Cache is nil when caching is
// disabled.
type CacheHandle struct {
	Cache *cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	if h.Cache == nil {
		return nil
	}
	return h.Cache.Close()
}

// ProvideCache provides the badger-backed recommendation cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Cache.Enabled {
		log.Info("Recommendation cache disabled by configuration")
		return &CacheHandle{}, nil
	}

	c, err := cache.Open(cache.Options{
		Path:   cfg.CachePath(),
		TTL:    cfg.Cache.TTL,
		Logger: log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Recommendation cache initialized", "path", cfg.CachePath(), "ttl", cfg.Cache.TTL)

	return &CacheHandle{Cache: c}, nil
}

// MetricsHandle wraps the prometheus metrics. Metrics is nil when disabled.
type MetricsHandle struct {
	Metrics *metrics.Metrics
}

// ProvideMetrics provides the prometheus metrics registry.
func ProvideMetrics(i do.Injector) (*MetricsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Metrics.Enabled {
		return &MetricsHandle{}, nil
	}
	return &MetricsHandle{Metrics: metrics.New()}, nil
}

package providers

import (
	"github.com/samber/do/v2"

	"github.com/shoefit/shoefit-server/internal/auth"
	"github.com/shoefit/shoefit-server/internal/config"
	"github.com/shoefit/shoefit-server/internal/logger"
	"github.com/shoefit/shoefit-server/internal/media/images"
	"github.com/shoefit/shoefit-server/internal/recommend"
	"github.com/shoefit/shoefit-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, metricsHandle.Metrics, log.Logger), nil
}

// ProvideCatalogService provides the catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	processor := do.MustInvoke[*images.Processor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, indexHandle.SearchIndex, processor, log.Logger), nil
}

// ProvideShoeService provides the owned-shoe service.
func ProvideShoeService(i do.Injector) (*service.ShoeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewShoeService(storeHandle.Store, cacheHandle.Cache, log.Logger), nil
}

// ProvideRecommendEngine provides the recommendation engine for the
// configured size-system policy.
func ProvideRecommendEngine(i do.Injector) (*recommend.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)

	policy, err := recommend.ParsePolicy(cfg.Recommend.Policy)
	if err != nil {
		return nil, err
	}
	return recommend.NewEngine(policy), nil
}

// ProvideRecommendationService provides the recommendation service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	engine := do.MustInvoke[*recommend.Engine](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendationService(
		storeHandle.Store,
		catalog,
		engine,
		cacheHandle.Cache,
		metricsHandle.Metrics,
		log.Logger,
	), nil
}

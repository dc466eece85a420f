package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shoefit/shoefit-server/internal/cache"
	"github.com/shoefit/shoefit-server/internal/domain"
	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
	"github.com/shoefit/shoefit-server/internal/metrics"
	"github.com/shoefit/shoefit-server/internal/recommend"
	"github.com/shoefit/shoefit-server/internal/store"
)

// RecommendationService answers "what size should I buy" for a catalog
// entry from the caller's own shoe history.
type RecommendationService struct {
	store   store.Store
	catalog *CatalogService
	engine  *recommend.Engine
	cache   *cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
// cache and m may be nil.
func NewRecommendationService(
	store store.Store,
	catalog *CatalogService,
	engine *recommend.Engine,
	c *cache.Cache,
	m *metrics.Metrics,
	logger *slog.Logger,
) *RecommendationService {
	return &RecommendationService{
		store:   store,
		catalog: catalog,
		engine:  engine,
		cache:   c,
		metrics: m,
		logger:  orDiscard(logger),
	}
}

// RecommendationResult is a recommendation for one catalog entry.
type RecommendationResult struct {
	CatalogID         string `json:"catalog_id"`
	Brand             string `json:"brand"`
	Model             string `json:"model"`
	SizeSystem        string `json:"size_system,omitempty"`
	ConfidencePercent int    `json:"confidence_percent"`
	recommend.Recommendation
	Cached bool `json:"-"`
}

// Recommend computes the recommendation for catalogID. sizeSystem is the
// system the caller wants the answer in and may be empty.
func (s *RecommendationService) Recommend(ctx context.Context, userID, catalogID, sizeSystem string) (*RecommendationResult, error) {
	var system domain.SizeSystem
	if strings.TrimSpace(sizeSystem) != "" {
		parsed, ok := domain.ParseSizeSystem(sizeSystem)
		if !ok {
			return nil, domainerrors.Validationf("unknown size system %q", sizeSystem)
		}
		system = parsed
	}

	entry, err := s.catalog.Get(ctx, catalogID)
	if err != nil {
		return nil, err
	}

	// The generation is read before the history. A shoe added or deleted
	// after this point bumps it, so a result computed from the older
	// history is written under a key later lookups no longer use.
	key, cacheable := s.cacheKey(ctx, userID, entry.ID, system)
	if cacheable {
		if cached := s.lookup(ctx, key); cached != nil {
			return cached, nil
		}
	}

	shoes, err := s.store.ListShoesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shoes: %w", err)
	}

	history := make([]domain.OwnedShoe, len(shoes))
	for i, shoe := range shoes {
		history[i] = *shoe
	}

	rec := s.engine.Recommend(*entry, system, history)
	s.metrics.RecordRecommendation(string(rec.Tier))

	result := &RecommendationResult{
		CatalogID:         entry.ID,
		Brand:             entry.Brand,
		Model:             entry.Model,
		SizeSystem:        string(system),
		ConfidencePercent: rec.ConfidencePercent(),
		Recommendation:    rec,
	}

	if cacheable {
		s.remember(ctx, key, result)
	}

	s.logger.Debug("recommendation computed",
		"user_id", userID,
		"catalog_id", entry.ID,
		"tier", rec.Tier,
		"history", len(history),
	)

	return result, nil
}

// cacheKey returns the key for the user's current history generation. It
// reports false when there is no cache or the generation cannot be read.
func (s *RecommendationService) cacheKey(ctx context.Context, userID, catalogID string, system domain.SizeSystem) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.Generation(ctx, cache.UserGenerationKey(userID))
	if err != nil {
		s.logger.Warn("recommendation cache generation read failed", "user_id", userID, "error", err)
		return "", false
	}
	return cache.RecommendationKey(userID, gen, catalogID, string(system)), true
}

func (s *RecommendationService) lookup(ctx context.Context, key string) *RecommendationResult {
	if s.cache == nil {
		return nil
	}
	var cached RecommendationResult
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("recommendation cache read failed", "key", key, "error", err)
		return nil
	}
	s.metrics.RecordCacheLookup(hit)
	if !hit {
		return nil
	}
	cached.Cached = true
	return &cached
}

func (s *RecommendationService) remember(ctx context.Context, key string, result *RecommendationResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		s.logger.Warn("recommendation cache write failed", "key", key, "error", err)
	}
}

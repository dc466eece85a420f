package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shoefit/shoefit-server/internal/cache"
	"github.com/shoefit/shoefit-server/internal/domain"
	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
	"github.com/shoefit/shoefit-server/internal/id"
	"github.com/shoefit/shoefit-server/internal/store"
)

// ShoeService manages each user's owned-shoe history.
type ShoeService struct {
	store  store.Store
	cache  *cache.Cache
	logger *slog.Logger
}

// NewShoeService creates a new shoe service. cache may be nil.
func NewShoeService(store store.Store, c *cache.Cache, logger *slog.Logger) *ShoeService {
	return &ShoeService{
		store:  store,
		cache:  c,
		logger: orDiscard(logger),
	}
}

// AddShoeRequest records a shoe the user owns. Brand and model are copied
// from the catalog entry.
type AddShoeRequest struct {
	CatalogID  string `json:"catalog_id" validate:"notblank,max=64"`
	Size       string `json:"size" validate:"notblank,max=10,shoesize"`
	SizeSystem string `json:"size_system" validate:"sizesystem"`
	Fit        string `json:"fit" validate:"fit"`
}

// List returns the user's shoes ordered by brand, model, then creation time.
func (s *ShoeService) List(ctx context.Context, userID string) ([]*domain.OwnedShoe, error) {
	shoes, err := s.store.ListShoesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shoes: %w", err)
	}
	return shoes, nil
}

// Add records an owned shoe and drops the user's cached recommendations.
func (s *ShoeService) Add(ctx context.Context, userID string, req AddShoeRequest) (*domain.OwnedShoe, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	entry, err := s.store.GetCatalogEntry(ctx, strings.TrimSpace(req.CatalogID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("catalog entry not found")
		}
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}

	// Both already passed validation.
	system, _ := domain.ParseSizeSystem(req.SizeSystem)
	fit, _ := domain.ParseFit(req.Fit)

	shoeID, err := id.Generate(id.PrefixShoe)
	if err != nil {
		return nil, fmt.Errorf("generate shoe ID: %w", err)
	}

	shoe := &domain.OwnedShoe{
		ID:         shoeID,
		UserID:     userID,
		CatalogID:  entry.ID,
		Brand:      entry.Brand,
		Model:      entry.Model,
		Size:       strings.TrimSpace(req.Size),
		SizeSystem: system,
		Fit:        fit,
		CreatedAt:  time.Now(),
	}

	if err := s.store.CreateShoe(ctx, shoe); err != nil {
		return nil, fmt.Errorf("create shoe: %w", err)
	}

	s.invalidate(ctx, userID)

	s.logger.Info("shoe added",
		"user_id", userID,
		"shoe_id", shoe.ID,
		"catalog_id", entry.ID,
		"fit", shoe.Fit,
	)

	return shoe, nil
}

// Delete removes one of the user's shoes. Another user's shoe is reported
// as not found.
func (s *ShoeService) Delete(ctx context.Context, userID, shoeID string) error {
	if err := s.store.DeleteShoe(ctx, userID, shoeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("shoe not found")
		}
		return fmt.Errorf("delete shoe: %w", err)
	}

	s.invalidate(ctx, userID)

	s.logger.Info("shoe deleted", "user_id", userID, "shoe_id", shoeID)
	return nil
}

// invalidate bumps the user's history generation, which retires every
// cached recommendation including ones still being computed, then drops the
// retired entries. It runs detached from ctx cancellation because the shoe
// change has already been committed.
func (s *ShoeService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if _, err := s.cache.Bump(ctx, cache.UserGenerationKey(userID)); err != nil {
		s.logger.Error("failed to bump recommendation generation", "user_id", userID, "error", err)
	}
	if _, err := s.cache.DeletePrefix(ctx, cache.UserRecommendationPrefix(userID)); err != nil {
		s.logger.Warn("failed to drop cached recommendations", "user_id", userID, "error", err)
	}
}

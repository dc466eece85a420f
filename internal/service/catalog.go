package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shoefit/shoefit-server/internal/domain"
	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
	"github.com/shoefit/shoefit-server/internal/id"
	"github.com/shoefit/shoefit-server/internal/media/images"
	"github.com/shoefit/shoefit-server/internal/search"
	"github.com/shoefit/shoefit-server/internal/store"
	"github.com/shoefit/shoefit-server/internal/util"
)

// CatalogService manages the shared shoe catalog, its search index and
// its images.
type CatalogService struct {
	store  store.Store
	search *search.SearchIndex
	images *images.Processor
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	store store.Store,
	searchIndex *search.SearchIndex,
	imageProcessor *images.Processor,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		store:  store,
		search: searchIndex,
		images: imageProcessor,
		logger: orDiscard(logger),
	}
}

// CreateCatalogEntryRequest contains the data for a new catalog entry.
type CreateCatalogEntryRequest struct {
	Brand    string `json:"brand" validate:"notblank,max=100"`
	Model    string `json:"model" validate:"notblank,max=100"`
	Category string `json:"category" validate:"max=50"`
}

// CatalogImagePath is the API path that serves an entry's image.
func CatalogImagePath(entryID string) string {
	return "/api/v1/catalog/" + entryID + "/image"
}

// List returns catalog entries ordered by brand then model. query filters by
// case-insensitive substring on brand or model.
func (s *CatalogService) List(ctx context.Context, query string, params store.PaginationParams) (*store.PaginatedResult[*domain.CatalogEntry], error) {
	params.Validate()
	result, err := s.store.ListCatalog(ctx, strings.TrimSpace(query), params)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return result, nil
}

// Get returns one catalog entry.
func (s *CatalogService) Get(ctx context.Context, entryID string) (*domain.CatalogEntry, error) {
	entry, err := s.store.GetCatalogEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("catalog entry not found")
		}
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	return entry, nil
}

// Search runs a full-text query over brand, model and category.
func (s *CatalogService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return result, nil
}

// Create adds a catalog entry. Brand and model are unique together,
// ignoring case.
func (s *CatalogService) Create(ctx context.Context, req CreateCatalogEntryRequest) (*domain.CatalogEntry, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	entryID, err := id.Generate(id.PrefixCatalog)
	if err != nil {
		return nil, fmt.Errorf("generate catalog ID: %w", err)
	}

	entry := &domain.CatalogEntry{
		Entity:   domain.Entity{ID: entryID},
		Brand:    strings.TrimSpace(req.Brand),
		Model:    strings.TrimSpace(req.Model),
		Category: strings.TrimSpace(req.Category),
	}
	entry.InitTimestamps()

	if err := s.store.CreateCatalogEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("%s is already in the catalog", entry.DisplayName())
		}
		return nil, fmt.Errorf("create catalog entry: %w", err)
	}

	// The store is the source of truth; a missed index update is repaired
	// by the next reindex.
	if err := s.search.IndexEntry(entry); err != nil {
		s.logger.Warn("failed to index catalog entry", "entry_id", entry.ID, "error", err)
	}

	s.logger.Info("catalog entry created", "entry_id", entry.ID, "brand", entry.Brand, "model", entry.Model)

	return entry, nil
}

// UploadImage stores an image for an entry under its per-entry image key and
// records the serving URL and BlurHash placeholder.
func (s *CatalogService) UploadImage(ctx context.Context, entryID string, data []byte) (*domain.CatalogEntry, error) {
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}

	slug := s.imageSlug(entry)

	result, err := s.images.Process(ctx, slug, data)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrTooLarge):
			return nil, domainerrors.PayloadTooLarge(fmt.Sprintf("image must be at most %d bytes", s.images.MaxBytes()))
		case errors.Is(err, images.ErrUnsupportedFormat):
			return nil, domainerrors.UnsupportedMedia("image must be JPEG, PNG, GIF or WebP")
		default:
			return nil, fmt.Errorf("process image: %w", err)
		}
	}

	entry.ImageURL = CatalogImagePath(entry.ID)
	entry.BlurHash = result.BlurHash
	entry.Touch()

	if err := s.store.UpdateCatalogEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("update catalog entry: %w", err)
	}

	s.logger.Info("catalog image uploaded",
		"entry_id", entry.ID,
		"slug", slug,
		"format", result.Format.Name,
		"size", result.Size,
	)

	return entry, nil
}

// GetImage loads the stored image for an entry.
func (s *CatalogService) GetImage(ctx context.Context, entryID string) (*images.Image, error) {
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.HasImage() {
		return nil, domainerrors.NotFound("catalog entry has no image")
	}

	img, err := s.images.Storage().Load(s.imageSlug(entry))
	if err != nil {
		if errors.Is(err, images.ErrNotFound) {
			return nil, domainerrors.NotFound("catalog entry has no image")
		}
		return nil, fmt.Errorf("load image: %w", err)
	}
	return img, nil
}

// Delete removes an entry, its image and its search document. Owned shoes
// that referenced it keep their brand and model and lose the link.
func (s *CatalogService) Delete(ctx context.Context, entryID string) error {
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCatalogEntry(ctx, entryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("catalog entry not found")
		}
		return fmt.Errorf("delete catalog entry: %w", err)
	}

	if err := s.images.Storage().Delete(s.imageSlug(entry)); err != nil {
		s.logger.Warn("failed to delete catalog image", "entry_id", entryID, "error", err)
	}
	if err := s.search.DeleteEntry(entryID); err != nil {
		s.logger.Warn("failed to remove catalog entry from search", "entry_id", entryID, "error", err)
	}

	s.logger.Info("catalog entry deleted", "entry_id", entryID)
	return nil
}

// EnsureSearchIndex rebuilds the search index from the store when the index
// is empty but the catalog is not, as after a mapping change or a lost
// index directory.
func (s *CatalogService) EnsureSearchIndex(ctx context.Context) error {
	indexed, err := s.search.DocumentCount()
	if err != nil {
		return fmt.Errorf("count search documents: %w", err)
	}
	if indexed > 0 {
		return nil
	}

	stored, err := s.store.CountCatalog(ctx)
	if err != nil {
		return fmt.Errorf("count catalog: %w", err)
	}
	if stored == 0 {
		return nil
	}

	s.logger.Info("search index is empty, rebuilding from store", "entries", stored)
	return s.Reindex(ctx)
}

// Reindex replaces the search index contents with every stored entry.
func (s *CatalogService) Reindex(ctx context.Context) error {
	entries, err := s.store.ListAllCatalog(ctx)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	if err := s.search.Reindex(entries); err != nil {
		return fmt.Errorf("reindex catalog: %w", err)
	}
	return nil
}

// imageSlug is the entry's storage key. It embeds the entry ID, so two
// entries whose brand-model slugs match never share a file.
func (s *CatalogService) imageSlug(entry *domain.CatalogEntry) string {
	return util.CatalogImageKey(entry.Brand, entry.Model, entry.ID)
}

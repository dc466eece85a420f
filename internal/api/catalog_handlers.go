package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shoefit/shoefit-server/internal/color"
	"github.com/shoefit/shoefit-server/internal/domain"
	"github.com/shoefit/shoefit-server/internal/search"
	"github.com/shoefit/shoefit-server/internal/service"
	"github.com/shoefit/shoefit-server/internal/store"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "List catalog",
		Description: "Lists catalog shoes ordered by brand then model. q filters brand or model by substring, ignoring case.",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleListCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/search",
		Summary:     "Search catalog",
		Description: "Full-text search over brand, model and category with typo tolerance",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalogEntry",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{id}",
		Summary:     "Get catalog entry",
		Description: "Returns one catalog shoe",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleGetCatalogEntry)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCatalogEntry",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/catalog",
		Summary:       "Create catalog entry",
		Description:   "Adds a shoe to the catalog. Brand and model are unique together, ignoring case. Admin only.",
		Tags:          []string{"Admin"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCatalogEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCatalogEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/catalog/{id}",
		Summary:     "Delete catalog entry",
		Description: "Removes a catalog shoe, its image and its search document. Owned shoes keep their brand and model. Admin only.",
		Tags:        []string{"Admin"},
		Security:    bearerSecurity,
	}, s.handleDeleteCatalogEntry)
}

// === DTOs ===

// ListCatalogInput contains catalog list parameters.
type ListCatalogInput struct {
	Query  string `query:"q" maxLength:"100" doc:"Substring filter on brand or model"`
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
	Offset int    `query:"offset" minimum:"0" doc:"Items to skip"`
}

// SearchCatalogInput contains search parameters.
type SearchCatalogInput struct {
	Query    string `query:"q" maxLength:"100" doc:"Search text; empty matches everything"`
	Category string `query:"category" maxLength:"50" doc:"Exact category filter"`
	Limit    int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum hits"`
	Offset   int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// CatalogIDInput identifies a catalog entry.
type CatalogIDInput struct {
	ID string `path:"id" doc:"Catalog entry ID"`
}

// CreateCatalogEntryRequest is the request body for a new catalog entry.
type CreateCatalogEntryRequest struct {
	Brand    string `json:"brand" maxLength:"100" doc:"Brand, e.g. Nike"`
	Model    string `json:"model" maxLength:"100" doc:"Model, e.g. Air Zoom Pegasus 40"`
	Category string `json:"category,omitempty" maxLength:"50" doc:"Optional category, e.g. Running"`
}

// CreateCatalogEntryInput wraps the create request for Huma.
type CreateCatalogEntryInput struct {
	Body CreateCatalogEntryRequest
}

// CatalogEntryResponse is a catalog shoe in API responses.
type CatalogEntryResponse struct {
	ID        string    `json:"id" doc:"Catalog entry ID"`
	Brand     string    `json:"brand" doc:"Brand"`
	Model     string    `json:"model" doc:"Model"`
	Category  string    `json:"category,omitempty" doc:"Category"`
	ImageURL  string    `json:"image_url,omitempty" doc:"Path of the entry's image, when one was uploaded"`
	BlurHash  string    `json:"blur_hash,omitempty" doc:"BlurHash placeholder for the image"`
	Color     string    `json:"color" doc:"Brand swatch color (#RRGGBB) for entries shown without an image"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// CatalogEntryOutput wraps a catalog entry for Huma.
type CatalogEntryOutput struct {
	Body CatalogEntryResponse
}

// CatalogListResponse is one page of catalog entries.
type CatalogListResponse struct {
	Items   []CatalogEntryResponse `json:"items"`
	Total   int                    `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
	HasMore bool                   `json:"has_more"`
}

// CatalogListOutput wraps a catalog page for Huma.
type CatalogListOutput struct {
	Body CatalogListResponse
}

// SearchCatalogOutput wraps search results for Huma.
type SearchCatalogOutput struct {
	Body *search.SearchResult
}

// === Handlers ===

func (s *Server) handleListCatalog(ctx context.Context, input *ListCatalogInput) (*CatalogListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	page, err := s.services.Catalog.List(ctx, input.Query, store.PaginationParams{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	items := make([]CatalogEntryResponse, 0, len(page.Items))
	for _, e := range page.Items {
		items = append(items, mapCatalogEntry(e))
	}

	return &CatalogListOutput{
		Body: CatalogListResponse{
			Items:   items,
			Total:   page.Total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore,
		},
	}, nil
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchCatalogOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	result, err := s.services.Catalog.Search(ctx, search.SearchParams{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &SearchCatalogOutput{Body: result}, nil
}

func (s *Server) handleGetCatalogEntry(ctx context.Context, input *CatalogIDInput) (*CatalogEntryOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	entry, err := s.services.Catalog.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CatalogEntryOutput{Body: mapCatalogEntry(entry)}, nil
}

func (s *Server) handleCreateCatalogEntry(ctx context.Context, input *CreateCatalogEntryInput) (*CatalogEntryOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	entry, err := s.services.Catalog.Create(ctx, service.CreateCatalogEntryRequest{
		Brand:    input.Body.Brand,
		Model:    input.Body.Model,
		Category: input.Body.Category,
	})
	if err != nil {
		return nil, err
	}

	return &CatalogEntryOutput{Body: mapCatalogEntry(entry)}, nil
}

func (s *Server) handleDeleteCatalogEntry(ctx context.Context, input *CatalogIDInput) (*MessageOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Catalog entry deleted"}}, nil
}

// === Helpers ===

func mapCatalogEntry(e *domain.CatalogEntry) CatalogEntryResponse {
	return CatalogEntryResponse{
		ID:        e.ID,
		Brand:     e.Brand,
		Model:     e.Model,
		Category:  e.Category,
		ImageURL:  e.ImageURL,
		BlurHash:  e.BlurHash,
		Color:     color.ForBrand(e.Brand),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

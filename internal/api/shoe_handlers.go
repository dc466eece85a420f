package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shoefit/shoefit-server/internal/domain"
	"github.com/shoefit/shoefit-server/internal/service"
)

func (s *Server) registerShoeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listShoes",
		Method:      http.MethodGet,
		Path:        "/api/v1/shoes",
		Summary:     "List my shoes",
		Description: "Lists the caller's shoes ordered by brand, model and creation time",
		Tags:        []string{"Shoes"},
		Security:    bearerSecurity,
	}, s.handleListShoes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addShoe",
		Method:        http.MethodPost,
		Path:          "/api/v1/shoes",
		Summary:       "Add a shoe",
		Description:   "Records a catalog shoe the caller owns, with its size and how it fits",
		Tags:          []string{"Shoes"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddShoe)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteShoe",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shoes/{id}",
		Summary:     "Delete a shoe",
		Description: "Removes one of the caller's shoes",
		Tags:        []string{"Shoes"},
		Security:    bearerSecurity,
	}, s.handleDeleteShoe)
}

// === DTOs ===

// ListShoesInput has no parameters; the caller comes from the bearer token.
type ListShoesInput struct{}

// AddShoeRequest is the request body for recording a shoe.
type AddShoeRequest struct {
	CatalogID  string `json:"catalog_id" maxLength:"64" doc:"Catalog entry the shoe was picked from"`
	Size       string `json:"size" maxLength:"10" doc:"Size as printed on the shoe, e.g. 10.5"`
	SizeSystem string `json:"size_system,omitempty" doc:"US, UK, EU or CM. Defaults to US."`
	Fit        string `json:"fit,omitempty" doc:"too_small, perfect or too_large. Defaults to perfect."`
}

// AddShoeInput wraps the add request for Huma.
type AddShoeInput struct {
	Body AddShoeRequest
}

// ShoeIDInput identifies an owned shoe.
type ShoeIDInput struct {
	ID string `path:"id" doc:"Shoe ID"`
}

// ShoeResponse is an owned shoe in API responses.
type ShoeResponse struct {
	ID         string    `json:"id" doc:"Shoe ID"`
	CatalogID  string    `json:"catalog_id,omitempty" doc:"Catalog entry, unless it was deleted"`
	Brand      string    `json:"brand" doc:"Brand"`
	Model      string    `json:"model" doc:"Model"`
	Size       string    `json:"size" doc:"Recorded size"`
	SizeSystem string    `json:"size_system" doc:"Size system"`
	Fit        string    `json:"fit" doc:"Fit feedback"`
	CreatedAt  time.Time `json:"created_at" doc:"When the shoe was recorded"`
}

// ShoeOutput wraps a shoe for Huma.
type ShoeOutput struct {
	Body ShoeResponse
}

// ShoeListResponse lists the caller's shoes.
type ShoeListResponse struct {
	Shoes []ShoeResponse `json:"shoes"`
}

// ShoeListOutput wraps the shoe list for Huma.
type ShoeListOutput struct {
	Body ShoeListResponse
}

// === Handlers ===

func (s *Server) handleListShoes(ctx context.Context, _ *ListShoesInput) (*ShoeListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shoes, err := s.services.Shoe.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ShoeResponse, 0, len(shoes))
	for _, shoe := range shoes {
		resp = append(resp, mapShoe(shoe))
	}

	return &ShoeListOutput{Body: ShoeListResponse{Shoes: resp}}, nil
}

func (s *Server) handleAddShoe(ctx context.Context, input *AddShoeInput) (*ShoeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shoe, err := s.services.Shoe.Add(ctx, userID, service.AddShoeRequest{
		CatalogID:  input.Body.CatalogID,
		Size:       input.Body.Size,
		SizeSystem: input.Body.SizeSystem,
		Fit:        input.Body.Fit,
	})
	if err != nil {
		return nil, err
	}

	return &ShoeOutput{Body: mapShoe(shoe)}, nil
}

func (s *Server) handleDeleteShoe(ctx context.Context, input *ShoeIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shoe.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Shoe deleted"}}, nil
}

func mapShoe(shoe *domain.OwnedShoe) ShoeResponse {
	return ShoeResponse{
		ID:         shoe.ID,
		CatalogID:  shoe.CatalogID,
		Brand:      shoe.Brand,
		Model:      shoe.Model,
		Size:       shoe.Size,
		SizeSystem: string(shoe.SizeSystem),
		Fit:        string(shoe.Fit),
		CreatedAt:  shoe.CreatedAt,
	}
}

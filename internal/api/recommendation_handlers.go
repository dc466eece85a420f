package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shoefit/shoefit-server/internal/service"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendation",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/{catalogId}",
		Summary:     "Recommend a size",
		Description: "Recommends a size for a catalog shoe from the caller's own history. " +
			"An exact brand and model match that fit perfectly wins (90%), then the mean of perfect fits for the brand (70%). " +
			"Otherwise the size is Unknown.",
		Tags:     []string{"Recommendations"},
		Security: bearerSecurity,
	}, s.handleGetRecommendation)
}

// GetRecommendationInput identifies the target shoe and desired size system.
type GetRecommendationInput struct {
	CatalogID  string `path:"catalogId" doc:"Catalog entry to size"`
	SizeSystem string `query:"size_system" doc:"US, UK, EU or CM. Only narrows the brand average when the server runs the same_system policy."`
}

// RecommendationOutput wraps a recommendation for Huma.
type RecommendationOutput struct {
	XCache string `header:"X-Cache" doc:"HIT when served from the recommendation cache"`
	Body   *service.RecommendationResult
}

func (s *Server) handleGetRecommendation(ctx context.Context, input *GetRecommendationInput) (*RecommendationOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Recommendation.Recommend(ctx, userID, input.CatalogID, input.SizeSystem)
	if err != nil {
		return nil, err
	}

	out := &RecommendationOutput{XCache: "MISS", Body: result}
	if result.Cached {
		out.XCache = "HIT"
	}
	return out, nil
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Health statuses, from best to worst.
const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"database": s.checkDatabase(ctx),
	}
	if s.search != nil {
		components["search"] = s.checkSearchIndex()
	}
	if s.cache != nil {
		components["cache"] = s.checkCache(ctx)
	}

	// The database is required; search and cache only degrade the service.
	overall := healthHealthy
	for name, c := range components {
		switch {
		case c.Status == healthUnhealthy && name == "database":
			overall = healthUnhealthy
		case c.Status != healthHealthy && overall == healthHealthy:
			overall = healthDegraded
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkDatabase verifies SQLite is reachable.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := s.store.Ping(ctx); err != nil {
		return ComponentHealth{Status: healthUnhealthy, Message: err.Error()}
	}
	return ComponentHealth{Status: healthHealthy, Latency: time.Since(start).String()}
}

// checkSearchIndex verifies the bleve index answers.
func (s *Server) checkSearchIndex() ComponentHealth {
	start := time.Now()
	if _, err := s.search.DocumentCount(); err != nil {
		return ComponentHealth{Status: healthDegraded, Message: err.Error()}
	}
	return ComponentHealth{Status: healthHealthy, Latency: time.Since(start).String()}
}

// checkCache verifies the recommendation cache is open.
func (s *Server) checkCache(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := s.cache.Ping(ctx); err != nil {
		return ComponentHealth{Status: healthDegraded, Message: err.Error()}
	}
	return ComponentHealth{Status: healthHealthy, Latency: time.Since(start).String()}
}

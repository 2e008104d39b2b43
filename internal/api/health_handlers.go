package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// healthProbeURL is looked up in the page cache to prove it is readable.
const healthProbeURL = "health://probe"

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
		"providers":  s.checkProviders(),
		"page_cache": s.checkPageCache(ctx),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkProviders verifies at least one metadata provider is registered.
func (s *Server) checkProviders() ComponentHealth {
	names := s.catalog.Providers()
	if len(names) == 0 {
		return ComponentHealth{
			Status:  "unhealthy",
			Message: "no providers registered",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: strconv.Itoa(len(names)) + " registered",
	}
}

// checkPageCache verifies the persistent page cache is readable.
func (s *Server) checkPageCache(ctx context.Context) ComponentHealth {
	// The persistent tier is optional.
	if s.pages == nil {
		return ComponentHealth{
			Status:  "healthy",
			Message: "persistent cache disabled",
		}
	}

	start := time.Now()
	_, err := s.pages.GetCachedPage(ctx, healthProbeURL)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "page cache read failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

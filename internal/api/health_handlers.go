package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Liveness probe",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)

	huma.Register(s.api, huma.Operation{
		OperationID: "readinessCheck",
		Method:      http.MethodGet,
		Path:        "/health/ready",
		Summary:     "Readiness check",
		Description: "Returns component checks for the database and the signing key cache",
		Tags:        []string{"Health"},
	}, s.handleReadinessCheck)
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status string `json:"status" example:"ok" doc:"Always ok while the process serves requests"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{Body: HealthResponse{Status: "ok"}}, nil
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// ReadinessResponse contains readiness data.
type ReadinessResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// ReadinessOutput wraps the readiness response for Huma.
type ReadinessOutput struct {
	Status int
	Body   ReadinessResponse
}

func (s *Server) handleReadinessCheck(ctx context.Context, _ *struct{}) (*ReadinessOutput, error) {
	components := map[string]ComponentHealth{
		"database": s.checkDatabase(ctx),
		"keys":     s.checkKeyCache(),
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

	status := http.StatusOK
	if overall == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	return &ReadinessOutput{
		Status: status,
		Body: ReadinessResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkDatabase pings the relational store.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: "degraded", Message: "database not configured"}
	}

	start := time.Now()
	err := s.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database ping failed",
		}
	}
	return ComponentHealth{Status: "healthy", Latency: latency.String()}
}

// checkKeyCache reports whether signing keys are loaded. An empty cache is
// degraded rather than unhealthy: it fills on the first authenticated request.
func (s *Server) checkKeyCache() ComponentHealth {
	if s.services == nil || s.services.Keys == nil {
		return ComponentHealth{Status: "degraded", Message: "key cache not configured"}
	}

	st := s.services.Keys.Status()
	if !st.Cached {
		return ComponentHealth{Status: "degraded", Message: "signing keys not loaded yet"}
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: formatKeyStatus(st.Keys, st.FetchedAt),
	}
}

func formatKeyStatus(n int, fetchedAt time.Time) string {
	age := time.Since(fetchedAt).Truncate(time.Second)
	switch n {
	case 1:
		return "1 key, fetched " + age.String() + " ago"
	default:
		return strconv.Itoa(n) + " keys, fetched " + age.String() + " ago"
	}
}

// ABOUTME: Health endpoint reporting uptime, cache occupancy and pipeline counters
// ABOUTME: Stays outside the rate-limited path so monitors are never throttled

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"content-shield-api/api/dto/responses"
	"content-shield-api/core/interfaces"
)

// PipelineInfo is the slice of the detection service the health endpoint needs
type PipelineInfo interface {
	Provider() string
	MetricsSnapshot() map[string]int64
}

// HealthHandler handles GET /health
type HealthHandler struct {
	pipeline  PipelineInfo
	cache     interfaces.Cache
	cacheMax  int
	startedAt time.Time
}

// NewHealthHandler creates a health handler; cacheMax of 0 means unbounded
func NewHealthHandler(pipeline PipelineInfo, cache interfaces.Cache, cacheMax int) *HealthHandler {
	return &HealthHandler{
		pipeline:  pipeline,
		cache:     cache,
		cacheMax:  cacheMax,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health and pipeline counters",
		Tags:        []string{"Health"},
	}, h.Health)
}

// HealthOutput wraps the health response body
type HealthOutput struct {
	Body responses.HealthResponse
}

// Health handles GET /health
func (h *HealthHandler) Health(ctx context.Context, input *struct{}) (*HealthOutput, error) {
	return &HealthOutput{
		Body: responses.HealthResponse{
			Status:   "ok",
			Uptime:   time.Since(h.startedAt).Round(time.Second).String(),
			Provider: h.pipeline.Provider(),
			Cache: responses.CacheInfo{
				Size:    h.cache.Len(ctx),
				MaxSize: h.cacheMax,
			},
			Metrics:   h.pipeline.MetricsSnapshot(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

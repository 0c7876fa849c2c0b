package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct{}

func (stubPipeline) Provider() string { return "mock" }

func (stubPipeline) MetricsSnapshot() map[string]int64 {
	return map[string]int64{"requests": 7, "cache_hits": 3, "provider_failures": 0}
}

type stubCache struct{ size int }

func (c stubCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (c stubCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (c stubCache) Delete(ctx context.Context, key string) error { return nil }
func (c stubCache) Len(ctx context.Context) int                  { return c.size }

func TestHealth_ReportsPipelineState(t *testing.T) {
	_, api := humatest.New(t)
	NewHealthHandler(stubPipeline{}, stubCache{size: 12}, 500).RegisterRoutes(api)

	resp := api.Get("/health")

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "mock", body["provider"])

	cache := body["cache"].(map[string]interface{})
	assert.Equal(t, 12.0, cache["size"])
	assert.Equal(t, 500.0, cache["maxSize"])

	metrics := body["metrics"].(map[string]interface{})
	assert.Equal(t, 7.0, metrics["requests"])
	assert.NotEmpty(t, body["timestamp"])
}

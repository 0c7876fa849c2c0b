// ABOUTME: Self-hosted model service backend speaking the /infer wire contract
// ABOUTME: Translates the service's responses into the common DetectionResult shape

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"content-shield-api/core/domain"
	apperrors "content-shield-api/core/errors"
	"content-shield-api/core/interfaces"
)

type modelServiceProvider struct {
	baseURL string
	timeout time.Duration
	deps    interfaces.Dependencies
}

func newModelService(baseURL string, timeout time.Duration, deps interfaces.Dependencies) Provider {
	return &modelServiceProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		deps:    deps,
	}
}

func (p *modelServiceProvider) Name() string { return NameModelService }

// inferResponse is the model service's detection response shape
type inferResponse struct {
	Score     float64                `json:"score"`
	Provider  string                 `json:"provider"`
	Details   map[string]interface{} `json:"details,omitempty"`
	LatencyMS int64                  `json:"latency_ms"`
}

func (p *modelServiceProvider) AnalyzeText(ctx context.Context, text string) (domain.DetectionResult, error) {
	return p.infer(ctx, "/infer/text", map[string]string{"text": text})
}

func (p *modelServiceProvider) AnalyzeImage(ctx context.Context, dataURI string) (domain.DetectionResult, error) {
	return p.infer(ctx, "/infer/image", map[string]string{"image": dataURI})
}

func (p *modelServiceProvider) infer(ctx context.Context, path string, payload map[string]string) (domain.DetectionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("marshal model service request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.deps.HTTPClient.Post(ctx, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return domain.DetectionResult{}, &apperrors.ProviderError{Provider: NameModelService, Reason: "request_failed", Err: err}
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return domain.DetectionResult{}, &apperrors.ProviderError{
			Provider: NameModelService,
			Reason:   "bad_status",
			Err:      &apperrors.ExternalAPIError{StatusCode: resp.StatusCode(), API: NameModelService, Message: "unexpected status"},
		}
	}

	var parsed inferResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body(), 4<<20)).Decode(&parsed); err != nil {
		return domain.DetectionResult{}, &apperrors.ProviderError{Provider: NameModelService, Reason: "bad_response", Err: err}
	}

	provider := parsed.Provider
	if provider == "" {
		provider = NameModelService
	}

	return domain.DetectionResult{
		Score:    domain.ClampUnit(parsed.Score),
		Provider: provider,
		Details:  parsed.Details,
	}, nil
}

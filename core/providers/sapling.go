// ABOUTME: Hosted text-classification backend (Sapling AI detector)
// ABOUTME: Text only; image requests answer with an unsupported-content fallback

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"content-shield-api/core/domain"
	apperrors "content-shield-api/core/errors"
	"content-shield-api/core/interfaces"
)

const saplingEndpoint = "https://api.sapling.ai/api/v1/aidetect"

type saplingProvider struct {
	apiKey  string
	timeout time.Duration
	deps    interfaces.Dependencies
}

func newSapling(apiKey string, timeout time.Duration, deps interfaces.Dependencies) Provider {
	return &saplingProvider{apiKey: apiKey, timeout: timeout, deps: deps}
}

func (p *saplingProvider) Name() string { return NameSapling }

type saplingRequest struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type saplingResponse struct {
	Score float64 `json:"score"`
}

func (p *saplingProvider) AnalyzeText(ctx context.Context, text string) (domain.DetectionResult, error) {
	return p.analyzeAt(ctx, saplingEndpoint, text)
}

func (p *saplingProvider) analyzeAt(ctx context.Context, endpoint, text string) (domain.DetectionResult, error) {
	body, err := json.Marshal(saplingRequest{Key: p.apiKey, Text: text})
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("marshal sapling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.deps.HTTPClient.Post(ctx, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.DetectionResult{}, &apperrors.ProviderError{Provider: NameSapling, Reason: "request_failed", Err: err}
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return domain.DetectionResult{}, &apperrors.ProviderError{
			Provider: NameSapling,
			Reason:   "bad_status",
			Err:      &apperrors.ExternalAPIError{StatusCode: resp.StatusCode(), API: NameSapling, Message: "unexpected status"},
		}
	}

	var parsed saplingResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body(), 1<<20)).Decode(&parsed); err != nil {
		return domain.DetectionResult{}, &apperrors.ProviderError{Provider: NameSapling, Reason: "bad_response", Err: err}
	}

	return domain.DetectionResult{
		Score:    domain.ClampUnit(parsed.Score),
		Provider: NameSapling,
		Details: map[string]interface{}{
			"text_length": len(text),
		},
	}, nil
}

func (p *saplingProvider) AnalyzeImage(ctx context.Context, dataURI string) (domain.DetectionResult, error) {
	return domain.FallbackResult(domain.ReasonUnsupportedContent), nil
}

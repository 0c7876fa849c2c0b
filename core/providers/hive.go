// ABOUTME: Hosted image-classification backend (Hive AI-generated media detector)
// ABOUTME: Image only; text requests answer with an unsupported-content fallback

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

const defaultHiveEndpoint = "https://api.thehive.ai/api/v2/task/sync"

type hiveProvider struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
	deps     interfaces.Dependencies
}

func newHive(apiKey, endpoint string, timeout time.Duration, deps interfaces.Dependencies) Provider {
	if endpoint == "" {
		endpoint = defaultHiveEndpoint
	}
	return &hiveProvider{apiKey: apiKey, endpoint: endpoint, timeout: timeout, deps: deps}
}

func (p *hiveProvider) Name() string { return NameHive }

type hiveRequest struct {
	Input []hiveInput `json:"input"`
}

type hiveInput struct {
	Image string `json:"image"`
}

// hiveResponse mirrors the nested sync-task response; only the class list
// matters here.
type hiveResponse struct {
	Status []struct {
		Response struct {
			Output []struct {
				Classes []struct {
					Class string  `json:"class"`
					Score float64 `json:"score"`
				} `json:"classes"`
			} `json:"output"`
		} `json:"response"`
	} `json:"status"`
}

func (p *hiveProvider) AnalyzeImage(ctx context.Context, dataURI string) (domain.DetectionResult, error) {
	body, err := json.Marshal(hiveRequest{Input: []hiveInput{{Image: dataURI}}})
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("marshal hive request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.deps.HTTPClient.PostWithHeaders(ctx, p.endpoint, bytes.NewReader(body), map[string]string{
		"Authorization": "Token " + p.apiKey,
	})
	if err != nil {
		return domain.DetectionResult{}, &apperrors.ProviderError{Provider: NameHive, Reason: "request_failed", Err: err}
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return domain.DetectionResult{}, &apperrors.ProviderError{
			Provider: NameHive,
			Reason:   "bad_status",
			Err:      &apperrors.ExternalAPIError{StatusCode: resp.StatusCode(), API: NameHive, Message: "unexpected status"},
		}
	}

	var parsed hiveResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body(), 1<<20)).Decode(&parsed); err != nil {
		return domain.DetectionResult{}, &apperrors.ProviderError{Provider: NameHive, Reason: "bad_response", Err: err}
	}

	score, found := extractHiveScore(parsed)
	if !found {
		return domain.DetectionResult{}, &apperrors.ProviderError{Provider: NameHive, Reason: "bad_response", Err: fmt.Errorf("response carried no ai_generated class")}
	}

	return domain.DetectionResult{
		Score:    domain.ClampUnit(score),
		Provider: NameHive,
	}, nil
}

// extractHiveScore digs the ai_generated class score out of the response
func extractHiveScore(resp hiveResponse) (float64, bool) {
	for _, status := range resp.Status {
		for _, output := range status.Response.Output {
			for _, class := range output.Classes {
				if class.Class == "ai_generated" {
					return class.Score, true
				}
			}
		}
	}
	return 0, false
}

func (p *hiveProvider) AnalyzeText(ctx context.Context, text string) (domain.DetectionResult, error) {
	return domain.FallbackResult(domain.ReasonUnsupportedContent), nil
}

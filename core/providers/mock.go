// ABOUTME: Deterministic no-network provider for development and testing
// ABOUTME: Scores derive from content length only, so repeated calls always agree

package providers

import (
	"context"

	"content-shield-api/core/domain"
)

// Mock score range: [0.20, 0.80]. The spread keeps all three tiers reachable
// in development without ever producing certainty at either end.
const (
	mockBase   = 0.20
	mockSpread = 61
)

// mockProvider produces repeatable, content-length-derived scores so the
// rest of the pipeline is testable without live services.
type mockProvider struct{}

func newMock() Provider {
	return &mockProvider{}
}

func (p *mockProvider) Name() string { return NameMock }

// mockScore maps a length onto [0.20, 0.80] deterministically
func mockScore(length int) float64 {
	return float64(length%mockSpread)/100 + mockBase
}

func (p *mockProvider) AnalyzeText(ctx context.Context, text string) (domain.DetectionResult, error) {
	length := len(text)
	score := mockScore(length)

	// Flag every third 500-char window so highlight plumbing has ranges
	// to work with.
	var ranges []map[string]interface{}
	for start := 0; start < length; start += 500 {
		if (start/500)%3 != 0 {
			continue
		}
		end := start + 120
		if end > length {
			end = length
		}
		ranges = append(ranges, map[string]interface{}{
			"start_char": start,
			"end_char":   end,
		})
	}

	return domain.DetectionResult{
		Score:    score,
		Provider: NameMock,
		Details: map[string]interface{}{
			"mock":           true,
			"text_length":    length,
			"flagged_ranges": ranges,
		},
	}, nil
}

func (p *mockProvider) AnalyzeImage(ctx context.Context, dataURI string) (domain.DetectionResult, error) {
	return domain.DetectionResult{
		Score:    mockScore(len(dataURI)),
		Provider: NameMock,
		Details: map[string]interface{}{
			"mock": true,
		},
	}, nil
}

// ABOUTME: Pure aggregation of scored items into a page-level analysis
// ABOUTME: Arithmetic means per content type plus the medium/high density metric

package aggregate

import (
	"time"

	"content-shield-api/core/domain"
)

// Mean returns the arithmetic mean of scores, 0 for an empty slice
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Density returns the percentage of items at medium or high tier
func Density(items []domain.ScoredItem) float64 {
	if len(items) == 0 {
		return 0
	}
	flagged := 0
	for _, item := range items {
		if item.Tier == domain.TierMedium || item.Tier == domain.TierHigh {
			flagged++
		}
	}
	return float64(flagged) / float64(len(items)) * 100
}

// BuildPageAnalysis merges scored items into one page-level analysis.
// Overall and per-type scores are arithmetic means on the 0-100 scale.
func BuildPageAnalysis(items []domain.ScoredItem, url string, cached bool) domain.PageAnalysis {
	var all, text, image []float64
	for _, item := range items {
		all = append(all, item.Score)
		switch item.Type {
		case domain.ContentText:
			text = append(text, item.Score)
		case domain.ContentImage:
			image = append(image, item.Score)
		}
	}

	return domain.PageAnalysis{
		OverallScore: Mean(all),
		TextScore:    Mean(text),
		ImageScore:   Mean(image),
		AIDensity:    Density(items),
		Items:        items,
		URL:          url,
		AnalyzedAt:   time.Now(),
		Cached:       cached,
	}
}

// WeightedOverall combines text and image means into the server's page-level
// score, leaning more on images when both kinds are present.
func WeightedOverall(textScores, imageScores []float64) float64 {
	switch {
	case len(textScores) > 0 && len(imageScores) > 0:
		return domain.ClampUnit(0.4*Mean(textScores) + 0.6*Mean(imageScores))
	case len(imageScores) > 0:
		return domain.ClampUnit(Mean(imageScores))
	case len(textScores) > 0:
		return domain.ClampUnit(Mean(textScores))
	default:
		return 0
	}
}

// ABOUTME: Score, tier and detection result types shared across the detection core
// ABOUTME: Defines the wire-level DetectionResult contract including fallback results

package domain

// ContentType identifies what kind of content a scored item came from
type ContentType string

const (
	// ContentText is a scored text block
	ContentText ContentType = "text"

	// ContentImage is a scored image
	ContentImage ContentType = "image"
)

// Tier is the three-level risk bucket derived from a 0-100 score
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Tier breakpoints on the 0-100 scale
const (
	TierLowMax    = 40.0
	TierMediumMax = 70.0
)

// TierForScore buckets a 0-100 score into a tier.
// Scores at or below 40 are low, at or below 70 medium, above 70 high.
func TierForScore(score float64) Tier {
	switch {
	case score <= TierLowMax:
		return TierLow
	case score <= TierMediumMax:
		return TierMedium
	default:
		return TierHigh
	}
}

// ClampUnit clamps a raw provider score into [0, 1]
func ClampUnit(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Fallback reason codes carried by degraded detection results
const (
	ReasonTextTooShort        = "text_too_short"
	ReasonRetryExhausted      = "retry_exhausted"
	ReasonProviderUnconfigured = "provider_unconfigured"
	ReasonUnknownProvider     = "unknown_provider"
	ReasonUnsupportedContent  = "unsupported_content"
	ReasonInternalError       = "internal_error"
)

// FallbackProvider is the provider name reported on degraded results
const FallbackProvider = "fallback"

// DetectionResult is the server-authoritative detection outcome.
// Score is always present and in [0, 1]; failures are results carrying a
// reason code, never errors, at this boundary.
type DetectionResult struct {
	// Score is the AI probability estimate in [0, 1]
	Score float64 `json:"score"`

	// Provider names the backend that produced the score
	Provider string `json:"provider"`

	// Details carries provider- and endpoint-specific extras
	Details map[string]interface{} `json:"details,omitempty"`

	// Reason is a machine-readable code on skipped or degraded results
	Reason string `json:"reason,omitempty"`

	// Cached reports whether the result was served from the result cache
	Cached bool `json:"cached"`
}

// FallbackResult builds a zero-confidence result for the given reason
func FallbackResult(reason string) DetectionResult {
	return DetectionResult{
		Score:    0,
		Provider: FallbackProvider,
		Reason:   reason,
	}
}

// SkippedResult builds a zero-score result for content that is assumed
// unscoreable rather than invalid
func SkippedResult(reason string) DetectionResult {
	return DetectionResult{
		Score:    0,
		Provider: "skipped",
		Reason:   reason,
	}
}

// ScoredItem is one scored block or image on the 0-100 scale
type ScoredItem struct {
	ID          string      `json:"id"`
	Type        ContentType `json:"type"`
	Score       float64     `json:"score"`
	Tier        Tier        `json:"tier"`
	Preview     string      `json:"preview,omitempty"`
	Provider    string      `json:"provider"`
	Explanation string      `json:"explanation,omitempty"`
}

// NewScoredItem converts a unit-scale detection result into a scored item
func NewScoredItem(id string, kind ContentType, result DetectionResult, preview string) ScoredItem {
	score := ClampUnit(result.Score) * 100
	return ScoredItem{
		ID:       id,
		Type:     kind,
		Score:    score,
		Tier:     TierForScore(score),
		Preview:  preview,
		Provider: result.Provider,
	}
}

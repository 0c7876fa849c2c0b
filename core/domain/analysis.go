// ABOUTME: Page-level analysis type owned by the client result cache
// ABOUTME: One PageAnalysis summarizes all scored items for a logical page view

package domain

import "time"

// PageAnalysis is the page-level verdict built from individual scored items.
// OverallScore is the arithmetic mean of item scores (0 when empty) and
// AIDensity is the percentage of items at medium or high tier.
type PageAnalysis struct {
	OverallScore float64      `json:"overallScore"`
	TextScore    float64      `json:"textScore"`
	ImageScore   float64      `json:"imageScore"`
	AIDensity    float64      `json:"aiDensity"`
	Items        []ScoredItem `json:"items"`
	URL          string       `json:"url"`
	AnalyzedAt   time.Time    `json:"analyzedAt"`
	Cached       bool         `json:"cached"`
}

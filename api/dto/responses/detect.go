// ABOUTME: Response body shapes for the detection and health endpoints
// ABOUTME: Mirrors the core DetectionResult contract on the wire

package responses

// DetectionResponse is the common response of every /detect endpoint
type DetectionResponse struct {
	Score    float64                `json:"score" doc:"AI probability estimate in [0, 1]"`
	Provider string                 `json:"provider" doc:"Backend that produced the score"`
	Details  map[string]interface{} `json:"details,omitempty" doc:"Provider- and endpoint-specific extras"`
	Reason   string                 `json:"reason,omitempty" doc:"Reason code on skipped or degraded results"`
	Cached   bool                   `json:"cached" doc:"Whether the result came from the result cache"`
}

// CacheInfo reports result cache occupancy
type CacheInfo struct {
	Size    int `json:"size" doc:"Current number of cached results"`
	MaxSize int `json:"maxSize,omitempty" doc:"Configured capacity, 0 when unbounded"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string           `json:"status" doc:"Service status, always ok when reachable"`
	Uptime    string           `json:"uptime" doc:"Time since process start"`
	Provider  string           `json:"provider" doc:"Active detection backend"`
	Cache     CacheInfo        `json:"cache"`
	Metrics   map[string]int64 `json:"metrics" doc:"Pipeline counters since start"`
	Timestamp string           `json:"timestamp" doc:"Server time in RFC 3339"`
}

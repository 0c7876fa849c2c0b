// ABOUTME: Process-local counters for the detection pipeline
// ABOUTME: Exposed through the health endpoint; atomic so hot paths never lock

package detection

import "sync/atomic"

// Metrics counts pipeline activity since process start
type Metrics struct {
	requests         atomic.Int64
	cacheHits        atomic.Int64
	providerFailures atomic.Int64
}

// Snapshot returns the current counter values for health reporting
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"requests":          m.requests.Load(),
		"cache_hits":        m.cacheHits.Load(),
		"provider_failures": m.providerFailures.Load(),
	}
}

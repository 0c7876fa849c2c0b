// ABOUTME: Detection orchestration: validation, caching, chunking, retries and aggregation
// ABOUTME: Backend failures degrade into fallback results; errors mean invalid input

package detection

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"content-shield-api/core/aggregate"
	"content-shield-api/core/domain"
	apperrors "content-shield-api/core/errors"
	"content-shield-api/core/imageutil"
	"content-shield-api/core/interfaces"
	"content-shield-api/core/providers"
)

// Config tunes the detection pipeline
type Config struct {
	// CacheTTL is how long scored results stay cached
	CacheTTL time.Duration

	// FallbackCacheTTL is the shorter lifetime for degraded results, so a
	// backend outage is not re-probed with a full retry cycle per request.
	FallbackCacheTTL time.Duration

	// MinTextLength is the rune floor below which text is skipped, not scored
	MinTextLength int

	// MaxTextLength is the rune cap; longer text is truncated before scoring
	MaxTextLength int

	// ChunkSize is the per-chunk rune cap for provider dispatch
	ChunkSize int

	// MaxRetries is how many times a failed provider call is retried
	MaxRetries int

	// BackoffBase is the first retry delay; each retry doubles it
	BackoffBase time.Duration
}

func (c *Config) applyDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Minute
	}
	if c.FallbackCacheTTL <= 0 {
		c.FallbackCacheTTL = time.Minute
	}
	if c.MinTextLength <= 0 {
		c.MinTextLength = 20
	}
	if c.MaxTextLength <= 0 {
		c.MaxTextLength = 10000
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 3000
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
}

// Service is the server-side detection pipeline
type Service struct {
	provider providers.Provider
	deps     interfaces.Dependencies
	cfg      Config
	metrics  Metrics
}

// NewService builds the pipeline around the given provider
func NewService(provider providers.Provider, deps interfaces.Dependencies, cfg Config) *Service {
	cfg.applyDefaults()
	return &Service{provider: provider, deps: deps, cfg: cfg}
}

// Provider returns the active backend's name, for health reporting
func (s *Service) Provider() string { return s.provider.Name() }

// Metrics returns the pipeline counters
func (s *Service) Metrics() *Metrics { return &s.metrics }

// MetricsSnapshot returns the current counter values, for health reporting
func (s *Service) MetricsSnapshot() map[string]int64 { return s.metrics.Snapshot() }

// DetectText validates, normalizes, chunks and scores a single text.
// Multi-chunk scores are averaged; the result is cached under a digest of
// the normalized text.
func (s *Service) DetectText(ctx context.Context, text, url string) (result domain.DetectionResult, err error) {
	defer s.recover(&result, &err)
	s.metrics.requests.Add(1)

	normalized := Normalize(text)
	runes := []rune(normalized)
	if len(runes) < s.cfg.MinTextLength {
		return domain.SkippedResult(domain.ReasonTextTooShort), nil
	}
	if len(runes) > s.cfg.MaxTextLength {
		normalized = string(runes[:s.cfg.MaxTextLength])
		runes = runes[:s.cfg.MaxTextLength]
	}

	key := cacheKey("detect:text:", normalized)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	chunks := SplitChunks(normalized, s.cfg.ChunkSize)
	scores := make([]float64, 0, len(chunks))
	var last domain.DetectionResult
	for _, chunk := range chunks {
		last = s.scoreText(ctx, chunk)
		scores = append(scores, last.Score)
	}

	// Chunk accounting kicks in at the chunk size boundary even when the
	// split produced a single chunk.
	if len(chunks) == 1 && len(runes) < s.cfg.ChunkSize {
		result = last
	} else {
		result = domain.DetectionResult{
			Score:    domain.ClampUnit(aggregate.Mean(scores)),
			Provider: last.Provider,
			Details: map[string]interface{}{
				"chunks":       len(chunks),
				"chunk_scores": scores,
			},
		}
	}

	s.cacheSet(ctx, key, result)

	s.deps.Logger.Debug("Scored text", map[string]interface{}{
		"provider": result.Provider,
		"chunks":   len(chunks),
		"score":    result.Score,
		"url":      url,
	})
	return result, nil
}

// DetectImage validates and scores a single base64 data-URI image
func (s *Service) DetectImage(ctx context.Context, image string) (result domain.DetectionResult, err error) {
	defer s.recover(&result, &err)
	s.metrics.requests.Add(1)

	normalized, imgErr := imageutil.Normalize(image)
	if imgErr != nil {
		return domain.DetectionResult{}, &apperrors.ValidationError{Field: "image", Message: imgErr.Error()}
	}

	key := cacheKey("detect:image:", normalized)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	result = s.scoreImage(ctx, normalized)
	s.cacheSet(ctx, key, result)
	return result, nil
}

// DetectTextSpans scores a batch of named chunks individually and reports
// per-span outcomes alongside the mean. The whole batch is one cache unit.
func (s *Service) DetectTextSpans(ctx context.Context, chunks []domain.ChunkInput) (result domain.DetectionResult, err error) {
	defer s.recover(&result, &err)
	s.metrics.requests.Add(1)

	if len(chunks) == 0 {
		return domain.DetectionResult{}, &apperrors.ValidationError{Field: "chunks", Message: "at least one chunk is required"}
	}

	normalized := make([]string, len(chunks))
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		normalized[i] = Normalize(chunk.Text)
		parts[i] = chunk.ID + "\x1f" + normalized[i]
	}

	key := cacheKey("detect:spans:", strings.Join(parts, "\x1e"))
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	results := make([]map[string]interface{}, 0, len(chunks))
	var scores []float64
	flagged := 0
	provider := domain.FallbackProvider
	for i, chunk := range chunks {
		spanResult := s.scoreNormalizedText(ctx, normalized[i])
		if spanResult.Provider != domain.FallbackProvider && spanResult.Provider != "skipped" {
			provider = spanResult.Provider
			scores = append(scores, spanResult.Score)
		}

		tier := domain.TierForScore(spanResult.Score * 100)
		if tier != domain.TierLow {
			flagged++
		}

		span := map[string]interface{}{
			"id":    chunk.ID,
			"score": spanResult.Score,
			"tier":  tier,
		}
		if spanResult.Reason != "" {
			span["reason"] = spanResult.Reason
		}
		if chunk.StartChar != nil {
			span["start_char"] = *chunk.StartChar
		}
		if chunk.EndChar != nil {
			span["end_char"] = *chunk.EndChar
		}
		results = append(results, span)
	}

	result = domain.DetectionResult{
		Score:    domain.ClampUnit(aggregate.Mean(scores)),
		Provider: provider,
		Details: map[string]interface{}{
			"results":       results,
			"flagged_count": flagged,
		},
	}
	s.cacheSet(ctx, key, result)
	return result, nil
}

// DetectImageBatch scores a batch of named images individually. Any image
// that fails validation rejects the whole request, naming the offending id.
func (s *Service) DetectImageBatch(ctx context.Context, images []domain.ImageInput) (result domain.DetectionResult, err error) {
	defer s.recover(&result, &err)
	s.metrics.requests.Add(1)

	if len(images) == 0 {
		return domain.DetectionResult{}, &apperrors.ValidationError{Field: "images", Message: "at least one image is required"}
	}

	normalized, parts, imgErr := s.normalizeImages(images)
	if imgErr != nil {
		return domain.DetectionResult{}, imgErr
	}

	key := cacheKey("detect:batch:", strings.Join(parts, "\x1e"))
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	items := make([]map[string]interface{}, 0, len(images))
	var scores []float64
	flagged := 0
	provider := domain.FallbackProvider
	for i, input := range images {
		imgResult := s.scoreImage(ctx, normalized[i])
		if imgResult.Provider != domain.FallbackProvider {
			provider = imgResult.Provider
			scores = append(scores, imgResult.Score)
		}

		tier := domain.TierForScore(imgResult.Score * 100)
		if tier != domain.TierLow {
			flagged++
		}

		entry := map[string]interface{}{
			"id":    input.ID,
			"score": imgResult.Score,
			"tier":  tier,
		}
		if imgResult.Reason != "" {
			entry["reason"] = imgResult.Reason
		}
		items = append(items, entry)
	}

	result = domain.DetectionResult{
		Score:    domain.ClampUnit(aggregate.Mean(scores)),
		Provider: provider,
		Details: map[string]interface{}{
			"results":       items,
			"flagged_count": flagged,
		},
	}
	s.cacheSet(ctx, key, result)
	return result, nil
}

// DetectPage scores a mixed payload and combines per-type means into one
// page-level score, weighted toward images when both kinds are present.
// Like the batch shapes, the whole payload is one cache unit.
func (s *Service) DetectPage(ctx context.Context, chunks []domain.ChunkInput, images []domain.ImageInput) (result domain.DetectionResult, err error) {
	defer s.recover(&result, &err)
	s.metrics.requests.Add(1)

	if len(chunks) == 0 && len(images) == 0 {
		return domain.DetectionResult{}, &apperrors.ValidationError{Field: "page", Message: "page payload carries no chunks or images"}
	}

	normalizedChunks := make([]string, len(chunks))
	parts := make([]string, 0, len(chunks)+len(images))
	for i, chunk := range chunks {
		normalizedChunks[i] = Normalize(chunk.Text)
		parts = append(parts, "t\x1f"+chunk.ID+"\x1f"+normalizedChunks[i])
	}

	normalizedImages, imageParts, imgErr := s.normalizeImages(images)
	if imgErr != nil {
		return domain.DetectionResult{}, imgErr
	}
	for _, part := range imageParts {
		parts = append(parts, "i\x1f"+part)
	}

	key := cacheKey("detect:page:", strings.Join(parts, "\x1e"))
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	var textScores, imageScores []float64
	provider := domain.FallbackProvider
	items := make([]map[string]interface{}, 0, len(chunks)+len(images))

	for i, chunk := range chunks {
		chunkResult := s.scoreNormalizedText(ctx, normalizedChunks[i])
		if chunkResult.Provider != domain.FallbackProvider && chunkResult.Provider != "skipped" {
			provider = chunkResult.Provider
			textScores = append(textScores, chunkResult.Score)
		}
		items = append(items, map[string]interface{}{
			"id":    chunk.ID,
			"type":  domain.ContentText,
			"score": chunkResult.Score,
			"tier":  domain.TierForScore(chunkResult.Score * 100),
		})
	}

	for i, input := range images {
		imgResult := s.scoreImage(ctx, normalizedImages[i])
		if imgResult.Provider != domain.FallbackProvider {
			provider = imgResult.Provider
			imageScores = append(imageScores, imgResult.Score)
		}
		items = append(items, map[string]interface{}{
			"id":    input.ID,
			"type":  domain.ContentImage,
			"score": imgResult.Score,
			"tier":  domain.TierForScore(imgResult.Score * 100),
		})
	}

	result = domain.DetectionResult{
		Score:    aggregate.WeightedOverall(textScores, imageScores),
		Provider: provider,
		Details: map[string]interface{}{
			"text_score":  aggregate.Mean(textScores),
			"image_score": aggregate.Mean(imageScores),
			"items":       items,
		},
	}
	s.cacheSet(ctx, key, result)
	return result, nil
}

// normalizeImages validates every image in a batch up front; the first bad
// payload rejects the request and names its id.
func (s *Service) normalizeImages(images []domain.ImageInput) ([]string, []string, error) {
	normalized := make([]string, len(images))
	parts := make([]string, len(images))
	for i, input := range images {
		n, err := imageutil.Normalize(input.Image)
		if err != nil {
			return nil, nil, &apperrors.ValidationError{
				Field:   "images",
				Message: fmt.Sprintf("image %q: %v", input.ID, err),
			}
		}
		normalized[i] = n
		parts[i] = input.ID + "\x1f" + n
	}
	return normalized, parts, nil
}

// scoreNormalizedText applies the length floor before dispatching, so span
// and page paths skip unscoreable fragments the same way DetectText does.
func (s *Service) scoreNormalizedText(ctx context.Context, normalized string) domain.DetectionResult {
	runes := []rune(normalized)
	if len(runes) < s.cfg.MinTextLength {
		return domain.SkippedResult(domain.ReasonTextTooShort)
	}
	if len(runes) > s.cfg.MaxTextLength {
		normalized = string(runes[:s.cfg.MaxTextLength])
	}
	return s.scoreText(ctx, normalized)
}

// scoreText dispatches one chunk with retries. Exhausted retries degrade
// into a fallback result instead of an error.
func (s *Service) scoreText(ctx context.Context, chunk string) domain.DetectionResult {
	return s.withRetry(ctx, func() (domain.DetectionResult, error) {
		return s.provider.AnalyzeText(ctx, chunk)
	})
}

func (s *Service) scoreImage(ctx context.Context, dataURI string) domain.DetectionResult {
	return s.withRetry(ctx, func() (domain.DetectionResult, error) {
		return s.provider.AnalyzeImage(ctx, dataURI)
	})
}

func (s *Service) withRetry(ctx context.Context, call func() (domain.DetectionResult, error)) domain.DetectionResult {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				s.metrics.providerFailures.Add(1)
				return domain.FallbackResult(domain.ReasonRetryExhausted)
			case <-time.After(s.cfg.BackoffBase << (attempt - 1)):
			}
		}

		result, err := call()
		if err == nil {
			return result
		}
		lastErr = err
	}

	s.metrics.providerFailures.Add(1)
	s.deps.Logger.Warn("Provider retries exhausted", map[string]interface{}{
		"provider": s.provider.Name(),
		"attempts": s.cfg.MaxRetries + 1,
		"error":    fmt.Sprintf("%v", lastErr),
	})
	return domain.FallbackResult(domain.ReasonRetryExhausted)
}

// cacheKey digests content into a short stable key; the digest is truncated
// to 16 bytes, which is plenty at this cardinality.
func cacheKey(prefix, content string) string {
	sum := sha256.Sum256([]byte(content))
	return prefix + hex.EncodeToString(sum[:16])
}

func (s *Service) cacheGet(ctx context.Context, key string) (domain.DetectionResult, bool) {
	data, err := s.deps.Cache.Get(ctx, key)
	if err != nil {
		return domain.DetectionResult{}, false
	}

	var result domain.DetectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		// A corrupt entry is dropped so the next request repopulates it.
		_ = s.deps.Cache.Delete(ctx, key)
		return domain.DetectionResult{}, false
	}

	s.metrics.cacheHits.Add(1)
	result.Cached = true
	return result, true
}

func (s *Service) cacheSet(ctx context.Context, key string, result domain.DetectionResult) {
	// Degraded scores are cached too, just briefly, so a dead backend is
	// not re-probed with a full retry cycle on every repeat request.
	ttl := s.cfg.CacheTTL
	if result.Provider == domain.FallbackProvider {
		ttl = s.cfg.FallbackCacheTTL
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.deps.Cache.Set(ctx, key, data, ttl); err != nil {
		s.deps.Logger.Warn("Failed to cache detection result", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// recover converts a pipeline panic into an internal-error fallback so one
// bad payload cannot take the process down.
func (s *Service) recover(result *domain.DetectionResult, err *error) {
	if r := recover(); r != nil {
		s.deps.Logger.Error("Detection pipeline panic", map[string]interface{}{
			"panic": fmt.Sprintf("%v", r),
		})
		*result = domain.FallbackResult(domain.ReasonInternalError)
		*err = nil
	}
}

// ABOUTME: Closed set of interchangeable scoring backends behind one Provider interface
// ABOUTME: Dispatch is a switch over a fixed enum; misconfiguration yields fallback results, not errors

package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"content-shield-api/core/domain"
	"content-shield-api/core/interfaces"
)

// Known backend names. The set is closed; anything else resolves to an
// unconfigured provider that answers with fallback results.
const (
	NameMock         = "mock"
	NameSapling      = "sapling"
	NameHive         = "hive"
	NameModelService = "modelservice"
)

// Provider scores text or image content.
// Transport-level failures return an error so the adapter can retry them;
// configuration problems and unsupported content return a fallback result
// with no error, since retrying cannot help.
type Provider interface {
	// Name returns the backend's enum name
	Name() string

	// AnalyzeText scores a normalized text chunk
	AnalyzeText(ctx context.Context, text string) (domain.DetectionResult, error)

	// AnalyzeImage scores a base64 data-URI image
	AnalyzeImage(ctx context.Context, dataURI string) (domain.DetectionResult, error)
}

// Config selects and configures the active backend
type Config struct {
	// Name is one of the Name* constants; empty defaults to mock
	Name string

	// SaplingAPIKey authenticates against the hosted text classifier
	SaplingAPIKey string

	// HiveAPIKey and HiveEndpoint configure the hosted image classifier
	HiveAPIKey   string
	HiveEndpoint string

	// ModelServiceURL is the base URL of the self-hosted model service
	ModelServiceURL string

	// Timeout bounds every outbound scoring call
	Timeout time.Duration

	// RequestsPerSecond paces outbound calls; 0 disables pacing
	RequestsPerSecond float64
}

// New resolves the configured backend. The returned provider never needs a
// nil check and never lets a configuration fault escape as an error.
func New(cfg Config, deps interfaces.Dependencies) Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	var p Provider
	switch cfg.Name {
	case NameMock, "":
		// Mock is deterministic and local; pacing would only slow tests.
		return newMock()
	case NameSapling:
		if cfg.SaplingAPIKey == "" {
			return newUnconfigured(NameSapling, domain.ReasonProviderUnconfigured)
		}
		p = newSapling(cfg.SaplingAPIKey, cfg.Timeout, deps)
	case NameHive:
		if cfg.HiveAPIKey == "" {
			return newUnconfigured(NameHive, domain.ReasonProviderUnconfigured)
		}
		p = newHive(cfg.HiveAPIKey, cfg.HiveEndpoint, cfg.Timeout, deps)
	case NameModelService:
		if cfg.ModelServiceURL == "" {
			return newUnconfigured(NameModelService, domain.ReasonProviderUnconfigured)
		}
		p = newModelService(cfg.ModelServiceURL, cfg.Timeout, deps)
	default:
		return newUnconfigured(cfg.Name, domain.ReasonUnknownProvider)
	}

	if cfg.RequestsPerSecond > 0 {
		p = &paced{
			inner:   p,
			limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		}
	}

	return p
}

// unconfigured answers every call with an explicit fallback result
type unconfigured struct {
	name   string
	reason string
}

func newUnconfigured(name, reason string) Provider {
	return &unconfigured{name: name, reason: reason}
}

func (p *unconfigured) Name() string { return p.name }

func (p *unconfigured) AnalyzeText(ctx context.Context, text string) (domain.DetectionResult, error) {
	return domain.FallbackResult(p.reason), nil
}

func (p *unconfigured) AnalyzeImage(ctx context.Context, dataURI string) (domain.DetectionResult, error) {
	return domain.FallbackResult(p.reason), nil
}

// paced wraps a provider with an outbound rate limiter so backend load
// stays bounded regardless of how many requests are in flight.
type paced struct {
	inner   Provider
	limiter *rate.Limiter
}

func (p *paced) Name() string { return p.inner.Name() }

func (p *paced) AnalyzeText(ctx context.Context, text string) (domain.DetectionResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.DetectionResult{}, err
	}
	return p.inner.AnalyzeText(ctx, text)
}

func (p *paced) AnalyzeImage(ctx context.Context, dataURI string) (domain.DetectionResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.DetectionResult{}, err
	}
	return p.inner.AnalyzeImage(ctx, dataURI)
}

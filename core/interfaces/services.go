// ABOUTME: Service interfaces exposed by the core to the HTTP layer and library consumers
// ABOUTME: Keeps handlers decoupled from concrete service implementations

package interfaces

import (
	"context"

	"content-shield-api/core/domain"
)

// DetectionService is the server-side detection pipeline.
// Every method returns a well-formed DetectionResult on every code path;
// the error return is reserved for input and policy violations that should
// surface as client errors. Backend failures degrade into fallback results.
type DetectionService interface {
	// DetectText validates, normalizes, chunks and scores a single text.
	DetectText(ctx context.Context, text, url string) (domain.DetectionResult, error)

	// DetectImage validates and scores a single base64 data-URI image.
	DetectImage(ctx context.Context, image string) (domain.DetectionResult, error)

	// DetectTextSpans scores a batch of named chunks individually.
	DetectTextSpans(ctx context.Context, chunks []domain.ChunkInput) (domain.DetectionResult, error)

	// DetectImageBatch scores a batch of named images individually.
	DetectImageBatch(ctx context.Context, images []domain.ImageInput) (domain.DetectionResult, error)

	// DetectPage scores a mixed payload of chunks and images and combines
	// them into one page-level result.
	DetectPage(ctx context.Context, chunks []domain.ChunkInput, images []domain.ImageInput) (domain.DetectionResult, error)
}

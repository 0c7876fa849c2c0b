// ABOUTME: Detection endpoints scoring text, images, spans, batches and whole pages
// ABOUTME: Thin translation layer between wire DTOs and the detection service

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"content-shield-api/api/dto/requests"
	"content-shield-api/api/dto/responses"
	"content-shield-api/core/domain"
	"content-shield-api/core/interfaces"
)

// DetectHandler handles the /detect endpoints
type DetectHandler struct {
	service interfaces.DetectionService
}

// NewDetectHandler creates a new detect handler
func NewDetectHandler(service interfaces.DetectionService) *DetectHandler {
	return &DetectHandler{service: service}
}

// RegisterRoutes registers the detection routes
func (h *DetectHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "detectText",
		Method:      http.MethodPost,
		Path:        "/detect/text",
		Summary:     "Score a text for AI generation",
		Description: "Normalizes, chunks and scores a single text. Short text is skipped with reason text_too_short.",
		Tags:        []string{"Detection"},
	}, h.DetectText)

	huma.Register(api, huma.Operation{
		OperationID: "detectImage",
		Method:      http.MethodPost,
		Path:        "/detect/image",
		Summary:     "Score an image for AI generation",
		Description: "Accepts a base64 data URI; oversized images are rejected, large dimensions downscaled.",
		Tags:        []string{"Detection"},
	}, h.DetectImage)

	huma.Register(api, huma.Operation{
		OperationID: "detectTextSpans",
		Method:      http.MethodPost,
		Path:        "/detect/text/spans",
		Summary:     "Score a batch of text spans individually",
		Tags:        []string{"Detection"},
	}, h.DetectTextSpans)

	huma.Register(api, huma.Operation{
		OperationID: "detectImageBatch",
		Method:      http.MethodPost,
		Path:        "/detect/image/batch",
		Summary:     "Score a batch of images individually",
		Tags:        []string{"Detection"},
	}, h.DetectImageBatch)

	huma.Register(api, huma.Operation{
		OperationID: "detectPage",
		Method:      http.MethodPost,
		Path:        "/detect/page",
		Summary:     "Score a mixed page payload",
		Description: "Combines per-type means into one page-level score, weighted toward images when both kinds are present.",
		Tags:        []string{"Detection"},
	}, h.DetectPage)
}

// DetectTextInput wraps the text detection request body
type DetectTextInput struct {
	Body requests.DetectTextRequest
}

// DetectionOutput wraps the common detection response body
type DetectionOutput struct {
	Body responses.DetectionResponse
}

// DetectText handles POST /detect/text
func (h *DetectHandler) DetectText(ctx context.Context, input *DetectTextInput) (*DetectionOutput, error) {
	result, err := h.service.DetectText(ctx, input.Body.Text, input.Body.URL)
	if err != nil {
		return nil, toHumaError(err)
	}
	return detectionOutput(result), nil
}

// DetectImageInput wraps the image detection request body
type DetectImageInput struct {
	Body requests.DetectImageRequest
}

// DetectImage handles POST /detect/image
func (h *DetectHandler) DetectImage(ctx context.Context, input *DetectImageInput) (*DetectionOutput, error) {
	result, err := h.service.DetectImage(ctx, input.Body.Image)
	if err != nil {
		return nil, toHumaError(err)
	}
	return detectionOutput(result), nil
}

// DetectTextSpansInput wraps the span batch request body
type DetectTextSpansInput struct {
	Body requests.DetectTextSpansRequest
}

// DetectTextSpans handles POST /detect/text/spans
func (h *DetectHandler) DetectTextSpans(ctx context.Context, input *DetectTextSpansInput) (*DetectionOutput, error) {
	result, err := h.service.DetectTextSpans(ctx, toChunkInputs(input.Body.Chunks))
	if err != nil {
		return nil, toHumaError(err)
	}
	return detectionOutput(result), nil
}

// DetectImageBatchInput wraps the image batch request body
type DetectImageBatchInput struct {
	Body requests.DetectImageBatchRequest
}

// DetectImageBatch handles POST /detect/image/batch
func (h *DetectHandler) DetectImageBatch(ctx context.Context, input *DetectImageBatchInput) (*DetectionOutput, error) {
	result, err := h.service.DetectImageBatch(ctx, toImageInputs(input.Body.Images))
	if err != nil {
		return nil, toHumaError(err)
	}
	return detectionOutput(result), nil
}

// DetectPageInput wraps the page request body
type DetectPageInput struct {
	Body requests.DetectPageRequest
}

// DetectPage handles POST /detect/page
func (h *DetectHandler) DetectPage(ctx context.Context, input *DetectPageInput) (*DetectionOutput, error) {
	result, err := h.service.DetectPage(ctx, toChunkInputs(input.Body.Chunks), toImageInputs(input.Body.Images))
	if err != nil {
		return nil, toHumaError(err)
	}
	return detectionOutput(result), nil
}

func toChunkInputs(chunks []requests.Chunk) []domain.ChunkInput {
	out := make([]domain.ChunkInput, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, domain.ChunkInput{
			ID:        c.ID,
			Text:      c.Text,
			Kind:      c.Kind,
			StartChar: c.StartChar,
			EndChar:   c.EndChar,
		})
	}
	return out
}

func toImageInputs(images []requests.Image) []domain.ImageInput {
	out := make([]domain.ImageInput, 0, len(images))
	for _, img := range images {
		out = append(out, domain.ImageInput{ID: img.ID, Image: img.Image})
	}
	return out
}

func detectionOutput(result domain.DetectionResult) *DetectionOutput {
	return &DetectionOutput{
		Body: responses.DetectionResponse{
			Score:    result.Score,
			Provider: result.Provider,
			Details:  result.Details,
			Reason:   result.Reason,
			Cached:   result.Cached,
		},
	}
}

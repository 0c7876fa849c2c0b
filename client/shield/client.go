// ABOUTME: Go client for the Content Shield detection API
// ABOUTME: Functional options configure transport, base URL and credentials

package shield

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"content-shield-api/core/domain"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the detection API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a Content Shield API server
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL sets the API base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout on the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithAPIKey sets a bearer token sent with every request
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// New creates a client for the given server
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    "http://localhost:8000",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DetectText scores a single text
func (c *Client) DetectText(ctx context.Context, text, url string) (domain.DetectionResult, error) {
	var result domain.DetectionResult
	err := c.post(ctx, "/detect/text", map[string]interface{}{
		"text": text,
		"url":  url,
	}, &result)
	return result, err
}

// Detect scores one extracted content block.
// Satisfies the scan controller's Detector interface.
func (c *Client) Detect(ctx context.Context, block domain.ContentBlock) (domain.DetectionResult, error) {
	return c.DetectText(ctx, block.Text, "")
}

// DetectSpans scores a batch of named chunks individually
func (c *Client) DetectSpans(ctx context.Context, chunks []domain.ChunkInput) (domain.DetectionResult, error) {
	var result domain.DetectionResult
	err := c.post(ctx, "/detect/text/spans", map[string]interface{}{
		"chunks": chunks,
	}, &result)
	return result, err
}

// DetectPage scores a mixed payload of chunks and images
func (c *Client) DetectPage(ctx context.Context, chunks []domain.ChunkInput, images []domain.ImageInput) (domain.DetectionResult, error) {
	payload := map[string]interface{}{}
	if len(chunks) > 0 {
		payload["chunks"] = chunks
	}
	if len(images) > 0 {
		payload["images"] = images
	}

	var result domain.DetectionResult
	err := c.post(ctx, "/detect/page", payload, &result)
	return result, err
}

// Health reports the server's health payload
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var health map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return health, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// readAPIError builds an APIError from a non-2xx response body
func readAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	var parsed struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	message := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &parsed); err == nil {
		switch {
		case parsed.Detail != "":
			message = parsed.Detail
		case parsed.Title != "":
			message = parsed.Title
		case parsed.Error != "":
			message = parsed.Error
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

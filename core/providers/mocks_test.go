package providers

import (
	"context"
	"io"
	"net/http"

	"content-shield-api/core/interfaces"
)

// testHTTPClient adapts net/http for provider wire tests
type testHTTPClient struct {
	client *http.Client
}

func newTestHTTPClient() *testHTTPClient {
	return &testHTTPClient{client: http.DefaultClient}
}

func (c *testHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *testHTTPClient) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	return c.PostWithHeaders(ctx, url, body, nil)
}

func (c *testHTTPClient) PostWithHeaders(ctx context.Context, url string, body io.Reader, headers map[string]string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

func (c *testHTTPClient) do(req *http.Request) (interfaces.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	return &testResponse{resp: resp}, nil
}

type testResponse struct {
	resp *http.Response
}

func (r *testResponse) StatusCode() int        { return r.resp.StatusCode }
func (r *testResponse) Body() io.ReadCloser    { return r.resp.Body }
func (r *testResponse) Header(key string) string { return r.resp.Header.Get(key) }

package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// maxResponseBody caps how much of a provider response is read.
const maxResponseBody = 1 << 20

// DefaultHTTPClient adapts net/http.Client to HTTPClient.
type DefaultHTTPClient struct {
	client *http.Client
}

// NewHTTPClient returns a client with the given overall timeout.
func NewHTTPClient(timeout time.Duration) *DefaultHTTPClient {
	return &DefaultHTTPClient{client: &http.Client{Timeout: timeout}}
}

// Do executes req under ctx.
func (c *DefaultHTTPClient) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &HTTPResponse{StatusCode: resp.StatusCode, Headers: headers, Body: body}, nil
}

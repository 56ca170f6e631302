package provider

import (
	"context"
	"sync"
)

// mockHTTPClient records requests and returns a canned response.
type mockHTTPClient struct {
	mu       sync.Mutex
	requests []*HTTPRequest
	resp     *HTTPResponse
	err      error
}

func (m *mockHTTPClient) Do(_ context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *mockHTTPClient) last() *HTTPRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func testMessage() *Message {
	return &Message{
		ID:       "6f1c3c43-0d43-5b7a-9b48-1f2c1c9d0e11",
		From:     "no-reply@chirper.local",
		FromName: "Chirper",
		To:       []string{"bob@example.com"},
		Subject:  "New Chirp from Alice",
		TextBody: "Hello!\n\nNew Chirp from Alice\n\n\"first post\"\n",
		HTMLBody: "<p>first post</p>",
	}
}

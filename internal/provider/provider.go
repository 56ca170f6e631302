package provider

import (
	"context"
	"time"
)

// Provider delivers a rendered email through one outbound channel.
type Provider interface {
	// Send delivers msg and returns the provider's view of the outcome.
	Send(ctx context.Context, msg *Message) (*DeliveryResult, error)
	// GetName returns the provider identifier ("smtp", "sendgrid", ...).
	GetName() string
	// HealthCheck verifies the provider is reachable.
	HealthCheck(ctx context.Context) error
}

// HTTPClient abstracts HTTP operations for testability.
type HTTPClient interface {
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

// HTTPRequest represents an outgoing HTTP request.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// HTTPResponse represents an HTTP response from a provider API.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Message is a fully rendered email ready for a provider.
type Message struct {
	// ID is the job ID; providers use it for idempotency keys and file names.
	ID       string
	From     string
	FromName string
	To       []string
	Subject  string
	Headers  map[string]string
	TextBody string
	HTMLBody string
}

// DeliveryResult contains the outcome of a delivery attempt.
type DeliveryResult struct {
	ProviderMessageID string
	Status            DeliveryStatus
	Timestamp         time.Time
	Metadata          map[string]string
}

// DeliveryStatus represents the outcome of a delivery.
type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

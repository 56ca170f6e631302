package provider

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stdout prints messages instead of delivering them. For development.
type Stdout struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewStdout returns a provider writing to w.
func NewStdout(w io.Writer) *Stdout {
	return &Stdout{writer: w}
}

func (s *Stdout) GetName() string { return "stdout" }

// Send prints a summary and the plain text body.
func (s *Stdout) Send(_ context.Context, msg *Message) (*DeliveryResult, error) {
	var b strings.Builder
	b.WriteString("--- stdout provider: message ---\n")
	fmt.Fprintf(&b, "ID:      %s\n", msg.ID)
	fmt.Fprintf(&b, "From:    %s\n", msg.From)
	fmt.Fprintf(&b, "To:      %s\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("\n")
	b.WriteString(msg.TextBody)
	if !strings.HasSuffix(msg.TextBody, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("--- end ---\n")

	// Concurrent workers share one writer.
	s.mu.Lock()
	_, err := io.WriteString(s.writer, b.String())
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("stdout: write: %w", err)
	}

	return &DeliveryResult{
		ProviderMessageID: "stdout-" + msg.ID,
		Status:            StatusSent,
		Timestamp:         time.Now(),
	}, nil
}

func (s *Stdout) HealthCheck(_ context.Context) error { return nil }

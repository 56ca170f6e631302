package provider

import (
	"errors"
	"time"
)

// ProviderConfig selects and configures the mail provider.
type ProviderConfig struct {
	// Type is one of "stdout", "file", "smtp", "sendgrid", "mailgun".
	Type string

	// APIKey authenticates HTTP providers.
	APIKey string

	// Endpoint overrides the API base URL for HTTP providers and is the
	// output directory for the file provider.
	Endpoint string

	// Timeout bounds a single send.
	Timeout time.Duration

	// Domain is the Mailgun sending domain.
	Domain string

	// SMTP relay settings.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPStartTLS bool
}

const defaultTimeout = 30 * time.Second

// Validate checks that the fields required by Type are set and fills in
// the default timeout.
func (c *ProviderConfig) Validate() error {
	if c.Type == "" {
		return errors.New("provider type is required")
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	switch c.Type {
	case "sendgrid":
		if c.APIKey == "" {
			return errors.New("sendgrid: api_key is required")
		}
	case "mailgun":
		if c.APIKey == "" {
			return errors.New("mailgun: api_key is required")
		}
		if c.Domain == "" {
			return errors.New("mailgun: domain is required")
		}
	case "smtp":
		if c.SMTPHost == "" {
			return errors.New("smtp: host is required")
		}
		if c.SMTPPort <= 0 {
			return errors.New("smtp: port is required")
		}
		if (c.SMTPUsername == "") != (c.SMTPPassword == "") {
			return errors.New("smtp: username and password must be set together")
		}
	case "stdout", "file":
	default:
		return errors.New("unknown provider type: " + c.Type)
	}
	return nil
}

package provider

import (
	"fmt"
	"io"
	"os"
)

// NewProvider builds the provider selected by cfg.Type. client is used by the
// HTTP providers and may be nil otherwise. out receives stdout provider
// output; nil means os.Stdout.
func NewProvider(cfg ProviderConfig, client HTTPClient, out io.Writer) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provider config: %w", err)
	}

	if client == nil && (cfg.Type == "sendgrid" || cfg.Type == "mailgun") {
		client = NewHTTPClient(cfg.Timeout)
	}

	switch cfg.Type {
	case "stdout":
		if out == nil {
			out = os.Stdout
		}
		return NewStdout(out), nil
	case "file":
		return NewFile(cfg), nil
	case "smtp":
		return NewSMTP(cfg), nil
	case "sendgrid":
		return NewSendGrid(cfg, client), nil
	case "mailgun":
		return NewMailgun(cfg, client), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Type)
	}
}

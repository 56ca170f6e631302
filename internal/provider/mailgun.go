package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const mailgunDefaultEndpoint = "https://api.mailgun.net"

// Mailgun sends through the Mailgun messages API.
type Mailgun struct {
	apiKey   string
	domain   string
	endpoint string
	client   HTTPClient
}

// NewMailgun returns a Mailgun provider.
func NewMailgun(cfg ProviderConfig, client HTTPClient) *Mailgun {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = mailgunDefaultEndpoint
	}
	return &Mailgun{apiKey: cfg.APIKey, domain: cfg.Domain, endpoint: endpoint, client: client}
}

func (m *Mailgun) GetName() string { return "mailgun" }

// Send posts msg as a form to /v3/{domain}/messages.
func (m *Mailgun) Send(ctx context.Context, msg *Message) (*DeliveryResult, error) {
	resp, err := m.client.Do(ctx, &HTTPRequest{
		Method: "POST",
		URL:    fmt.Sprintf("%s/v3/%s/messages", m.endpoint, m.domain),
		Headers: map[string]string{
			"Authorization": "Basic " + basicAuth("api", m.apiKey),
			"Content-Type":  "application/x-www-form-urlencoded",
		},
		Body: []byte(m.buildForm(msg).Encode()),
	})
	if err != nil {
		return nil, fmt.Errorf("mailgun: send request: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out struct {
			ID      string `json:"id"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(resp.Body, &out)
		return &DeliveryResult{
			ProviderMessageID: out.ID,
			Status:            StatusSent,
			Timestamp:         time.Now(),
			Metadata: map[string]string{
				"message":     out.Message,
				"status_code": strconv.Itoa(resp.StatusCode),
			},
		}, nil
	}

	return nil, ClassifyHTTPError("mailgun", resp.StatusCode, string(resp.Body))
}

// HealthCheck fetches the sending domain.
func (m *Mailgun) HealthCheck(ctx context.Context) error {
	resp, err := m.client.Do(ctx, &HTTPRequest{
		Method:  "GET",
		URL:     fmt.Sprintf("%s/v3/domains/%s", m.endpoint, m.domain),
		Headers: map[string]string{"Authorization": "Basic " + basicAuth("api", m.apiKey)},
	})
	if err != nil {
		return fmt.Errorf("mailgun: health check request: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("mailgun: health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (m *Mailgun) buildForm(msg *Message) url.Values {
	form := url.Values{}
	form.Set("from", (&mail.Address{Name: msg.FromName, Address: msg.From}).String())
	form.Set("to", strings.Join(msg.To, ","))
	form.Set("subject", msg.Subject)
	if msg.TextBody != "" {
		form.Set("text", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		form.Set("html", msg.HTMLBody)
	}
	if msg.ID != "" {
		form.Set("v:job_id", msg.ID)
	}
	for k, v := range msg.Headers {
		form.Set("h:"+k, v)
	}
	return form
}

func basicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

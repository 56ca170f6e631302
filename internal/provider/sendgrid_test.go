package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestSendGrid_Send(t *testing.T) {
	client := &mockHTTPClient{resp: &HTTPResponse{
		StatusCode: 202,
		Headers:    map[string]string{"X-Message-Id": "sg-123"},
	}}
	p := NewSendGrid(ProviderConfig{APIKey: "SG.key"}, client)

	res, err := p.Send(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.ProviderMessageID != "sg-123" {
		t.Errorf("ProviderMessageID = %s, want sg-123", res.ProviderMessageID)
	}

	req := client.last()
	if req.URL != "https://api.sendgrid.com/v3/mail/send" {
		t.Errorf("URL = %s", req.URL)
	}
	if req.Headers["Authorization"] != "Bearer SG.key" {
		t.Errorf("Authorization = %s", req.Headers["Authorization"])
	}

	var payload sendgridPayload
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.From.Name != "Chirper" || payload.From.Email != "no-reply@chirper.local" {
		t.Errorf("from = %+v", payload.From)
	}
	if len(payload.Content) != 2 || payload.Content[0].Type != "text/plain" {
		t.Errorf("content = %+v", payload.Content)
	}
	if payload.CustomArgs["job_id"] != testMessage().ID {
		t.Errorf("custom_args = %v", payload.CustomArgs)
	}
	if got := payload.Personalizations[0].To[0].Email; got != "bob@example.com" {
		t.Errorf("to = %s", got)
	}
}

func TestSendGrid_SendErrors(t *testing.T) {
	tests := []struct {
		name     string
		resp     *HTTPResponse
		err      error
		wantPerm bool
	}{
		{"rate limited", &HTTPResponse{StatusCode: 429, Body: []byte("slow down")}, nil, false},
		{"unauthorized", &HTTPResponse{StatusCode: 401, Body: []byte("bad key")}, nil, true},
		{"network", nil, errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSendGrid(ProviderConfig{APIKey: "k"}, &mockHTTPClient{resp: tt.resp, err: tt.err})
			_, err := p.Send(context.Background(), testMessage())
			if err == nil {
				t.Fatal("expected error")
			}
			if IsPermanent(err) != tt.wantPerm {
				t.Errorf("IsPermanent = %v, want %v (%v)", IsPermanent(err), tt.wantPerm, err)
			}
		})
	}
}

func TestSendGrid_HealthCheck(t *testing.T) {
	ok := NewSendGrid(ProviderConfig{APIKey: "k", Endpoint: "http://sg.test"}, &mockHTTPClient{resp: &HTTPResponse{StatusCode: 200}})
	if err := ok.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
	bad := NewSendGrid(ProviderConfig{APIKey: "k"}, &mockHTTPClient{resp: &HTTPResponse{StatusCode: 403}})
	if err := bad.HealthCheck(context.Background()); err == nil {
		t.Error("expected health check error for 403")
	}
}

package provider

import (
	"context"
	"net/url"
	"testing"
)

func TestMailgun_Send(t *testing.T) {
	client := &mockHTTPClient{resp: &HTTPResponse{
		StatusCode: 200,
		Body:       []byte(`{"id":"<mg-1@mg.example.com>","message":"Queued. Thank you."}`),
	}}
	p := NewMailgun(ProviderConfig{APIKey: "key-1", Domain: "mg.example.com"}, client)

	res, err := p.Send(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.ProviderMessageID != "<mg-1@mg.example.com>" {
		t.Errorf("ProviderMessageID = %s", res.ProviderMessageID)
	}

	req := client.last()
	if req.URL != "https://api.mailgun.net/v3/mg.example.com/messages" {
		t.Errorf("URL = %s", req.URL)
	}
	if req.Headers["Authorization"] != "Basic "+basicAuth("api", "key-1") {
		t.Errorf("Authorization = %s", req.Headers["Authorization"])
	}

	form, err := url.ParseQuery(string(req.Body))
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	checks := map[string]string{
		"from":     `"Chirper" <no-reply@chirper.local>`,
		"to":       "bob@example.com",
		"subject":  "New Chirp from Alice",
		"v:job_id": testMessage().ID,
	}
	for k, want := range checks {
		if got := form.Get(k); got != want {
			t.Errorf("form[%s] = %q, want %q", k, got, want)
		}
	}
	if form.Get("text") == "" || form.Get("html") == "" {
		t.Error("expected both text and html bodies")
	}
}

func TestMailgun_SendClassifiesErrors(t *testing.T) {
	p := NewMailgun(ProviderConfig{APIKey: "k", Domain: "d"}, &mockHTTPClient{resp: &HTTPResponse{
		StatusCode: 400,
		Body:       []byte(`{"message":"to parameter is not a valid address. please check documentation"}`),
	}})
	_, err := p.Send(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected error")
	}
	if IsPermanent(err) {
		t.Errorf("unrecognised 400 body should be transient: %v", err)
	}

	p = NewMailgun(ProviderConfig{APIKey: "k", Domain: "d"}, &mockHTTPClient{resp: &HTTPResponse{
		StatusCode: 404, Body: []byte("domain not found"),
	}})
	if _, err := p.Send(context.Background(), testMessage()); !IsPermanent(err) {
		t.Errorf("404 should be permanent: %v", err)
	}
}

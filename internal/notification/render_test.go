package notification

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	m := testNotification("Alice", "hello <world> & friends").ToMail(Recipient{})

	r, err := Render(m, "Chirper")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if r.Subject != "New Chirp from Alice" {
		t.Errorf("Subject = %q", r.Subject)
	}

	wantText := "New Chirp from Alice\n\nhello <world> & friends\n\nGo to Chirper: http://localhost:8080/chirps\n\nRegards,\nChirper\n"
	if r.Text != wantText {
		t.Errorf("Text =\n%q\nwant\n%q", r.Text, wantText)
	}

	for _, want := range []string{
		"<h1 style=\"font-size: 18px;\">New Chirp from Alice</h1>",
		"hello &lt;world&gt; &amp; friends",
		`href="http://localhost:8080/chirps"`,
		">Go to Chirper</a>",
	} {
		if !strings.Contains(r.HTML, want) {
			t.Errorf("HTML missing %q:\n%s", want, r.HTML)
		}
	}
}

func TestRender_OutroLines(t *testing.T) {
	m := testNotification("Alice", "hi").ToMail(Recipient{})
	m.OutroLines = []string{"Thanks for using Chirper!"}

	r, err := Render(m, "Chirper")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(r.Text, "\nThanks for using Chirper!\n") {
		t.Errorf("Text missing outro:\n%s", r.Text)
	}
	if !strings.Contains(r.HTML, "<p>Thanks for using Chirper!</p>") {
		t.Errorf("HTML missing outro:\n%s", r.HTML)
	}
}

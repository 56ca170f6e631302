package msgstore

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"empty type is nop", Config{}, "nop", false},
		{"none", Config{Type: "none"}, "nop", false},
		{"local", Config{Type: "local", Path: "archive"}, "local", false},
		{"local without path", Config{Type: "local"}, "", true},
		{"s3 without bucket", Config{Type: "s3"}, "", true},
		{"unsupported", Config{Type: "gcs"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if cfg.Path != "" {
				cfg.Path = t.TempDir() + "/" + cfg.Path
			}
			store, err := New(context.Background(), cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			var got string
			switch store.(type) {
			case Nop:
				got = "nop"
			case *LocalFileStore:
				got = "local"
			}
			if got != tt.want {
				t.Errorf("New() = %T, want %s", store, tt.want)
			}
		})
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	if err := (Nop{}).Put(ctx, "job", []byte("x")); err != nil {
		t.Errorf("Put: %v", err)
	}
	if _, err := (Nop{}).Get(ctx, "job"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: got %v, want ErrNotFound", err)
	}
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{"6f1c3c43-0d43-5b7a-9b48-1f2c1c9d0e11", "6f1c3c43-0d43-5b7a-9b48-1f2c1c9d0e11.eml", false},
		{"", "", true},
		{"../etc/passwd", "", true},
		{`a\b`, "", true},
	}

	for _, tt := range tests {
		got, err := objectName(tt.id)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("objectName(%q) = %q, %v", tt.id, got, err)
		}
		if err != nil && !errors.Is(err, ErrInvalidID) {
			t.Errorf("objectName(%q) error = %v, want ErrInvalidID", tt.id, err)
		}
	}
}

package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultOutputDir = "./mail_output"

// File writes each message as an .eml file into a directory. For development.
type File struct {
	outputDir string
	now       func() time.Time
}

// NewFile returns a File provider using cfg.Endpoint as the output directory,
// or ./mail_output when empty.
func NewFile(cfg ProviderConfig) *File {
	dir := cfg.Endpoint
	if dir == "" {
		dir = defaultOutputDir
	}
	return &File{outputDir: dir, now: time.Now}
}

func (f *File) GetName() string { return "file" }

// Send writes <message-id>.eml. Re-sending the same job overwrites the file.
func (f *File) Send(_ context.Context, msg *Message) (*DeliveryResult, error) {
	if err := os.MkdirAll(f.outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("file: create output dir: %w", err)
	}

	raw, err := BuildMIME(msg, f.now())
	if err != nil {
		return nil, fmt.Errorf("file: build message: %w", err)
	}

	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(msg.ID) + ".eml"
	path := filepath.Join(f.outputDir, name)
	if err := os.WriteFile(path, raw, 0o640); err != nil {
		return nil, fmt.Errorf("file: write %s: %w", path, err)
	}

	return &DeliveryResult{
		ProviderMessageID: "file-" + msg.ID,
		Status:            StatusSent,
		Timestamp:         f.now(),
		Metadata:          map[string]string{"path": path},
	}, nil
}

// HealthCheck verifies the output directory can be created.
func (f *File) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(f.outputDir, 0o750); err != nil {
		return fmt.Errorf("file: output dir not writable: %w", err)
	}
	return nil
}

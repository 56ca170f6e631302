// Package msgstore archives rendered notification emails keyed by job ID.
package msgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when no email is archived under a job ID.
var ErrNotFound = errors.New("msgstore: message not found")

// ErrInvalidID is returned for job IDs that cannot be used as a key.
var ErrInvalidID = errors.New("msgstore: invalid message id")

// Store keeps raw RFC 5322 messages. Put overwrites, so re-delivering a job
// replaces its archived copy.
type Store interface {
	Put(ctx context.Context, jobID string, raw []byte) error
	Get(ctx context.Context, jobID string) ([]byte, error)
}

// Config selects the archive backend.
type Config struct {
	Type       string // "none", "local" or "s3"
	Path       string
	S3Bucket   string
	S3Prefix   string
	S3Endpoint string
	S3Region   string
}

// New returns the Store selected by cfg.Type. "none" and "" yield a Nop.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (Store, error) {
	switch cfg.Type {
	case "", "none":
		return Nop{}, nil
	case "local":
		log.Info().Str("path", cfg.Path).Msg("archiving notifications to local disk")
		return NewLocalFileStore(cfg.Path)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("msgstore: s3_bucket is required")
		}
		log.Info().Str("bucket", cfg.S3Bucket).Str("prefix", cfg.S3Prefix).Msg("archiving notifications to s3")
		return NewS3StoreFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("msgstore: unsupported archive type %q", cfg.Type)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Put(context.Context, string, []byte) error { return nil }

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

// objectName maps a job ID onto a file or object name.
func objectName(jobID string) (string, error) {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || strings.Contains(jobID, "..") {
		return "", ErrInvalidID
	}
	return jobID + ".eml", nil
}

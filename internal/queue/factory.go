package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Backend bundles the queue components for one configured backend.
// Dequeuer is nil when no handler was supplied (producer-only processes).
// Redis is the backend's own client for other Redis users in the process; it
// is nil for non-Redis backends and is closed by Close.
type Backend struct {
	Enqueuer Enqueuer
	Dequeuer Dequeuer
	DLQ      DeadLetterQueue
	Redis    redis.Cmdable

	closeFn func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// NewQueue builds the backend selected by cfg.Type. Pass a nil handler to get
// an enqueue-only backend.
func NewQueue(ctx context.Context, cfg Config, handler MessageHandler, log zerolog.Logger) (*Backend, error) {
	cfg = cfg.withDefaults()
	retry := NewRetryStrategy(cfg.MaxRetries)

	switch cfg.Type {
	case "redis", "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}

		enqueuer := NewRedisEnqueuer(client, cfg.StreamName)
		dlq := NewRedisDLQ(client, enqueuer, cfg.StreamName)
		b := &Backend{Enqueuer: enqueuer, DLQ: dlq, Redis: client, closeFn: client.Close}
		if handler != nil {
			b.Dequeuer = NewRedisDequeuer(client, enqueuer, dlq, handler, retry, cfg, log)
		}
		return b, nil

	case "sqs":
		client, err := newAWSSQSClient(ctx, cfg.SQSRegion, cfg.SQSEndpoint)
		if err != nil {
			return nil, fmt.Errorf("create sqs client: %w", err)
		}

		enqueuer := NewSQSEnqueuer(client, cfg.SQSQueueURL)
		dlq := NewSQSDLQ(client, cfg.SQSDLQueueURL, enqueuer, log)
		b := &Backend{Enqueuer: enqueuer, DLQ: dlq}
		if handler != nil {
			b.Dequeuer = NewSQSDequeuer(client, handler, dlq, retry, enqueuer, cfg, log)
		}
		return b, nil

	default:
		return nil, fmt.Errorf("unknown queue type: %s", cfg.Type)
	}
}

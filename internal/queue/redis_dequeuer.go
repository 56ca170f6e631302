package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisDequeuer runs a pool of consumers reading one stream through a
// consumer group.
type RedisDequeuer struct {
	client   *redis.Client
	enqueuer Enqueuer
	settler  settler
	handler  MessageHandler
	config   Config
	stream   string
	log      zerolog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewRedisDequeuer wires a dequeuer for cfg.StreamName / cfg.GroupName.
// Retries are re-added through enqueuer after their backoff elapses.
func NewRedisDequeuer(
	client *redis.Client,
	enqueuer Enqueuer,
	dlq DeadLetterQueue,
	handler MessageHandler,
	retry *RetryStrategy,
	cfg Config,
	log zerolog.Logger,
) *RedisDequeuer {
	cfg = cfg.withDefaults()
	return &RedisDequeuer{
		client:   client,
		enqueuer: enqueuer,
		settler:  settler{retry: retry, dlq: dlq, log: log},
		handler:  handler,
		config:   cfg,
		stream:   streamKey(cfg.StreamName),
		log:      log,
	}
}

// Start ensures the consumer group exists and launches the workers.
func (d *RedisDequeuer) Start(ctx context.Context) error {
	if err := d.createConsumerGroup(ctx); err != nil {
		return err
	}

	ctx, d.cancel = context.WithCancel(ctx)
	for i := range d.config.WorkerCount {
		d.wg.Add(1)
		go d.runWorker(ctx, fmt.Sprintf("worker-%d", i))
	}

	d.log.Info().
		Int("worker_count", d.config.WorkerCount).
		Str("stream", d.stream).
		Str("group", d.config.GroupName).
		Msg("redis dequeuer started")
	return nil
}

// Stop cancels the workers and waits for in-flight jobs up to the shutdown
// timeout or ctx, whichever ends first.
func (d *RedisDequeuer) Stop(ctx context.Context) error {
	if d.cancel == nil {
		return nil
	}
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(d.config.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		d.log.Info().Msg("redis dequeuer stopped gracefully")
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}
	d.log.Warn().Msg("redis dequeuer shutdown timed out")
	return fmt.Errorf("shutdown timed out after %s", d.config.ShutdownTimeout)
}

func (d *RedisDequeuer) createConsumerGroup(ctx context.Context) error {
	err := d.client.XGroupCreateMkStream(ctx, d.stream, d.config.GroupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on stream %s: %w", d.config.GroupName, d.stream, err)
	}
	return nil
}

func (d *RedisDequeuer) runWorker(ctx context.Context, consumer string) {
	defer d.wg.Done()

	// Entries left pending by a crashed consumer are picked up first.
	d.reclaim(ctx, consumer)

	for ctx.Err() == nil {
		streams, err := d.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    d.config.GroupName,
			Consumer: consumer,
			Streams:  []string{d.stream, ">"},
			Count:    1,
			Block:    d.config.BlockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				d.reclaim(ctx, consumer)
				continue
			}
			if ctx.Err() != nil {
				break
			}
			d.log.Error().Err(err).Str("consumer", consumer).Msg("xreadgroup error")
			sleepCtx(ctx, time.Second)
			continue
		}

		for _, s := range streams {
			for _, entry := range s.Messages {
				d.process(ctx, entry)
			}
		}
	}

	d.log.Debug().Str("consumer", consumer).Msg("worker stopping")
}

// reclaim takes over entries that another consumer read but never acked
// within twice the process timeout.
func (d *RedisDequeuer) reclaim(ctx context.Context, consumer string) {
	entries, _, err := d.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   d.stream,
		Group:    d.config.GroupName,
		MinIdle:  2 * d.config.ProcessTimeout,
		Start:    "0-0",
		Count:    10,
		Consumer: consumer,
	}).Result()
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, redis.Nil) {
			d.log.Warn().Err(err).Str("consumer", consumer).Msg("xautoclaim failed")
		}
		return
	}
	for _, entry := range entries {
		d.log.Info().Str("entry_id", entry.ID).Str("consumer", consumer).Msg("reclaimed stale entry")
		d.process(ctx, entry)
	}
}

func (d *RedisDequeuer) process(ctx context.Context, entry redis.XMessage) {
	msg, err := decodeEntry(entry)
	if err != nil {
		d.log.Error().Err(err).Str("entry_id", entry.ID).Msg("dropping undecodable entry")
		d.ack(ctx, entry.ID)
		return
	}

	d.settler.run(ctx, d.handler, msg, d.config.ProcessTimeout, d.requeueAfter)

	// The original entry is always acked; retries are new entries.
	d.ack(ctx, entry.ID)
}

func (d *RedisDequeuer) ack(ctx context.Context, entryID string) {
	if err := d.client.XAck(context.WithoutCancel(ctx), d.stream, d.config.GroupName, entryID).Err(); err != nil {
		d.log.Error().Err(err).Str("entry_id", entryID).Msg("failed to ack entry")
	}
}

func (d *RedisDequeuer) requeueAfter(ctx context.Context, msg *Message, delay time.Duration) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// On shutdown the retry is re-added early instead of being lost.
		retryCtx := context.WithoutCancel(ctx)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		if _, err := d.enqueuer.Enqueue(retryCtx, msg); err != nil {
			d.log.Error().Err(err).Str("job_id", msg.ID).Msg("failed to re-enqueue job for retry")
		}
	}()
}

func decodeEntry(entry redis.XMessage) (*Message, error) {
	data, ok := entry.Values["data"].(string)
	if !ok {
		return nil, errors.New("entry has no data field")
	}
	var msg Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	return &msg, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

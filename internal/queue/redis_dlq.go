package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DLQMessage wraps a dead-lettered job with failure metadata.
type DLQMessage struct {
	OriginalMessage *Message  `json:"original_message"`
	FailureReason   string    `json:"failure_reason"`
	MovedAt         time.Time `json:"moved_at"`
}

// RedisDLQ stores dead-lettered jobs in the dlq:{stream} stream.
type RedisDLQ struct {
	client   redis.Cmdable
	enqueuer Enqueuer
	stream   string
}

// NewRedisDLQ returns a DLQ for streamName. Reprocessed jobs go back through
// enqueuer.
func NewRedisDLQ(client redis.Cmdable, enqueuer Enqueuer, streamName string) *RedisDLQ {
	return &RedisDLQ{client: client, enqueuer: enqueuer, stream: dlqStreamKey(streamName)}
}

// MoveToDLQ appends msg and the failure reason to the DLQ stream.
func (d *RedisDLQ) MoveToDLQ(ctx context.Context, msg *Message, reason string) error {
	data, err := json.Marshal(DLQMessage{
		OriginalMessage: msg,
		FailureReason:   reason,
		MovedAt:         time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal dlq message: %w", err)
	}

	err = d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd to dlq stream %s: %w", d.stream, err)
	}
	return nil
}

// Reprocess re-enqueues the given DLQ entries with a fresh retry budget and
// deletes them from the DLQ. Unknown or malformed entries are skipped.
func (d *RedisDLQ) Reprocess(ctx context.Context, entryIDs []string) (int, error) {
	reprocessed := 0

	for _, id := range entryIDs {
		entries, err := d.client.XRange(ctx, d.stream, id, id).Result()
		if err != nil {
			return reprocessed, fmt.Errorf("xrange dlq entry %s: %w", id, err)
		}
		if len(entries) == 0 {
			continue
		}

		data, ok := entries[0].Values["data"].(string)
		if !ok {
			continue
		}
		var dm DLQMessage
		if err := json.Unmarshal([]byte(data), &dm); err != nil || dm.OriginalMessage == nil {
			continue
		}

		dm.OriginalMessage.RetryCount = 0
		if _, err := d.enqueuer.Enqueue(ctx, dm.OriginalMessage); err != nil {
			return reprocessed, fmt.Errorf("re-enqueue job %s: %w", dm.OriginalMessage.ID, err)
		}
		if err := d.client.XDel(ctx, d.stream, id).Err(); err != nil {
			return reprocessed, fmt.Errorf("xdel dlq entry %s: %w", id, err)
		}
		reprocessed++
	}

	return reprocessed, nil
}

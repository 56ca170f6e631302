package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisEnqueuer appends jobs to a Redis stream.
type RedisEnqueuer struct {
	client redis.Cmdable
	stream string
}

// NewRedisEnqueuer returns an enqueuer writing to queue:{streamName}.
func NewRedisEnqueuer(client redis.Cmdable, streamName string) *RedisEnqueuer {
	return &RedisEnqueuer{client: client, stream: streamKey(streamName)}
}

// Enqueue XADDs msg and returns the stream entry ID.
func (e *RedisEnqueuer) Enqueue(ctx context.Context, msg *Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	entryID, err := e.client.XAdd(ctx, &redis.XAddArgs{
		Stream: e.stream,
		Values: map[string]interface{}{
			"kind": string(msg.Kind),
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd to stream %s: %w", e.stream, err)
	}

	MessagesEnqueuedTotal.WithLabelValues(string(msg.Kind)).Inc()
	return entryID, nil
}

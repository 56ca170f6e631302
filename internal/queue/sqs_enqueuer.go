package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// sqsMaxDelay is the longest DelaySeconds SQS accepts.
const sqsMaxDelay = 15 * time.Minute

// SQSEnqueuer sends jobs to an SQS queue.
type SQSEnqueuer struct {
	client   sqsAPI
	queueURL string
}

// NewSQSEnqueuer returns an enqueuer for queueURL.
func NewSQSEnqueuer(client sqsAPI, queueURL string) *SQSEnqueuer {
	return &SQSEnqueuer{client: client, queueURL: queueURL}
}

// Enqueue sends msg immediately and returns the SQS message ID.
func (e *SQSEnqueuer) Enqueue(ctx context.Context, msg *Message) (string, error) {
	return e.EnqueueAfter(ctx, msg, 0)
}

// EnqueueAfter sends msg with a delivery delay, capped at 15 minutes.
func (e *SQSEnqueuer) EnqueueAfter(ctx context.Context, msg *Message, delay time.Duration) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	delay = min(max(delay, 0), sqsMaxDelay)
	out, err := e.client.SendMessage(ctx, &sqsSendInput{
		QueueURL:     e.queueURL,
		MessageBody:  string(data),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return "", fmt.Errorf("sqs send message: %w", err)
	}

	MessagesEnqueuedTotal.WithLabelValues(string(msg.Kind)).Inc()
	return out.MessageID, nil
}

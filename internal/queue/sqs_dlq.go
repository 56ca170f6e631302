package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SQSDLQ stores dead-lettered jobs in a separate SQS queue.
type SQSDLQ struct {
	client   sqsAPI
	dlqURL   string
	enqueuer Enqueuer
	log      zerolog.Logger
}

// NewSQSDLQ returns a DLQ writing to dlqURL. Reprocess sends jobs back
// through enqueuer.
func NewSQSDLQ(client sqsAPI, dlqURL string, enqueuer Enqueuer, log zerolog.Logger) *SQSDLQ {
	return &SQSDLQ{client: client, dlqURL: dlqURL, enqueuer: enqueuer, log: log}
}

// MoveToDLQ sends msg wrapped in a DLQMessage envelope.
func (d *SQSDLQ) MoveToDLQ(ctx context.Context, msg *Message, reason string) error {
	data, err := json.Marshal(DLQMessage{
		OriginalMessage: msg,
		FailureReason:   reason,
		MovedAt:         time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal dlq message: %w", err)
	}

	if _, err := d.client.SendMessage(ctx, &sqsSendInput{
		QueueURL:    d.dlqURL,
		MessageBody: string(data),
	}); err != nil {
		return fmt.Errorf("sqs send to dlq: %w", err)
	}
	return nil
}

// Reprocess receives up to len(ids) DLQ messages (max 10) and re-enqueues
// them. SQS cannot fetch by ID, so the IDs only bound the batch size.
func (d *SQSDLQ) Reprocess(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	out, err := d.client.ReceiveMessage(ctx, &sqsReceiveInput{
		QueueURL:            d.dlqURL,
		MaxNumberOfMessages: int32(min(len(ids), 10)),
		VisibilityTimeout:   30,
	})
	if err != nil {
		return 0, fmt.Errorf("sqs receive from dlq: %w", err)
	}

	reprocessed := 0
	for _, m := range out.Messages {
		var dm DLQMessage
		if err := json.Unmarshal([]byte(m.Body), &dm); err != nil || dm.OriginalMessage == nil {
			d.log.Warn().Err(err).Str("sqs_message_id", m.MessageID).Msg("skipping malformed dlq message")
			continue
		}

		dm.OriginalMessage.RetryCount = 0
		if _, err := d.enqueuer.Enqueue(ctx, dm.OriginalMessage); err != nil {
			return reprocessed, fmt.Errorf("re-enqueue job %s: %w", dm.OriginalMessage.ID, err)
		}
		if err := d.client.DeleteMessage(ctx, &sqsDeleteInput{
			QueueURL:      d.dlqURL,
			ReceiptHandle: m.ReceiptHandle,
		}); err != nil {
			return reprocessed, fmt.Errorf("delete dlq message: %w", err)
		}
		reprocessed++
	}
	return reprocessed, nil
}

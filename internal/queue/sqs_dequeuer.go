package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SQSDequeuer runs a pool of long-polling SQS consumers.
type SQSDequeuer struct {
	client   sqsAPI
	queueURL string
	handler  MessageHandler
	enqueuer *SQSEnqueuer
	settler  settler
	config   Config
	log      zerolog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewSQSDequeuer wires a dequeuer for cfg.SQSQueueURL. Retries are sent back
// through enqueuer with a delivery delay.
func NewSQSDequeuer(
	client sqsAPI,
	handler MessageHandler,
	dlq DeadLetterQueue,
	retry *RetryStrategy,
	enqueuer *SQSEnqueuer,
	cfg Config,
	log zerolog.Logger,
) *SQSDequeuer {
	cfg = cfg.withDefaults()
	return &SQSDequeuer{
		client:   client,
		queueURL: cfg.SQSQueueURL,
		handler:  handler,
		enqueuer: enqueuer,
		settler:  settler{retry: retry, dlq: dlq, log: log},
		config:   cfg,
		log:      log,
	}
}

// Start launches the workers.
func (d *SQSDequeuer) Start(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)

	for i := range d.config.WorkerCount {
		d.wg.Add(1)
		go d.runWorker(ctx, fmt.Sprintf("sqs-worker-%d", i))
	}

	d.log.Info().
		Int("worker_count", d.config.WorkerCount).
		Str("queue_url", d.queueURL).
		Msg("sqs dequeuer started")
	return nil
}

// Stop cancels the workers and waits for in-flight jobs.
func (d *SQSDequeuer) Stop(ctx context.Context) error {
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
		d.log.Info().Msg("sqs dequeuer stopped gracefully")
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}
	d.log.Warn().Msg("sqs dequeuer shutdown timed out")
	return fmt.Errorf("shutdown timed out after %s", d.config.ShutdownTimeout)
}

func (d *SQSDequeuer) runWorker(ctx context.Context, name string) {
	defer d.wg.Done()

	for ctx.Err() == nil {
		out, err := d.client.ReceiveMessage(ctx, &sqsReceiveInput{
			QueueURL:            d.queueURL,
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     d.config.SQSWaitTime,
			VisibilityTimeout:   d.config.SQSVisTimeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			d.log.Error().Err(err).Str("worker", name).Msg("sqs receive error")
			sleepCtx(ctx, time.Second)
			continue
		}

		for _, m := range out.Messages {
			d.process(ctx, m)
		}
	}

	d.log.Debug().Str("worker", name).Msg("sqs worker stopping")
}

func (d *SQSDequeuer) process(ctx context.Context, m sqsReceivedMessage) {
	var msg Message
	if err := json.Unmarshal([]byte(m.Body), &msg); err != nil {
		d.log.Error().Err(err).Str("sqs_message_id", m.MessageID).Msg("dropping undecodable sqs message")
		d.delete(ctx, m)
		return
	}

	d.settler.run(ctx, d.handler, &msg, d.config.ProcessTimeout, d.requeueAfter)

	// The original is always deleted; retries are new delayed messages.
	d.delete(ctx, m)
}

func (d *SQSDequeuer) requeueAfter(ctx context.Context, msg *Message, delay time.Duration) {
	if delay < time.Second {
		delay = time.Second
	}
	if _, err := d.enqueuer.EnqueueAfter(context.WithoutCancel(ctx), msg, delay); err != nil {
		d.log.Error().Err(err).Str("job_id", msg.ID).Msg("failed to re-enqueue job for retry")
	}
}

func (d *SQSDequeuer) delete(ctx context.Context, m sqsReceivedMessage) {
	err := d.client.DeleteMessage(context.WithoutCancel(ctx), &sqsDeleteInput{
		QueueURL:      d.queueURL,
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		d.log.Error().Err(err).Str("sqs_message_id", m.MessageID).Msg("failed to delete sqs message")
	}
}

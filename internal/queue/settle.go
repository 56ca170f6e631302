package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// requeueFunc schedules msg to run again after delay.
type requeueFunc func(ctx context.Context, msg *Message, delay time.Duration)

// settler applies the retry policy to a finished job. Both backends share it
// so Redis and SQS fail jobs the same way.
type settler struct {
	retry *RetryStrategy
	dlq   DeadLetterQueue
	log   zerolog.Logger
}

// run invokes handler with a per-job timeout and settles the result.
func (s settler) run(ctx context.Context, handler MessageHandler, msg *Message, timeout time.Duration, requeue requeueFunc) {
	start := time.Now()

	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	err := handler.HandleMessage(jobCtx, msg)
	cancel()

	MessageProcessingDuration.WithLabelValues(string(msg.Kind)).Observe(time.Since(start).Seconds())
	s.settle(ctx, msg, err, requeue)
}

func (s settler) settle(ctx context.Context, msg *Message, err error, requeue requeueFunc) {
	kind := string(msg.Kind)
	if err == nil {
		MessagesProcessedTotal.WithLabelValues(kind, "done").Inc()
		return
	}

	log := s.log.With().
		Str("job_id", msg.ID).
		Str("kind", kind).
		Int("retry_count", msg.RetryCount).
		Logger()

	if IsPermanent(err) {
		log.Warn().Err(err).Msg("job failed permanently, moving to DLQ")
		s.deadLetter(ctx, msg, err, "permanent")
		return
	}

	if !s.retry.ShouldRetry(msg.RetryCount) {
		log.Warn().Err(err).Msg("max retries exhausted, moving to DLQ")
		s.deadLetter(ctx, msg, err, "exhausted")
		return
	}

	backoff := s.retry.NextBackoff(msg.RetryCount)
	msg.RetryCount++
	log.Error().Err(err).Dur("backoff", backoff).Msg("job failed, scheduling retry")
	MessagesProcessedTotal.WithLabelValues(kind, "retry").Inc()
	requeue(ctx, msg, backoff)
}

func (s settler) deadLetter(ctx context.Context, msg *Message, cause error, reason string) {
	DLQMessagesTotal.WithLabelValues(string(msg.Kind), reason).Inc()
	MessagesProcessedTotal.WithLabelValues(string(msg.Kind), "dlq").Inc()
	if err := s.dlq.MoveToDLQ(ctx, msg, cause.Error()); err != nil {
		s.log.Error().Err(err).Str("job_id", msg.ID).Msg("failed to move job to DLQ")
	}
}

// Package worker runs queued chirp jobs.
package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/logger"
	"github.com/sungwon/chirper/internal/queue"
)

// FanoutRunner expands a chirp into notification jobs.
type FanoutRunner interface {
	Run(ctx context.Context, chirpID, afterID uuid.UUID) (int, error)
}

// NotificationDeliverer sends one notification.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, jobID string, chirpID, recipientID uuid.UUID) error
}

// Handler implements queue.MessageHandler by routing on Message.Kind.
type Handler struct {
	fanout    FanoutRunner
	deliverer NotificationDeliverer
	log       zerolog.Logger
}

// NewHandler returns a Handler.
func NewHandler(f FanoutRunner, d NotificationDeliverer, log zerolog.Logger) *Handler {
	return &Handler{fanout: f, deliverer: d, log: log}
}

// HandleMessage implements queue.MessageHandler. Unknown kinds and malformed
// jobs are permanent failures.
func (h *Handler) HandleMessage(ctx context.Context, msg *queue.Message) error {
	log := h.log.With().
		Str("job_id", msg.ID).
		Str("kind", string(msg.Kind)).
		Int("retry_count", msg.RetryCount).
		Logger()
	ctx = logger.WithLogger(logger.WithCorrelationID(ctx, msg.ID), log)

	if msg.ChirpID == uuid.Nil {
		return queue.Permanent(fmt.Errorf("job %s has no chirp id", msg.ID))
	}

	switch msg.Kind {
	case queue.KindFanout:
		n, err := h.fanout.Run(ctx, msg.ChirpID, msg.AfterID)
		if err != nil {
			return fmt.Errorf("fanout chirp %s: %w", msg.ChirpID, err)
		}
		log.Debug().Int("recipients", n).Msg("fanout job done")
		return nil

	case queue.KindNotify:
		if msg.RecipientID == uuid.Nil {
			return queue.Permanent(fmt.Errorf("notification job %s has no recipient", msg.ID))
		}
		if err := h.deliverer.Deliver(ctx, msg.ID, msg.ChirpID, msg.RecipientID); err != nil {
			return fmt.Errorf("deliver to %s: %w", msg.RecipientID, err)
		}
		return nil

	default:
		return queue.Permanent(fmt.Errorf("unknown job kind %q", msg.Kind))
	}
}

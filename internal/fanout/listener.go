// Package fanout turns a new chirp into one notification job per recipient.
package fanout

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/event"
	"github.com/sungwon/chirper/internal/queue"
)

// Listener reacts to ChirpCreated by enqueuing a deferred fan-out job. It
// does no recipient work inline.
type Listener struct {
	enqueuer queue.Enqueuer
	log      zerolog.Logger
}

// NewListener returns a Listener that publishes to enq.
func NewListener(enq queue.Enqueuer, log zerolog.Logger) *Listener {
	return &Listener{enqueuer: enq, log: log.With().Str("component", "fanout_listener").Logger()}
}

// Register subscribes l to ChirpCreated on r.
func (l *Listener) Register(r *event.Registry) {
	r.Subscribe(event.ChirpCreatedEvent, l)
}

// Handle implements event.Handler.
func (l *Listener) Handle(ctx context.Context, e event.Event) error {
	created, ok := e.(event.ChirpCreated)
	if !ok {
		return fmt.Errorf("fanout: unexpected event %T", e)
	}

	msg := queue.NewFanoutMessage(created.ChirpID)
	id, err := l.enqueuer.Enqueue(ctx, msg)
	if err != nil {
		return fmt.Errorf("enqueue fanout for chirp %s: %w", created.ChirpID, err)
	}

	l.log.Debug().
		Str("chirp_id", created.ChirpID.String()).
		Str("job_id", msg.ID).
		Str("entry_id", id).
		Msg("fanout job enqueued")
	return nil
}

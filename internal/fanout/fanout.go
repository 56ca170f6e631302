package fanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/metrics"
	"github.com/sungwon/chirper/internal/queue"
	"github.com/sungwon/chirper/internal/storage"
)

// ErrChirpGone means the chirp was deleted before its fan-out ran.
var ErrChirpGone = errors.New("chirp no longer exists")

// Store is the read access fan-out needs.
type Store interface {
	storage.UserLister
	GetChirpByID(ctx context.Context, id uuid.UUID) (storage.Chirp, error)
}

// Fanout enumerates recipients for a chirp and enqueues their notification
// jobs.
type Fanout struct {
	store    Store
	enqueuer queue.Enqueuer
	pageSize int32
	log      zerolog.Logger
}

// New returns a Fanout that reads users pageSize at a time.
func New(store Store, enq queue.Enqueuer, pageSize int32, log zerolog.Logger) *Fanout {
	return &Fanout{
		store:    store,
		enqueuer: enq,
		pageSize: pageSize,
		log:      log.With().Str("component", "fanout").Logger(),
	}
}

// Run handles one page of the fan-out for chirpID: it enqueues a
// notification job for every user after afterID (other than the author), up
// to the page size, and then a continuation job for the next page when more
// users may remain. It returns the number of notification jobs enqueued.
//
// Each call does O(page) work, so a retry after a failure repeats at most one
// page. Running the same page again enqueues jobs with the same IDs.
func (f *Fanout) Run(ctx context.Context, chirpID, afterID uuid.UUID) (int, error) {
	start := time.Now()
	log := f.log.With().
		Str("chirp_id", chirpID.String()).
		Str("after_id", afterID.String()).
		Logger()

	chirp, err := f.store.GetChirpByID(ctx, chirpID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, queue.Permanent(fmt.Errorf("chirp %s: %w", chirpID, ErrChirpGone))
		}
		return 0, fmt.Errorf("load chirp: %w", err)
	}

	pager := storage.NewUserPagerAfter(f.store, chirp.UserID, afterID, f.pageSize)
	page, err := pager.Next(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, u := range page {
		msg := queue.NewNotificationMessage(chirp.ID, u.ID)
		if _, err := f.enqueuer.Enqueue(ctx, msg); err != nil {
			return total, fmt.Errorf("enqueue notification for user %s: %w", u.ID, err)
		}
		total++
		metrics.FanoutRecipientsTotal.Inc()
	}

	more := !pager.Done()
	if more {
		next := queue.NewFanoutContinuation(chirp.ID, pager.Cursor())
		if _, err := f.enqueuer.Enqueue(ctx, next); err != nil {
			return total, fmt.Errorf("enqueue fanout continuation after %s: %w", pager.Cursor(), err)
		}
	}

	metrics.FanoutDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Str("author_id", chirp.UserID.String()).
		Int("recipients", total).
		Bool("continued", more).
		Dur("duration", time.Since(start)).
		Msg("fanout page complete")
	return total, nil
}

package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeDLQ struct {
	mu      sync.Mutex
	moved   []*Message
	reasons []string
	err     error
}

func (f *fakeDLQ) MoveToDLQ(_ context.Context, msg *Message, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *msg
	f.moved = append(f.moved, &cp)
	f.reasons = append(f.reasons, reason)
	return f.err
}

func (f *fakeDLQ) Reprocess(context.Context, []string) (int, error) { return 0, nil }

func (f *fakeDLQ) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moved)
}

type requeueRecorder struct {
	msgs   []*Message
	delays []time.Duration
}

func (r *requeueRecorder) fn(_ context.Context, msg *Message, d time.Duration) {
	cp := *msg
	r.msgs = append(r.msgs, &cp)
	r.delays = append(r.delays, d)
}

func TestSettler_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		retryCount  int
		err         error
		wantRequeue bool
		wantDLQ     bool
		wantRetry   int
	}{
		{name: "success", err: nil},
		{name: "transient first failure", err: errors.New("smtp 421"), wantRequeue: true, wantRetry: 1},
		{name: "transient last allowed retry", retryCount: 4, err: errors.New("timeout"), wantRequeue: true, wantRetry: 5},
		{name: "retries exhausted", retryCount: 5, err: errors.New("timeout"), wantDLQ: true},
		{name: "permanent on first attempt", err: Permanent(errors.New("chirp gone")), wantDLQ: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dlq := &fakeDLQ{}
			rec := &requeueRecorder{}
			s := settler{retry: NewRetryStrategy(5), dlq: dlq, log: zerolog.Nop()}
			msg := NewNotificationMessage(uuid.New(), uuid.New())
			msg.RetryCount = tt.retryCount

			s.settle(context.Background(), msg, tt.err, rec.fn)

			if got := len(rec.msgs) == 1; got != tt.wantRequeue {
				t.Fatalf("requeued = %v, want %v", got, tt.wantRequeue)
			}
			if got := dlq.count() == 1; got != tt.wantDLQ {
				t.Fatalf("dead-lettered = %v, want %v", got, tt.wantDLQ)
			}
			if tt.wantRequeue {
				if rec.msgs[0].RetryCount != tt.wantRetry {
					t.Errorf("requeued RetryCount = %d, want %d", rec.msgs[0].RetryCount, tt.wantRetry)
				}
				if rec.delays[0] <= 0 {
					t.Errorf("expected positive backoff, got %v", rec.delays[0])
				}
			}
			if tt.wantDLQ && dlq.reasons[0] != tt.err.Error() {
				t.Errorf("dlq reason = %q, want %q", dlq.reasons[0], tt.err.Error())
			}
		})
	}
}

func TestSettler_RunAppliesTimeout(t *testing.T) {
	dlq := &fakeDLQ{}
	s := settler{retry: NewRetryStrategy(0), dlq: dlq, log: zerolog.Nop()}

	var sawDeadline bool
	handler := MessageHandlerFunc(func(ctx context.Context, _ *Message) error {
		_, sawDeadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})

	s.run(context.Background(), handler, NewFanoutMessage(uuid.New()), 10*time.Millisecond, func(context.Context, *Message, time.Duration) {
		t.Error("unexpected requeue with zero retries")
	})

	if !sawDeadline {
		t.Error("handler context had no deadline")
	}
	if dlq.count() != 1 {
		t.Errorf("expected timed-out job in DLQ, got %d", dlq.count())
	}
}

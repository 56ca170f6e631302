package queue

import (
	"math/rand/v2"
	"time"
)

var retrySchedule = []time.Duration{
	30 * time.Second,
	1 * time.Minute,
	2 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
}

// RetryStrategy is a stepped backoff schedule with jitter.
type RetryStrategy struct {
	MaxRetries int
	Schedule   []time.Duration
}

// NewRetryStrategy returns a strategy using the default schedule.
func NewRetryStrategy(maxRetries int) *RetryStrategy {
	return &RetryStrategy{
		MaxRetries: maxRetries,
		Schedule:   retrySchedule,
	}
}

// ShouldRetry reports whether a job that has already been retried retryCount
// times gets another attempt.
func (r *RetryStrategy) ShouldRetry(retryCount int) bool {
	return retryCount < r.MaxRetries
}

// NextBackoff returns the delay before retry number retryCount+1. The delay is
// base * (0.5 + rand*0.5); attempts past the schedule reuse its last step.
func (r *RetryStrategy) NextBackoff(retryCount int) time.Duration {
	if len(r.Schedule) == 0 {
		return 0
	}
	idx := min(max(retryCount, 0), len(r.Schedule)-1)
	base := r.Schedule[idx]
	return time.Duration(float64(base) * (0.5 + rand.Float64()*0.5))
}

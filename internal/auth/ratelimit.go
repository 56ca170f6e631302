package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTooManyAttempts is returned while an email is locked out.
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// LoginLimiterConfig bounds failed logins per email.
type LoginLimiterConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// LoginLimiter counts failed logins per email in Redis. A nil client
// disables limiting.
type LoginLimiter struct {
	client redis.Cmdable
	config LoginLimiterConfig
}

// NewLoginLimiter returns a limiter. client may be nil.
func NewLoginLimiter(client redis.Cmdable, config LoginLimiterConfig) *LoginLimiter {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = 15 * time.Minute
	}
	return &LoginLimiter{client: client, config: config}
}

// Check returns ErrTooManyAttempts once email has reached the limit.
func (l *LoginLimiter) Check(ctx context.Context, email string) error {
	if l.client == nil {
		return nil
	}
	count, err := l.client.Get(ctx, loginKey(email)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("check login limit: %w", err)
	}
	if count >= l.config.MaxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts a failed attempt. The window restarts with each
// failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	if l.client == nil {
		return nil
	}
	key := loginKey(email)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.config.LockoutDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if l.client == nil {
		return nil
	}
	return l.client.Del(ctx, loginKey(email)).Err()
}

func loginKey(email string) string {
	return "ratelimit:login:" + strings.ToLower(strings.TrimSpace(email))
}

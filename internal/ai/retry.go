package ai

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig configures exponential backoff retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the first backoff interval (default 1s).
	BaseDelay time.Duration
	// BackOff overrides the exponential policy when set.
	BackOff backoff.BackOff
	// OnRetry is called before each wait with the attempt that failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (c RetryConfig) policy() backoff.BackOff {
	if c.BackOff != nil {
		return c.BackOff
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.BaseDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = time.Second
	}
	return b
}

// RetryWithBackoff calls fn until it succeeds, MaxRetries is exhausted or
// ctx is done. Rate limit errors carrying a retry hint wait for that hint
// instead of the backoff interval. Context errors are never retried.
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return v, backoff.Permanent(err)
		}
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > 0 && attempt <= cfg.MaxRetries {
			return v, backoff.RetryAfter(retryAfterSeconds(rl.RetryAfter))
		}
		return v, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(cfg.policy()),
		backoff.WithMaxTries(uint(max(cfg.MaxRetries, 0) + 1)),
	}
	if cfg.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(func(err error, d time.Duration) {
			cfg.OnRetry(attempt, err, d)
		}))
	}
	return backoff.Retry(ctx, op, opts...)
}

// retryAfterSeconds rounds a retry hint up to whole seconds so a sub-second
// hint still waits.
func retryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

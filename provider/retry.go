package provider

import (
	"context"
	"time"
)

// RetryPolicy runs an operation up to MaxAttempts times, sleeping
// Backoff(attempt) between attempts. Retryable decides whether a
// failure is worth another attempt; a nil Retryable retries
// everything. The last encountered error is returned on exhaustion.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Retryable   func(error) bool
}

// LinearBackoff returns attempt*step: 1s, 2s, 3s... for step=1s.
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 && p.Backoff != nil {
			timer := time.NewTimer(p.Backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			case <-timer.C:
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// Package retry provides a bounded-retry wrapper with linear backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how an operation is retried. Only errors the Retryable
// classifier accepts are retried; everything else propagates immediately.
type Policy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // attempt n waits n*BaseDelay before attempt n+1
	Retryable   func(error) bool
	Sleep       func(time.Duration) // nil means a context-aware time.Sleep
}

// Do runs fn under the policy. The returned error is fn's own error for a
// non-retryable failure, or the last error wrapped with the attempt count
// once retries are exhausted.
func Do(ctx context.Context, p Policy, fn func() error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = func(d time.Duration) {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		}
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		sleep(time.Duration(attempt) * p.BaseDelay)
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, lastErr)
}

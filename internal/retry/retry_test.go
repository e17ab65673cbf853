package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var errRetryable = errors.New("rate limited")
var errFatal = errors.New("bad request")

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt", func(t *testing.T) {
		calls := 0
		err := Do(ctx, Policy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: func(time.Duration) {}}, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("Do() = %v after %d calls, want nil after 1", err, calls)
		}
	})

	t.Run("retries with linearly increasing backoff", func(t *testing.T) {
		var waits []time.Duration
		calls := 0
		p := Policy{
			MaxAttempts: 3,
			BaseDelay:   5 * time.Second,
			Retryable:   func(err error) bool { return errors.Is(err, errRetryable) },
			Sleep:       func(d time.Duration) { waits = append(waits, d) },
		}
		err := Do(ctx, p, func() error {
			calls++
			if calls < 3 {
				return errRetryable
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Do() = %v, want success on third attempt", err)
		}
		if calls != 3 {
			t.Errorf("fn called %d times, want 3", calls)
		}
		if len(waits) != 2 || waits[0] != 5*time.Second || waits[1] != 10*time.Second {
			t.Errorf("backoff waits = %v, want [5s 10s]", waits)
		}
	})

	t.Run("non-retryable error propagates immediately", func(t *testing.T) {
		calls := 0
		p := Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Retryable:   func(err error) bool { return errors.Is(err, errRetryable) },
			Sleep:       func(time.Duration) { t.Error("should not sleep for a fatal error") },
		}
		err := Do(ctx, p, func() error {
			calls++
			return errFatal
		})
		if !errors.Is(err, errFatal) {
			t.Errorf("Do() = %v, want errFatal", err)
		}
		if calls != 1 {
			t.Errorf("fn called %d times, want 1", calls)
		}
		if strings.Contains(err.Error(), "attempts") {
			t.Errorf("fatal error should not be wrapped as exhausted retries: %v", err)
		}
	})

	t.Run("exhausted retries wrap the last error", func(t *testing.T) {
		calls := 0
		p := Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Retryable:   func(err error) bool { return true },
			Sleep:       func(time.Duration) {},
		}
		err := Do(ctx, p, func() error {
			calls++
			return errRetryable
		})
		if calls != 3 {
			t.Errorf("fn called %d times, want 3", calls)
		}
		if !errors.Is(err, errRetryable) {
			t.Errorf("Do() = %v, want wrapped errRetryable", err)
		}
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		p := Policy{
			MaxAttempts: 5,
			BaseDelay:   time.Second,
			Retryable:   func(err error) bool { return true },
			Sleep:       func(time.Duration) { cancel() },
		}
		err := Do(cancelled, p, func() error { return errRetryable })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Do() = %v, want context.Canceled", err)
		}
	})
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func TestIsRateLimit(t *testing.T) {
	base := errors.New("boom")

	if !IsRateLimit(&RateLimitError{Err: base}) {
		t.Errorf("IsRateLimit() = false for RateLimitError")
	}
	if !IsRateLimit(fmt.Errorf("attempt failed: %w", &RateLimitError{Err: base})) {
		t.Errorf("IsRateLimit() = false for wrapped RateLimitError")
	}
	if IsRateLimit(base) {
		t.Errorf("IsRateLimit() = true for plain error")
	}
	if IsRateLimit(nil) {
		t.Errorf("IsRateLimit() = true for nil")
	}
}

func TestGenerateContext(t *testing.T) {
	t.Run("applies the configured timeout", func(t *testing.T) {
		c := &Client{timeout: 30 * time.Second}
		ctx, cancel := c.generateContext(context.Background())
		defer cancel()

		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("generateContext() set no deadline")
		}
		if remaining := time.Until(deadline); remaining > 30*time.Second || remaining < 29*time.Second {
			t.Errorf("deadline %v away, want about 30s", remaining)
		}
	})

	t.Run("stalled call is cut off at the deadline", func(t *testing.T) {
		c := &Client{timeout: 20 * time.Millisecond}
		ctx, cancel := c.generateContext(context.Background())
		defer cancel()

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context never expired")
		}
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
		}
	})

	t.Run("zero timeout leaves the context unbounded", func(t *testing.T) {
		c := &Client{}
		ctx, cancel := c.generateContext(context.Background())
		defer cancel()

		if _, ok := ctx.Deadline(); ok {
			t.Errorf("unexpected deadline without a configured timeout")
		}
	})
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"googleapi 400", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"wrapped googleapi 429", fmt.Errorf("call: %w", &googleapi.Error{Code: 429}), true},
		{"grpc resource exhausted", errors.New("rpc error: code = ResourceExhausted desc = quota"), true},
		{"other error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimited(tt.err); got != tt.want {
				t.Errorf("isRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

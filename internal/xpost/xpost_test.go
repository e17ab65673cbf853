package xpost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("posts text with bearer auth", func(t *testing.T) {
		var gotAuth, gotText string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			var payload map[string]string
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			gotText = payload["text"]
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"data":{"id":"1"}}`)
		}))
		t.Cleanup(srv.Close)

		c := NewClient("secret-token", srv.URL, 5*time.Second)
		if err := c.Publish(ctx, "瓦版テスト投稿"); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		if gotAuth != "Bearer secret-token" {
			t.Errorf("Authorization = %q", gotAuth)
		}
		if gotText != "瓦版テスト投稿" {
			t.Errorf("posted text = %q", gotText)
		}
	})

	t.Run("non-success status yields PublishError with status and message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"title":"Forbidden"}`)
		}))
		t.Cleanup(srv.Close)

		c := NewClient("secret-token", srv.URL, 5*time.Second)
		err := c.Publish(ctx, "text")

		var pubErr *PublishError
		if !errors.As(err, &pubErr) {
			t.Fatalf("Publish() error = %v, want *PublishError", err)
		}
		if pubErr.StatusCode != http.StatusForbidden {
			t.Errorf("StatusCode = %d, want 403", pubErr.StatusCode)
		}
		if pubErr.Message == "" {
			t.Errorf("Message is empty, want response body")
		}
	})

	t.Run("network failure is not a PublishError", func(t *testing.T) {
		c := NewClient("secret-token", "http://127.0.0.1:1", 100*time.Millisecond)
		err := c.Publish(ctx, "text")
		if err == nil {
			t.Fatal("Publish() succeeded against an unreachable host")
		}
		var pubErr *PublishError
		if errors.As(err, &pubErr) {
			t.Errorf("network error should not be a PublishError")
		}
	})
}

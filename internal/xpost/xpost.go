// Package xpost publishes finalized posts to X via the v2 API.
package xpost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.x.com/2"

// PublishError carries the platform's failure status and message for logging.
// A publish failure is never retried here; the caller decides whether it ends
// the run.
type PublishError struct {
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewClient(token, baseURL string, timeout time.Duration) *Client {
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Publish posts the text. Success is a 200 or 201 from the API; anything else
// is a *PublishError.
func (c *Client) Publish(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal tweet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tweets", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build tweet request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &PublishError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return nil
}

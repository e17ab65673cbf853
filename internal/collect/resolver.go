package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Aggregator feeds hand out intermediary links; the canonical URL is whatever
// the redirect chain terminates at. Some hosts refuse requests without a
// plausible User-Agent.
const resolveUserAgent = "curl/8"

// Resolver follows an item link to its terminal URL.
type Resolver struct {
	client *http.Client
}

func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: timeout},
	}
}

// Resolve returns the redirect-terminal URL for rawURL. It returns an error
// instead of guessing; the caller decides whether to fall back to the
// original link.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", resolveUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("follow redirects: %w", err)
	}
	defer resp.Body.Close()
	// Drain a bounded amount so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return resp.Request.URL.String(), nil
}

// Package gemini is the text-generation collaborator. It distinguishes
// rate-limit responses, which the caller may retry, from every other failure
// class, which it may not.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/compose"
)

// RateLimitError wraps a quota/429 response from the generation API.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("generation rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimit reports whether err is (or wraps) a rate-limit response.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model, timeout: timeout}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// generateContext bounds one generation call so a hung RPC cannot stall the
// whole run. A non-positive timeout leaves the caller's context untouched.
func (c *Client) generateContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Generate produces a draft post from the assembled prompt. A rate-limit
// response comes back as *RateLimitError; anything else is terminal.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.generateContext(ctx)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.4)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(compose.SystemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if isRateLimited(err) {
			return "", &RateLimitError{Err: err}
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func isRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	// The SDK surfaces gRPC quota errors without a googleapi code.
	msg := err.Error()
	return strings.Contains(msg, "ResourceExhausted") || strings.Contains(msg, "429")
}

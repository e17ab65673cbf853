// Package config builds the immutable run configuration. All settings come
// from environment variables with defaults matching the production deployment;
// components receive the values by parameter and never read the environment
// themselves.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Variant selects the prompt template and fallback text.
type Variant string

const (
	// VariantNormal is the regular kawaraban tone.
	VariantNormal Variant = "normal"
	// VariantYasashii is the plain-language edition.
	VariantYasashii Variant = "yasashii"
)

type Config struct {
	// Template / posting policy
	Variant   Variant
	RunBudget int // posts per scheduled run
	DryRun    bool

	// Feed settings
	FeedsConfigPath string
	PerFeedLimit    int
	FeedTimeout     time.Duration
	ResolveTimeout  time.Duration

	// Generation settings
	GeminiAPIKey     string
	GeminiModel      string
	GenerateTimeout  time.Duration
	GenerateAttempts int           // total attempts, including the first
	GenerateBackoff  time.Duration // base delay; attempt n waits n*base
	// FallbackOnGenerationError substitutes the static fallback text when
	// generation fails (after retries for rate limits). When false the run
	// aborts instead.
	FallbackOnGenerationError bool

	// Publish settings
	XBearerToken   string
	PublishTimeout time.Duration
	OutputLimit    int // hard character budget per post
	InterPostDelay time.Duration
	// ContinueOnPublishError skips to the next candidate after a failed
	// publish instead of aborting the run. The item is never marked seen
	// either way.
	ContinueOnPublishError bool

	// Seen-set store
	SeenFilePath string

	// App settings
	Debug          bool
	MonitoringPort string // empty disables the monitoring endpoint
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Variant:          VariantNormal,
		RunBudget:        1,
		FeedsConfigPath:  "configs/feeds.yaml",
		PerFeedLimit:     10,
		FeedTimeout:      20 * time.Second,
		ResolveTimeout:   12 * time.Second,
		GeminiModel:      "gemini-1.5-flash",
		GenerateTimeout:  30 * time.Second,
		GenerateAttempts: 3,
		GenerateBackoff:  5 * time.Second,
		PublishTimeout:   30 * time.Second,
		OutputLimit:      280,
		InterPostDelay:   2 * time.Second,
		SeenFilePath:     "seen.txt",
	}

	// Secrets
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.XBearerToken = os.Getenv("X_BEARER_TOKEN")

	if v := os.Getenv("TEMPLATE_VARIANT"); v != "" {
		cfg.Variant = Variant(v)
	}
	cfg.RunBudget = getEnvIntOrDefault("POST_SLOTS_PER_RUN", cfg.RunBudget)
	cfg.PerFeedLimit = getEnvIntOrDefault("PER_FEED_LIMIT", cfg.PerFeedLimit)
	cfg.OutputLimit = getEnvIntOrDefault("OUTPUT_LIMIT", cfg.OutputLimit)
	cfg.GenerateAttempts = getEnvIntOrDefault("GENERATE_ATTEMPTS", cfg.GenerateAttempts)

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.SeenFilePath = getEnvOrDefault("SEEN_FILE_PATH", cfg.SeenFilePath)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.MonitoringPort = os.Getenv("MONITORING_PORT")

	if v := os.Getenv("GENERATE_BACKOFF_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.GenerateBackoff = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("INTER_POST_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.InterPostDelay = time.Duration(val) * time.Second
		}
	}

	cfg.FallbackOnGenerationError = os.Getenv("GENERATION_FALLBACK") == "true"
	cfg.ContinueOnPublishError = os.Getenv("CONTINUE_ON_PUBLISH_ERROR") == "true"
	cfg.DryRun = os.Getenv("DRY_RUN") == "true"
	cfg.Debug = os.Getenv("DEBUG") == "true"

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.XBearerToken == "" && !c.DryRun {
		return fmt.Errorf("X_BEARER_TOKEN is required")
	}
	if c.Variant != VariantNormal && c.Variant != VariantYasashii {
		return fmt.Errorf("TEMPLATE_VARIANT must be %q or %q", VariantNormal, VariantYasashii)
	}
	if c.RunBudget < 1 {
		return fmt.Errorf("POST_SLOTS_PER_RUN must be at least 1")
	}
	if c.OutputLimit < 2 {
		return fmt.Errorf("OUTPUT_LIMIT must leave room for the truncation marker")
	}
	return nil
}

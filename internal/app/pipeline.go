// Package app orchestrates one scheduled run: load the seen set, collect and
// resolve candidates, select up to the run budget, then publish sequentially,
// marking fingerprints seen only after a confirmed publish.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/collect"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/compose"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/config"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/gemini"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/logger"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/metrics"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/retry"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/selection"
)

// ErrNotConfigured is returned when the pipeline runs without required
// dependencies.
var ErrNotConfigured = errors.New("pipeline dependencies not configured")

// Collector gathers feed items and resolves them into candidates.
type Collector interface {
	Collect(ctx context.Context) []collect.RawItem
	Candidate(ctx context.Context, item collect.RawItem) collect.Candidate
}

// SeenStore is the durable record of published fingerprints.
type SeenStore interface {
	Load() (map[string]struct{}, error)
	Append(fingerprints []string) error
}

// Generator drafts post text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Publisher posts finalized text to the platform.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// Deps lists the pipeline's collaborators. Sleep is swappable for tests and
// covers both retry backoff and the inter-post delay.
type Deps struct {
	Config    *config.Config
	Collector Collector
	Store     SeenStore
	Generator Generator
	Publisher Publisher
	Sleep     func(time.Duration)
}

type Pipeline struct {
	cfg       *config.Config
	collector Collector
	store     SeenStore
	generator Generator
	publisher Publisher
	sleep     func(time.Duration)
}

func NewPipeline(deps Deps) *Pipeline {
	sleep := deps.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Pipeline{
		cfg:       deps.Config,
		collector: deps.Collector,
		store:     deps.Store,
		generator: deps.Generator,
		publisher: deps.Publisher,
		sleep:     sleep,
	}
}

// Run executes one full pipeline pass. The seen set is read once at the
// start; newly published fingerprints are appended once at the end, also on
// error paths, so a failed run still records what it did publish.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.validateDeps(); err != nil {
		return err
	}

	seenSet, err := p.store.Load()
	if err != nil {
		err = fmt.Errorf("load seen set: %w", err)
		metrics.Global.SetError(err.Error())
		return err
	}
	logger.Info("loaded seen set", "fingerprints", len(seenSet))

	rawItems := p.collector.Collect(ctx)
	metrics.Global.AddItemsCollected(len(rawItems))

	candidates := make([]collect.Candidate, 0, len(rawItems))
	for _, item := range rawItems {
		candidates = append(candidates, p.collector.Candidate(ctx, item))
	}

	duplicates := 0
	for _, c := range candidates {
		if _, ok := seenSet[c.Fingerprint]; ok {
			duplicates++
		}
	}
	metrics.Global.AddDuplicatesSkipped(duplicates)

	selected := selection.Select(candidates, seenSet, p.cfg.RunBudget)
	logger.Info("selected candidates", "selected", len(selected), "candidates", len(candidates), "already_seen", duplicates)

	if len(selected) == 0 {
		logger.Info("no new items, done")
		metrics.Global.SetLastRun()
		return nil
	}

	published, runErr := p.publishAll(ctx, selected)

	if err := p.store.Append(published); err != nil {
		// Items already posted this run are now unrecorded; the next run
		// would repost them. This needs operator attention, not silence.
		logger.Error("failed to persist seen set", "published", len(published), "error", err)
		metrics.Global.SetError(err.Error())
		if runErr != nil {
			return fmt.Errorf("append seen set: %v (run also failed: %w)", err, runErr)
		}
		return fmt.Errorf("append seen set: %w", err)
	}

	if runErr != nil {
		metrics.Global.SetError(runErr.Error())
		return runErr
	}
	metrics.Global.SetLastRun()
	return nil
}

// publishAll processes the selected candidates strictly one at a time in
// selection order and returns the fingerprints of every confirmed publish.
func (p *Pipeline) publishAll(ctx context.Context, selected []collect.Candidate) ([]string, error) {
	published := make([]string, 0, len(selected))

	for i, cand := range selected {
		text, err := p.draft(ctx, cand)
		if err != nil {
			return published, err
		}
		text = compose.Clip(text, p.cfg.OutputLimit)

		if p.cfg.DryRun {
			logger.Info("dry run, not publishing", "link", cand.CanonicalLink, "text", text)
			continue
		}

		if err := p.publisher.Publish(ctx, text); err != nil {
			metrics.Global.SetError(err.Error())
			if p.cfg.ContinueOnPublishError {
				logger.Error("publish failed, skipping item", "link", cand.CanonicalLink, "error", err)
				continue
			}
			return published, fmt.Errorf("publish %s: %w", cand.CanonicalLink, err)
		}

		logger.Info("published", "link", cand.CanonicalLink)
		metrics.Global.IncrementPostsPublished()
		published = append(published, cand.Fingerprint)

		if i < len(selected)-1 {
			p.sleep(p.cfg.InterPostDelay)
		}
	}

	return published, nil
}

// draft generates the post text for one candidate. Rate-limit responses are
// retried with linear backoff; once retries exhaust, or on any other
// generation failure, the configured policy picks between the static
// fallback text and failing the run.
func (p *Pipeline) draft(ctx context.Context, cand collect.Candidate) (string, error) {
	prompt := compose.BuildPrompt(cand.Title, cand.Summary, cand.CanonicalLink, p.cfg.Variant)

	var text string
	attempt := 0
	policy := retry.Policy{
		MaxAttempts: p.cfg.GenerateAttempts,
		BaseDelay:   p.cfg.GenerateBackoff,
		Retryable:   gemini.IsRateLimit,
		Sleep:       p.sleep,
	}
	err := retry.Do(ctx, policy, func() error {
		attempt++
		if attempt > 1 {
			logger.Warn("generation rate limited, retrying", "attempt", attempt, "link", cand.CanonicalLink)
			metrics.Global.IncrementGenerationRetries()
		}
		out, genErr := p.generator.Generate(ctx, prompt)
		if genErr != nil {
			return genErr
		}
		text = out
		return nil
	})
	if err != nil {
		if p.cfg.FallbackOnGenerationError {
			logger.Warn("generation failed, using fallback text", "link", cand.CanonicalLink, "error", err)
			metrics.Global.IncrementGenerationFallbacks()
			return compose.FallbackText(p.cfg.Variant, cand.Title, cand.CanonicalLink), nil
		}
		return "", fmt.Errorf("generate draft for %s: %w", cand.CanonicalLink, err)
	}
	return text, nil
}

func (p *Pipeline) validateDeps() error {
	switch {
	case p.cfg == nil,
		p.collector == nil,
		p.store == nil,
		p.generator == nil,
		p.publisher == nil:
		return ErrNotConfigured
	default:
		return nil
	}
}

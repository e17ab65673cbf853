// Package collect gathers candidate articles from the configured feeds and
// resolves each item's link to its canonical, redirect-terminal URL.
package collect

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/logger"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/seen"
)

// RawItem is a feed entry before resolution.
type RawItem struct {
	Title   string
	Summary string
	Link    string
}

// Candidate is a fully resolved, fingerprinted item eligible for selection.
// It lives only for the duration of one run.
type Candidate struct {
	Title         string
	Summary       string
	SourceLink    string
	CanonicalLink string
	Fingerprint   string
}

// Collector fetches feed entries and turns them into candidates.
type Collector struct {
	feeds        []Feed
	perFeedLimit int
	parser       *gofeed.Parser
	resolver     *Resolver
}

func New(feeds []Feed, perFeedLimit int, feedTimeout, resolveTimeout time.Duration) *Collector {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: feedTimeout}
	parser.UserAgent = resolveUserAgent

	return &Collector{
		feeds:        feeds,
		perFeedLimit: perFeedLimit,
		parser:       parser,
		resolver:     NewResolver(resolveTimeout),
	}
}

// Collect fetches every configured feed in declared order and returns up to
// perFeedLimit items per feed, in each feed's native order. A feed that fails
// to fetch or parse is logged and skipped; it never aborts collection.
func (c *Collector) Collect(ctx context.Context) []RawItem {
	var items []RawItem
	okFeeds := 0

	for _, feed := range c.feeds {
		parsed, err := c.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			logger.Warn("feed unavailable, skipping", "feed", feed.Name, "error", err)
			continue
		}

		count := 0
		for _, item := range parsed.Items {
			if count >= c.perFeedLimit {
				break
			}
			if item.Link == "" || item.Title == "" {
				continue
			}
			items = append(items, RawItem{
				Title:   strings.TrimSpace(item.Title),
				Summary: summaryText(item.Description),
				Link:    item.Link,
			})
			count++
		}
		okFeeds++
		logger.Debug("fetched feed", "feed", feed.Name, "items", count)
	}

	logger.Info("collected feed items", "items", len(items), "feeds_ok", okFeeds, "feeds_total", len(c.feeds))
	return items
}

// Candidate resolves one raw item to a candidate. Resolution failure is an
// explicit decision to treat the source link as already canonical, not a
// reason to drop the item.
func (c *Collector) Candidate(ctx context.Context, item RawItem) Candidate {
	canonical, err := c.resolver.Resolve(ctx, item.Link)
	if err != nil {
		logger.Debug("redirect resolution failed, using original link", "link", item.Link, "error", err)
		canonical = item.Link
	}
	return Candidate{
		Title:         item.Title,
		Summary:       item.Summary,
		SourceLink:    item.Link,
		CanonicalLink: canonical,
		Fingerprint:   seen.Fingerprint(canonical),
	}
}

package collect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// summaryText reduces a feed entry's summary to plain text. Aggregator feeds
// ship summaries as HTML fragments (links, font tags); the prompt wants prose.
// A missing or unparseable summary degrades to the trimmed input.
func summaryText(html string) string {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "<") {
		return collapseWhitespace(trimmed)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return collapseWhitespace(trimmed)
	}
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

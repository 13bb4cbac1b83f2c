// Package content is the downstream consumer of the trend pipeline: it
// turns a built TrendContext list into simple trend-infused copy. Real
// prose synthesis is expected to replace this; the pipeline only
// guarantees the contexts it hands over, not what is done with them.
package content

import (
	"fmt"
	"strings"

	"github.com/seenimoa/trendctx/pkg/models"
)

// Placeholder is emitted when no trends survived the pipeline, so
// callers degrade gracefully instead of failing.
const Placeholder = "No trending topics available for content generation."

// Content types understood by Generate.
const (
	TypeArticle = "article"
	TypeSummary = "summary"
)

// Result carries generated content plus the trends it drew on.
type Result struct {
	Content    string   `json:"content"`
	TrendsUsed []string `json:"trends_used"`
}

// Generate produces content of the given type from at most maxTrends of
// the highest-ranked contexts. Unknown content types fall back to the
// base rendering. Empty input yields the placeholder, never an error.
func Generate(contexts []models.TrendContext, contentType string, maxTrends int) Result {
	if maxTrends > 0 && len(contexts) > maxTrends {
		contexts = contexts[:maxTrends]
	}
	if len(contexts) == 0 {
		return Result{Content: Placeholder, TrendsUsed: []string{}}
	}

	topics := make([]string, len(contexts))
	for i, tc := range contexts {
		topics[i] = tc.Topic
	}

	base := "Exploring top trends: " + strings.Join(topics, ", ")

	var body string
	switch contentType {
	case TypeArticle:
		body = base + "\n\n" + articleBody(contexts)
	case TypeSummary:
		body = fmt.Sprintf("Summary of %d top trends: %s.", len(topics), strings.Join(topics, ", "))
	default:
		body = base
	}

	return Result{Content: body, TrendsUsed: topics}
}

// articleBody renders one paragraph per trend from its keywords and
// metadata description.
func articleBody(contexts []models.TrendContext) string {
	var sb strings.Builder
	for i, tc := range contexts {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (relevance %.1f)", tc.Topic, tc.RelevanceScore)
		if desc, ok := tc.Metadata["description"].(string); ok && desc != "" {
			sb.WriteString(": " + desc)
		}
		if len(tc.Keywords) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(tc.Keywords, ", "))
		}
	}
	return sb.String()
}

package aggregate

import "github.com/seenimoa/trendctx/pkg/models"

// DefaultMinScore is the relevance threshold applied when callers don't
// choose one. Pass 0 to Filter to disable score filtering entirely.
const DefaultMinScore = 50.0

// Filter retains contexts whose relevance score is at least minScore
// and, when categories are given, whose category is among them. Input
// order is preserved; Filter never re-sorts. minScore outside [0, 100]
// is accepted verbatim.
func Filter(contexts []models.TrendContext, minScore float64, categories ...models.Category) []models.TrendContext {
	out := make([]models.TrendContext, 0, len(contexts))
	for _, tc := range contexts {
		if tc.RelevanceScore < minScore {
			continue
		}
		if len(categories) > 0 && !categoryIn(tc.Category, categories) {
			continue
		}
		out = append(out, tc)
	}
	return out
}

func categoryIn(c models.Category, set []models.Category) bool {
	for _, want := range set {
		if c == want {
			return true
		}
	}
	return false
}

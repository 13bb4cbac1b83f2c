package aggregate

import "github.com/seenimoa/trendctx/pkg/models"

// Build finalizes a pipeline result: it re-applies the stable
// score-descending sort and truncates to maxCount (<= 0 means no cap).
// Whatever combination of Aggregate and Filter calls preceded it, the
// output here always honors the "sorted descending, size-capped"
// contract handed to content generation.
func Build(contexts []models.TrendContext, maxCount int) []models.TrendContext {
	out := make([]models.TrendContext, len(contexts))
	copy(out, contexts)
	sortByScore(out)
	if maxCount > 0 && len(out) > maxCount {
		out = out[:maxCount]
	}
	return out
}

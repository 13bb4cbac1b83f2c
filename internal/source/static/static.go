// Package static implements an in-memory source adapter. It serves fixed
// trend records, which makes it useful for offline runs, demos, and as a
// deterministic source in tests.
package static

import (
	"context"

	"github.com/seenimoa/trendctx/internal/score"
	"github.com/seenimoa/trendctx/pkg/models"
)

// Adapter serves a fixed set of trend records. Its raw signals live on a
// local 0–1 relevance scale, so it implements the self-scoring capability
// to translate them onto the canonical 0–100 range.
type Adapter struct {
	name    string
	records []models.TrendRecord
}

// New creates a static adapter serving the given records.
func New(name string, records []models.TrendRecord) *Adapter {
	return &Adapter{name: name, records: records}
}

// NewDefault creates a static adapter stocked with the built-in crypto
// trending topics.
func NewDefault() *Adapter {
	return New("static", DefaultTopics())
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return a.name }

// FetchTrends implements source.Adapter. The context is consulted only
// for early cancellation; there is no I/O.
func (a *Adapter) FetchTrends(ctx context.Context, limit int) ([]models.TrendRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records := a.records
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]models.TrendRecord, len(records))
	copy(out, records)
	return out, nil
}

// ScoreTrend implements source.SelfScorer. The local 0–1 relevance scale
// maps linearly onto the canonical range.
func (a *Adapter) ScoreTrend(rec models.TrendRecord) float64 {
	return score.Clamp(score.Magnitude(rec.RawSignal) * 100)
}

// DefaultTopics returns the built-in fixture topics.
func DefaultTopics() []models.TrendRecord {
	return []models.TrendRecord{
		{
			Name:      "Bitcoin Halving",
			RawSignal: 0.9,
			SourceID:  "static",
			Extra: map[string]any{
				"keywords":    []string{"bitcoin", "halving", "crypto investment"},
				"description": "Upcoming Bitcoin halving event with potential market impact",
				"category":    string(models.CategoryPriceMovement),
			},
		},
		{
			Name:      "Ethereum Layer 2",
			RawSignal: 0.7,
			SourceID:  "static",
			Extra: map[string]any{
				"keywords":    []string{"ethereum", "layer 2", "scalability"},
				"description": "Latest developments in Ethereum's scaling solutions",
				"category":    string(models.CategoryTechnology),
			},
		},
		{
			Name:      "DeFi Innovation",
			RawSignal: 0.6,
			SourceID:  "static",
			Extra: map[string]any{
				"keywords":    []string{"defi", "blockchain", "finance"},
				"description": "Emerging trends in decentralized finance",
				"category":    string(models.CategoryAdoptionTrend),
			},
		},
	}
}

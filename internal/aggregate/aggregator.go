// Package aggregate fans out across source adapters, scores and
// validates every record they return, and merges the survivors into one
// collection ordered by relevance. It also hosts the filter and the
// final context builder, the two read-side stages of the pipeline.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/trendctx/internal/score"
	"github.com/seenimoa/trendctx/internal/source"
	"github.com/seenimoa/trendctx/internal/validate"
	"github.com/seenimoa/trendctx/pkg/models"
)

// DefaultSourceTimeout bounds a single adapter fetch. A timed-out source
// is treated like any other failed source: skipped, never fatal.
const DefaultSourceTimeout = 30 * time.Second

// Config tunes an Aggregator. Zero values fall back to defaults.
type Config struct {
	// Scorer converts raw signals for adapters without a self-scoring
	// capability. Defaults to score.Log{}.
	Scorer score.Scorer

	// Validator checks each scored record. Defaults to validate.New().
	Validator *validate.Validator

	// SourceTimeout bounds each adapter fetch. Defaults to
	// DefaultSourceTimeout.
	SourceTimeout time.Duration

	// FetchLimit is passed through to each adapter; <= 0 means no cap.
	FetchLimit int
}

// Aggregator queries every registered adapter, isolating per-source
// failures so one broken source never aborts the others. It keeps no
// state between calls except a replaceable last-result snapshot, rebuilt
// from scratch on every Aggregate.
type Aggregator struct {
	sources   []source.Adapter
	scorer    score.Scorer
	validator *validate.Validator
	timeout   time.Duration
	limit     int

	mu       sync.Mutex
	lastRun  []models.TrendContext
	lastErrs []error
}

// New creates an aggregator over the given adapters.
func New(sources []source.Adapter, cfg Config) *Aggregator {
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = score.Log{}
	}
	validator := cfg.Validator
	if validator == nil {
		validator = validate.New()
	}
	timeout := cfg.SourceTimeout
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	return &Aggregator{
		sources:   sources,
		scorer:    scorer,
		validator: validator,
		timeout:   timeout,
		limit:     cfg.FetchLimit,
	}
}

// Sources returns the registered adapters.
func (a *Aggregator) Sources() []source.Adapter {
	out := make([]source.Adapter, len(a.sources))
	copy(out, a.sources)
	return out
}

// Aggregate fetches, scores, and validates records from every source
// concurrently. Failing sources contribute nothing; their errors are
// readable via Errors until the next call. The result is sorted by
// relevance score descending, ties keeping source registration order.
func (a *Aggregator) Aggregate(ctx context.Context) []models.TrendContext {
	perSource := make([][]models.TrendContext, len(a.sources))
	errsBySource := make([]error, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			records, err := src.FetchTrends(fetchCtx, a.limit)
			if err != nil {
				errsBySource[i] = fmt.Errorf("source %q: %w", src.Name(), err)
				return nil // isolated: other sources still contribute
			}
			perSource[i] = a.processRecords(src, records)
			return nil
		})
	}
	// Workers only write their own slot, so the only error path is
	// context cancellation, which the per-source fetches already honor.
	_ = g.Wait()

	var merged []models.TrendContext
	var errs []error
	for i := range a.sources {
		merged = append(merged, perSource[i]...)
		if errsBySource[i] != nil {
			errs = append(errs, errsBySource[i])
		}
	}

	sortByScore(merged)

	a.mu.Lock()
	a.lastRun = merged
	a.lastErrs = errs
	a.mu.Unlock()

	return merged
}

// processRecords scores each raw record and keeps only those that
// validate. Adapters with a self-scoring capability use their own scale
// conversion; everything else goes through the configured scorer.
func (a *Aggregator) processRecords(src source.Adapter, records []models.TrendRecord) []models.TrendContext {
	selfScorer, selfScores := src.(source.SelfScorer)

	out := make([]models.TrendContext, 0, len(records))
	for _, rec := range records {
		var scored float64
		if selfScores {
			scored = score.Clamp(selfScorer.ScoreTrend(rec))
		} else {
			scored = a.scorer.Score(rec.RawSignal)
		}

		tc, err := a.validator.Record(recordMapping(src, rec, scored))
		if err != nil {
			continue // record-level rejection never fails the batch
		}
		out = append(out, *tc)
	}
	return out
}

// recordMapping flattens a raw record plus its canonical score into the
// mapping shape the validator accepts.
func recordMapping(src source.Adapter, rec models.TrendRecord, scored float64) map[string]any {
	m := make(map[string]any, len(rec.Extra)+4)
	for k, v := range rec.Extra {
		m[k] = v
	}
	m["topic"] = rec.Name
	m["relevance_score"] = scored
	if rec.SourceID != "" {
		m["source"] = rec.SourceID
	} else {
		m["source"] = src.Name()
	}
	if rec.Timestamp != nil {
		m["timestamp"] = *rec.Timestamp
	}
	return m
}

// Last returns the result of the most recent Aggregate call. The
// returned contexts share nothing with the slice Aggregate handed out,
// so callers may mutate either side freely.
func (a *Aggregator) Last() []models.TrendContext {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.TrendContext, len(a.lastRun))
	for i, tc := range a.lastRun {
		if tc.Keywords != nil {
			tc.Keywords = append([]string(nil), tc.Keywords...)
		}
		if tc.Metadata != nil {
			meta := make(map[string]any, len(tc.Metadata))
			for k, v := range tc.Metadata {
				meta[k] = v
			}
			tc.Metadata = meta
		}
		out[i] = tc
	}
	return out
}

// Errors returns the per-source failures from the most recent Aggregate
// call. An empty slice means every source succeeded.
func (a *Aggregator) Errors() []error {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]error, len(a.lastErrs))
	copy(out, a.lastErrs)
	return out
}

// sortByScore orders contexts by relevance descending, stable.
func sortByScore(contexts []models.TrendContext) {
	sort.SliceStable(contexts, func(i, j int) bool {
		return contexts[i].RelevanceScore > contexts[j].RelevanceScore
	})
}

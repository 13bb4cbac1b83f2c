// Package source defines the adapter contract the pipeline core depends
// on. Concrete adapters live in subpackages; the core only sees this
// interface and the typed errors below.
package source

import (
	"context"
	"fmt"

	"github.com/seenimoa/trendctx/pkg/models"
)

// Adapter supplies raw trend records from one upstream source. FetchTrends
// returns at most limit records when limit is positive; limit <= 0 means
// no cap. Transport failures surface as *ConnectionError and unparseable
// payloads as *DataError.
type Adapter interface {
	// Name returns the provenance identifier stamped on records.
	Name() string

	// FetchTrends retrieves the current raw trend records.
	FetchTrends(ctx context.Context, limit int) ([]models.TrendRecord, error)
}

// SelfScorer is an optional adapter capability: adapters that understand
// their own signal scale can convert records to the canonical 0–100
// score themselves instead of relying on the pipeline default scorer.
type SelfScorer interface {
	ScoreTrend(rec models.TrendRecord) float64
}

// ConnectionError indicates the upstream source could not be reached.
type ConnectionError struct {
	Source string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("source %q connection failed: %v", e.Source, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DataError indicates the upstream responded but its payload could not be
// parsed into trend records.
type DataError struct {
	Source string
	Detail string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("source %q returned bad data: %s", e.Source, e.Detail)
}

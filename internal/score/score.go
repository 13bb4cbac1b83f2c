// Package score maps raw trend signals onto the canonical 0–100
// relevance scale. Scorers are pure and deterministic; each source may
// plug in its own strategy.
package score

import (
	"math"

	"github.com/spf13/cast"
)

// Scorer converts a raw signal into a canonical relevance score.
// Implementations must return values in [0, 100] and be monotonically
// non-decreasing in the magnitude of the signal.
type Scorer interface {
	Score(rawSignal any) float64
}

// DefaultCeiling is the signal magnitude that saturates the default log
// scorer at 100. Chosen so that score = 100 * ln(s+1) / ln(ceiling+1)
// reproduces a ln(s+1)/10 normalization: e^10 - 1 ≈ 22025.
var DefaultCeiling = math.Exp(10) - 1

// Log compresses signals logarithmically so a single very large signal
// does not flatten everything else at the top of the range.
type Log struct {
	// Ceiling is the signal magnitude mapped to 100. Zero or negative
	// values fall back to DefaultCeiling.
	Ceiling float64
}

// Score implements Scorer.
func (l Log) Score(rawSignal any) float64 {
	ceiling := l.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	s := Magnitude(rawSignal)
	return Clamp(100 * math.Log(s+1) / math.Log(ceiling+1))
}

// Linear divides the signal by a fixed divisor and clamps. Matches the
// simple volume/N scaling some adapters use.
type Linear struct {
	// Divisor scales the raw signal; zero or negative falls back to 10000.
	Divisor float64
}

// Score implements Scorer.
func (l Linear) Score(rawSignal any) float64 {
	divisor := l.Divisor
	if divisor <= 0 {
		divisor = 10000
	}
	return Clamp(Magnitude(rawSignal) / divisor)
}

// Magnitude extracts the underlying signal magnitude from a raw signal
// value. Numeric values convert directly; mappings yield the maximum of
// their numeric values. Anything unintelligible or negative counts as 0.
func Magnitude(rawSignal any) float64 {
	switch v := rawSignal.(type) {
	case map[string]float64:
		maxVal := 0.0
		for _, f := range v {
			if f > maxVal {
				maxVal = f
			}
		}
		return maxVal
	case map[string]any:
		maxVal := 0.0
		for _, item := range v {
			if f, err := cast.ToFloat64E(item); err == nil && f > maxVal {
				maxVal = f
			}
		}
		return maxVal
	default:
		f, err := cast.ToFloat64E(rawSignal)
		if err != nil || f < 0 || math.IsNaN(f) {
			return 0
		}
		return f
	}
}

// Clamp pins a score into the canonical [0, 100] range.
func Clamp(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

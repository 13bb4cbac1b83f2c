package score

import (
	"math"
	"testing"
)

// --- Log scorer ---

func TestLogScoreRange(t *testing.T) {
	scorer := Log{}
	signals := []float64{0, 1, 10, 1000, 22000, 1000000, math.MaxFloat64}
	for _, s := range signals {
		got := scorer.Score(s)
		if got < 0 || got > 100 {
			t.Errorf("Score(%v) = %v, outside [0, 100]", s, got)
		}
	}
}

func TestLogScoreMonotonic(t *testing.T) {
	scorer := Log{}
	prev := -1.0
	for _, s := range []float64{0, 1, 5, 50, 500, 5000, 50000, 5e6, 5e9} {
		got := scorer.Score(s)
		if got < prev {
			t.Fatalf("Score not monotonic: Score(%v) = %v < previous %v", s, got, prev)
		}
		prev = got
	}
}

func TestLogScoreCeiling(t *testing.T) {
	scorer := Log{}

	// The default ceiling itself maps to exactly 100.
	if got := scorer.Score(DefaultCeiling); math.Abs(got-100) > 1e-9 {
		t.Errorf("Score(ceiling) = %v, want 100", got)
	}
	// Zero signal maps to zero.
	if got := scorer.Score(0.0); got != 0 {
		t.Errorf("Score(0) = %v, want 0", got)
	}
	// A huge signal is clamped, not overflowed.
	if got := scorer.Score(1000000.0); got != 100 {
		t.Errorf("Score(1e6) = %v, want clamped 100", got)
	}
}

func TestLogScoreCustomCeiling(t *testing.T) {
	scorer := Log{Ceiling: 99}
	if got := scorer.Score(99.0); math.Abs(got-100) > 1e-9 {
		t.Errorf("Score(99) with ceiling 99 = %v, want 100", got)
	}
	if got := scorer.Score(9.0); math.Abs(got-50) > 1e-9 {
		t.Errorf("Score(9) with ceiling 99 = %v, want 50", got)
	}
}

// --- Linear scorer ---

func TestLinearScore(t *testing.T) {
	scorer := Linear{Divisor: 10000}
	cases := []struct {
		signal float64
		want   float64
	}{
		{0, 0},
		{500000, 50},
		{1000000, 100},
		{25000000, 100}, // clamped
	}
	for _, tc := range cases {
		if got := scorer.Score(tc.signal); got != tc.want {
			t.Errorf("Linear.Score(%v) = %v, want %v", tc.signal, got, tc.want)
		}
	}
}

// --- Magnitude ---

func TestMagnitude(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  float64
	}{
		{"float", 42.5, 42.5},
		{"int", 42, 42},
		{"string number", "17", 17},
		{"negative clamps to zero", -5.0, 0},
		{"map takes max", map[string]float64{"day": 10, "week": 90, "month": 40}, 90},
		{"any map takes max numeric", map[string]any{"a": 3, "b": "bad", "c": 7.5}, 7.5},
		{"garbage", "not a number", 0},
		{"nil", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Magnitude(tc.input); got != tc.want {
				t.Errorf("Magnitude(%v) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

// --- Clamp ---

func TestClamp(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-10, 0},
		{0, 0},
		{55.5, 55.5},
		{100, 100},
		{120, 100},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

package validate

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/trendctx/pkg/models"
)

func validRecord() map[string]any {
	return map[string]any{
		"topic":           "Bitcoin Halving",
		"relevance_score": 87.5,
	}
}

// --- Required fields ---

func TestRecordNilMapping(t *testing.T) {
	_, err := Record(nil)
	if err == nil {
		t.Fatal("expected error for nil record")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Errorf("expected *Error, got %T", err)
	}
}

func TestRecordMissingRequired(t *testing.T) {
	cases := []struct {
		name string
		rec  map[string]any
	}{
		{"no topic", map[string]any{"relevance_score": 50.0}},
		{"no score", map[string]any{"topic": "Bitcoin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Record(tc.rec); err == nil {
				t.Error("expected validation error")
			}
			if IsValid(tc.rec) {
				t.Error("IsValid should be false")
			}
		})
	}
}

// --- Topic ---

func TestRecordTopicSanitized(t *testing.T) {
	rec := validRecord()
	rec["topic"] = "  <b>Bitcoin</b> &amp; Ethereum  "

	tc, err := Record(rec)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if tc.Topic != "Bitcoin & Ethereum" {
		t.Errorf("Topic = %q", tc.Topic)
	}
}

func TestRecordTopicEmptyAfterSanitization(t *testing.T) {
	rec := validRecord()
	rec["topic"] = "<script></script>   "
	if _, err := Record(rec); err == nil {
		t.Error("expected error for markup-only topic")
	}
}

func TestRecordTopicTooLong(t *testing.T) {
	rec := validRecord()
	rec["topic"] = strings.Repeat("a", MaxTopicLength+1)
	if _, err := Record(rec); err == nil {
		t.Error("expected error for over-long topic")
	}

	rec["topic"] = strings.Repeat("a", MaxTopicLength)
	if _, err := Record(rec); err != nil {
		t.Errorf("topic at the limit should pass: %v", err)
	}
}

// --- Score: strict, no clamping ---

func TestRecordScoreStrict(t *testing.T) {
	cases := []struct {
		name  string
		score any
		ok    bool
	}{
		{"in range", 55.0, true},
		{"zero", 0, true},
		{"hundred", 100, true},
		{"above range", 120.0, false},
		{"below range", -1.0, false},
		{"string number", "73.5", true},
		{"garbage", "high", false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			rec["relevance_score"] = tc.score
			_, err := Record(rec)
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// --- Timestamp ---

func TestRecordTimestampWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	v := &Validator{now: func() time.Time { return now }}

	cases := []struct {
		name string
		ts   any
		ok   bool
	}{
		{"recent", now.Add(-24 * time.Hour), true},
		{"exactly now", now, true},
		{"one second future", now.Add(time.Second), false},
		{"two days future", now.Add(48 * time.Hour), false},
		{"window edge", now.Add(-DefaultFreshnessWindow), true},
		{"one second past the window", now.Add(-DefaultFreshnessWindow - time.Second), false},
		{"400 days past", now.Add(-400 * 24 * time.Hour), false},
		{"RFC3339 string", now.Add(-time.Hour).Format(time.RFC3339), true},
		{"unparseable", "not a date", false},
		{"bool", true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			rec["timestamp"] = tc.ts
			_, err := v.Record(rec)
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRecordTimestampDefaultsToNow(t *testing.T) {
	before := time.Now()
	tc, err := Record(validRecord())
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	after := time.Now()

	if tc.Timestamp.Before(before.Add(-time.Second)) || tc.Timestamp.After(after.Add(time.Second)) {
		t.Errorf("default timestamp %v not within 1s of now", tc.Timestamp)
	}
}

// --- Optional fields and metadata whitelist ---

func TestRecordOptionalFields(t *testing.T) {
	rec := validRecord()
	rec["source"] = "  coinmarketcap  "
	rec["category"] = "price_movement"
	rec["description"] = "<p>halving impact</p>"
	rec["sentiment"] = " Bullish "
	rec["volume"] = 12345
	rec["ignored_key"] = "should vanish"

	tc, err := Record(rec)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if tc.Source != "coinmarketcap" {
		t.Errorf("Source = %q", tc.Source)
	}
	if tc.Category != models.CategoryPriceMovement {
		t.Errorf("Category = %q", tc.Category)
	}
	if got := tc.Metadata["description"]; got != "halving impact" {
		t.Errorf("metadata description = %v", got)
	}
	if got := tc.Metadata["sentiment"]; got != "bullish" {
		t.Errorf("metadata sentiment = %v", got)
	}
	if got := tc.Metadata["volume"]; got != float64(12345) {
		t.Errorf("metadata volume = %v", got)
	}
	if _, leaked := tc.Metadata["ignored_key"]; leaked {
		t.Error("non-whitelisted key leaked into metadata")
	}
}

func TestRecordUnknownCategoryDropped(t *testing.T) {
	rec := validRecord()
	rec["category"] = "MEME_STOCKS"
	tc, err := Record(rec)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if tc.Category != "" {
		t.Errorf("unknown category kept: %q", tc.Category)
	}
}

func TestRecordInvalidSentimentDropped(t *testing.T) {
	rec := validRecord()
	rec["sentiment"] = "euphoric"
	tc, err := Record(rec)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if _, ok := tc.Metadata["sentiment"]; ok {
		t.Error("invalid sentiment kept")
	}
}

func TestRecordSourceURLs(t *testing.T) {
	rec := validRecord()
	rec["sources"] = []string{
		"https://example.com/a",
		"not a url",
		"ftp://example.com/b",
		"http://example.com/c",
		"https://example.com/d",
		"https://example.com/e",
		"https://example.com/f",
		"https://example.com/g",
	}
	tc, err := Record(rec)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	urls, ok := tc.Metadata["sources"].([]string)
	if !ok {
		t.Fatalf("sources missing from metadata: %v", tc.Metadata)
	}
	if len(urls) != 5 {
		t.Errorf("got %d urls, want capped at 5: %v", len(urls), urls)
	}
	for _, u := range urls {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			t.Errorf("non-http url kept: %q", u)
		}
	}
}

// --- Keywords ---

func TestRecordKeywords(t *testing.T) {
	rec := validRecord()
	rec["keywords"] = []string{"Bitcoin", "halving", "BITCOIN", "a"}
	rec["description"] = "supply shock ahead"

	tc, err := Record(rec)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	want := []string{"bitcoin", "halving", "supply", "shock", "ahead"}
	if !reflect.DeepEqual(tc.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", tc.Keywords, want)
	}
}

// --- Re-validation stability ---

func TestRecordRevalidationStable(t *testing.T) {
	rec := map[string]any{
		"topic":           "<b>Ethereum Layer 2</b>",
		"relevance_score": 64.0,
		"timestamp":       time.Now().Add(-2 * time.Hour),
		"source":          "rss",
		"category":        "TECHNOLOGY_INNOVATION",
		"keywords":        []string{"ethereum", "rollups"},
		"description":     "scaling &amp; fees",
		"sentiment":       "neutral",
		"volume":          50000,
	}

	first, err := Record(rec)
	if err != nil {
		t.Fatalf("first validation: %v", err)
	}
	second, err := Record(first.ToRecord())
	if err != nil {
		t.Fatalf("second validation: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-validation changed the context:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// Package models defines the canonical data types shared across the
// trend-context pipeline: the raw record shape returned by source adapters
// and the validated TrendContext handed to content generation.
package models

import (
	"strings"
	"time"
)

// Category classifies the broad nature of a trend. Classification is
// optional: adapters that cannot classify leave it empty.
type Category string

const (
	CategoryPriceMovement    Category = "PRICE_MOVEMENT"
	CategoryMarketSentiment  Category = "MARKET_SENTIMENT"
	CategoryTechnology       Category = "TECHNOLOGY_INNOVATION"
	CategoryRegulatoryNews   Category = "REGULATORY_NEWS"
	CategoryAdoptionTrend    Category = "ADOPTION_TREND"
	CategorySocialMediaBuzz  Category = "SOCIAL_MEDIA_BUZZ"
)

// Categories lists every known category value.
var Categories = []Category{
	CategoryPriceMovement,
	CategoryMarketSentiment,
	CategoryTechnology,
	CategoryRegulatoryNews,
	CategoryAdoptionTrend,
	CategorySocialMediaBuzz,
}

// ParseCategory resolves a category name case-insensitively.
// Returns "", false for unknown names.
func ParseCategory(s string) (Category, bool) {
	upper := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range Categories {
		if c == upper {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known category values.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

// TrendRecord is a raw, source-reported signal about a topic before
// scoring and validation. Adapters return records and never mutate them
// afterwards.
type TrendRecord struct {
	Name      string         `json:"name"`
	RawSignal any            `json:"raw_signal"` // float64 or map[string]float64
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	SourceID  string         `json:"source_id"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// TrendContext is the canonical, validated, scored representation of a
// trend ready for content generation. It is created only by the pipeline
// and never mutated after construction.
type TrendContext struct {
	Topic          string         `json:"topic"`
	Category       Category       `json:"category,omitempty"`
	RelevanceScore float64        `json:"relevance_score"` // canonical 0–100 scale
	Keywords       []string       `json:"keywords,omitempty"`
	Source         string         `json:"source"`
	Timestamp      time.Time      `json:"timestamp"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ToRecord converts a validated context back to the generic mapping form
// accepted by the validator. Useful for re-validation round trips.
func (tc TrendContext) ToRecord() map[string]any {
	rec := map[string]any{
		"topic":           tc.Topic,
		"relevance_score": tc.RelevanceScore,
		"timestamp":       tc.Timestamp,
	}
	if tc.Category != "" {
		rec["category"] = string(tc.Category)
	}
	if len(tc.Keywords) > 0 {
		rec["keywords"] = tc.Keywords
	}
	if tc.Source != "" {
		rec["source"] = tc.Source
	}
	for k, v := range tc.Metadata {
		rec[k] = v
	}
	return rec
}

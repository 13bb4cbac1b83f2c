// Package validate enforces the trend-context field schema on raw
// records. Validation is strict: out-of-range scores are rejected here,
// not clamped — clamping is the scorer's job. String fields pass through
// the sanitizer before any length or emptiness check.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/seenimoa/trendctx/internal/sanitize"
	"github.com/seenimoa/trendctx/pkg/models"
)

// Error describes why a record failed validation.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "invalid trend record: " + e.Reason
	}
	return fmt.Sprintf("invalid trend record: %s: %s", e.Field, e.Reason)
}

const (
	// MaxTopicLength caps the sanitized topic length in runes.
	MaxTopicLength = 200

	// DefaultMaxKeywords bounds the extracted keyword list.
	DefaultMaxKeywords = 10

	// DefaultFreshnessWindow is how far back a trend timestamp may lie.
	DefaultFreshnessWindow = 365 * 24 * time.Hour

	// maxSourceURLs caps the provenance URL list kept in metadata.
	maxSourceURLs = 5
)

// metadataKeys whitelists the extra record fields carried into
// TrendContext.Metadata.
var metadataKeys = []string{"name", "volume", "sentiment", "description", "sources"}

// sentiments enumerates the accepted market sentiment values.
var sentiments = map[string]struct{}{"bullish": {}, "bearish": {}, "neutral": {}}

// timestampLayouts are tried in order when the timestamp is a string.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validator checks raw records against the trend-context schema.
// The zero value is usable and applies the package defaults.
type Validator struct {
	// MaxKeywords overrides DefaultMaxKeywords when positive.
	MaxKeywords int

	// FreshnessWindow overrides DefaultFreshnessWindow when positive.
	FreshnessWindow time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New returns a validator with default limits.
func New() *Validator { return &Validator{} }

// Record validates and sanitizes a raw record into a TrendContext.
// A nil record, missing required field, unsanitizable topic, out-of-range
// score, or stale/future timestamp yields a *Error.
func (v *Validator) Record(rec map[string]any) (*models.TrendContext, error) {
	if rec == nil {
		return nil, &Error{Reason: "record is not a mapping"}
	}

	topic, err := v.validateTopic(rec)
	if err != nil {
		return nil, err
	}

	scoreVal, err := v.validateScore(rec)
	if err != nil {
		return nil, err
	}

	ts, err := v.validateTimestamp(rec)
	if err != nil {
		return nil, err
	}

	tc := &models.TrendContext{
		Topic:          topic,
		RelevanceScore: scoreVal,
		Keywords:       sanitize.ExtractKeywords(rec, v.maxKeywords()),
		Timestamp:      ts,
	}

	if raw, ok := rec["category"]; ok {
		if cat, known := models.ParseCategory(sanitize.String(raw)); known {
			tc.Category = cat
		}
	}
	if raw, ok := rec["source"]; ok {
		tc.Source = sanitize.String(raw)
	}
	tc.Metadata = buildMetadata(rec)

	return tc, nil
}

// IsValid reports whether rec would pass Record. It never returns an
// error; call sites that want the reason should use Record directly.
func (v *Validator) IsValid(rec map[string]any) bool {
	_, err := v.Record(rec)
	return err == nil
}

// Record validates rec with the default validator.
func Record(rec map[string]any) (*models.TrendContext, error) {
	return New().Record(rec)
}

// IsValid checks rec with the default validator.
func IsValid(rec map[string]any) bool {
	return New().IsValid(rec)
}

func (v *Validator) maxKeywords() int {
	if v.MaxKeywords > 0 {
		return v.MaxKeywords
	}
	return DefaultMaxKeywords
}

func (v *Validator) window() time.Duration {
	if v.FreshnessWindow > 0 {
		return v.FreshnessWindow
	}
	return DefaultFreshnessWindow
}

func (v *Validator) clock() time.Time {
	if v.now != nil {
		return v.now()
	}
	return time.Now()
}

func (v *Validator) validateTopic(rec map[string]any) (string, error) {
	raw, ok := rec["topic"]
	if !ok {
		return "", &Error{Field: "topic", Reason: "required field missing"}
	}
	topic := sanitize.String(raw)
	if topic == "" {
		return "", &Error{Field: "topic", Reason: "empty after sanitization"}
	}
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		return "", &Error{Field: "topic", Reason: fmt.Sprintf("exceeds %d characters", MaxTopicLength)}
	}
	return topic, nil
}

func (v *Validator) validateScore(rec map[string]any) (float64, error) {
	raw, ok := rec["relevance_score"]
	if !ok {
		return 0, &Error{Field: "relevance_score", Reason: "required field missing"}
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, &Error{Field: "relevance_score", Reason: "not a number"}
	}
	if f < 0 || f > 100 {
		return 0, &Error{Field: "relevance_score", Reason: fmt.Sprintf("%v outside [0, 100]", f)}
	}
	return f, nil
}

func (v *Validator) validateTimestamp(rec map[string]any) (time.Time, error) {
	raw, ok := rec["timestamp"]
	if !ok || raw == nil {
		return v.clock(), nil
	}

	ts, err := parseTimestamp(raw)
	if err != nil {
		return time.Time{}, &Error{Field: "timestamp", Reason: "unparseable value"}
	}

	now := v.clock()
	if ts.After(now) {
		return time.Time{}, &Error{Field: "timestamp", Reason: "lies in the future"}
	}
	if ts.Before(now.Add(-v.window())) {
		return time.Time{}, &Error{Field: "timestamp", Reason: "older than freshness window"}
	}
	return ts, nil
}

func parseTimestamp(raw any) (time.Time, error) {
	switch t := raw.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("nil timestamp")
		}
		return *t, nil
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", t)
	default:
		// Numeric values are treated as unix seconds.
		secs, err := cast.ToInt64E(raw)
		if err != nil || secs <= 0 {
			return time.Time{}, fmt.Errorf("unrecognized timestamp value %v", raw)
		}
		return time.Unix(secs, 0), nil
	}
}

// buildMetadata copies whitelisted extra fields out of the record,
// sanitizing textual values. Unknown keys never survive.
func buildMetadata(rec map[string]any) map[string]any {
	meta := make(map[string]any)
	for _, key := range metadataKeys {
		raw, ok := rec[key]
		if !ok || raw == nil {
			continue
		}
		switch key {
		case "sentiment":
			s := strings.ToLower(sanitize.String(raw))
			if _, valid := sentiments[s]; valid {
				meta[key] = s
			}
		case "sources":
			if urls := validSourceURLs(raw); len(urls) > 0 {
				meta[key] = urls
			}
		case "volume":
			if f, err := cast.ToFloat64E(raw); err == nil {
				meta[key] = f
			}
		default:
			if s := sanitize.String(raw); s != "" {
				meta[key] = s
			}
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// validSourceURLs keeps at most maxSourceURLs well-formed http(s) URLs.
func validSourceURLs(raw any) []string {
	var items []string
	switch v := raw.(type) {
	case []string:
		items = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return nil
	}

	var urls []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		u, err := url.Parse(item)
		if err != nil || u.Host == "" {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		urls = append(urls, item)
		if len(urls) == maxSourceURLs {
			break
		}
	}
	return urls
}

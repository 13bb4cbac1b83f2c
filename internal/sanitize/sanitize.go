// Package sanitize provides defensive text cleaning for trend data.
// Every function degrades to an empty result on bad input; nothing here
// returns an error or panics.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cast"
	"golang.org/x/text/unicode/norm"
)

// tagPattern matches HTML/XML tags for removal.
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// maxPasses bounds the fixpoint iteration in String. Entity decoding can
// reveal new tags (e.g. "&lt;script&gt;"), so a single pass is not enough
// to make the result stable under re-sanitization. Input that is still
// changing after maxPasses passes is discarded entirely.
const maxPasses = 8

// String sanitizes an arbitrary value into a clean string. Non-string
// input yields "". The cleaning pipeline, in order: strip tags, decode
// HTML entities, drop control characters, normalize unicode (NFKC),
// drop remaining non-printables, trim surrounding whitespace.
//
// String is idempotent: String(String(x)) == String(x).
func String(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	for pass := 0; pass < maxPasses; pass++ {
		next := sanitizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
	// Still changing after maxPasses passes: pathologically nested
	// encodings. Degrade to empty rather than hand back a value that
	// would keep changing under re-sanitization.
	if sanitizeOnce(s) != s {
		return ""
	}
	return s
}

func sanitizeOnce(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = stripControl(s)
	s = norm.NFKC.String(s)
	s = stripNonPrintable(s)
	return strings.TrimSpace(s)
}

// stripControl removes C0 control characters and DEL.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
}

// stripNonPrintable removes anything unicode considers non-printable,
// keeping plain spaces so multi-word topics survive.
func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' {
			return r
		}
		if !unicode.IsPrint(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// keywordFields lists the record fields mined for keyword candidates,
// in priority order.
var keywordFields = []string{"keywords", "name", "topic", "description"}

// ExtractKeywords pools keyword candidates from a raw record, sanitizes
// and lowercases them, discards tokens of length <= 1, deduplicates
// preserving first-seen order, and truncates to maxKeywords. A nil
// record or non-positive maxKeywords yields an empty slice.
func ExtractKeywords(record map[string]any, maxKeywords int) []string {
	if record == nil || maxKeywords <= 0 {
		return []string{}
	}

	var candidates []string
	for _, field := range keywordFields {
		value, ok := record[field]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			candidates = append(candidates, strings.Fields(v)...)
		case []string:
			candidates = append(candidates, v...)
		case []any:
			for _, item := range v {
				if item == nil {
					continue
				}
				candidates = append(candidates, cast.ToString(item))
			}
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	keywords := make([]string, 0, maxKeywords)
	for _, cand := range candidates {
		kw := strings.ToLower(String(cand))
		if utf8.RuneCountInString(kw) <= 1 {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

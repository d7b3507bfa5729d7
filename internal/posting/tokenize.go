package posting

import (
	"regexp"
	"strings"
	"time"
)

// tagDelimRe matches any run of list delimiters seen in the source data:
// ideographic comma, full-width and half-width commas/semicolons, slashes,
// vertical bars and whitespace.
var tagDelimRe = regexp.MustCompile(`[、，,;；/|\s]+`)

// SplitTags splits delimiter-separated free text into clean tokens.
// Order is preserved, tokens are trimmed, empties dropped. Empty input
// yields a nil slice. Pure and deterministic.
func SplitTags(text string) []string {
	var out []string
	for _, tok := range tagDelimRe.Split(text, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Dedup removes duplicate tokens, keeping first occurrence order.
func Dedup(tokens []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// dateLayouts are tried in order by MonthKey.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006年1月2日",
	"2006-01",
	"2006/01",
}

// MonthKey derives a zero-padded YYYY-MM key from raw date text.
// Best effort: unparseable input returns "" rather than an error, so a bad
// date never fails the row.
func MonthKey(dateText string) string {
	s := strings.TrimSpace(dateText)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01")
		}
	}
	return ""
}

// Package enrich fills in the arguments a tool call needs but the language
// model left implicit or malformed: numeric coercion, date normalization,
// symbol correction, and price lookup. Enrichment degrades, never throws; a
// value it cannot derive stays absent and the executor reports the gap.
package enrich

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// AsPositiveNumber coerces a tool-call argument into a positive finite
// float64. Accepted shapes: native numbers, json.Number, and strings like
// "$50,000", "50k", "1.2m". Returns nil for anything non-positive,
// non-finite, or unparseable.
func AsPositiveNumber(v interface{}) *float64 {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		n = f
	case string:
		f, ok := parseNumericString(t)
		if !ok {
			return nil
		}
		n = f
	default:
		return nil
	}

	if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

func parseNumericString(s string) (float64, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, false
	}

	multiplier := 1.0
	switch cleaned[len(cleaned)-1] {
	case 'k':
		multiplier = 1e3
		cleaned = cleaned[:len(cleaned)-1]
	case 'm':
		multiplier = 1e6
		cleaned = cleaned[:len(cleaned)-1]
	case 'b':
		multiplier = 1e9
		cleaned = cleaned[:len(cleaned)-1]
	}

	match := numberRe.FindString(cleaned)
	if match == "" || match != cleaned {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f * multiplier, true
}

// NormalizeDate maps a date-ish argument to YYYY-MM-DD. Relative words
// resolve against the current day; unparseable input falls back to today so a
// transaction is never recorded without a date.
func NormalizeDate(s string) string {
	now := time.Now()
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today", "now":
		return now.Format("2006-01-02")
	case "yesterday":
		return now.AddDate(0, 0, -1).Format("2006-01-02")
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	}

	trimmed := strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006/01/02", "01/02/2006", "Jan 2 2006", "January 2 2006", "2 Jan 2006", time.RFC3339} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return now.Format("2006-01-02")
}

var relativeDateRe = regexp.MustCompile(`\b(yesterday|today|tomorrow)\b`)

// ExtractDateFromText picks the transaction date, preferring a relative word
// in the user's own text over the structured argument. Models routinely emit
// today's date for "sold ETH yesterday"; the user's word wins.
func ExtractDateFromText(text, structured string) string {
	if m := relativeDateRe.FindString(strings.ToLower(text)); m != "" {
		return NormalizeDate(m)
	}
	return NormalizeDate(structured)
}

// round8 trims float noise from derived prices and amounts.
func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}

// Package sanitize normalizes untrusted text and numeric input into safe,
// bounded primitives. Every value crossing a trust boundary (client payloads,
// generator output) passes through here before the rest of the system sees it.
package sanitize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MaxCandidates caps the shortlist size; the 3-candidate minimum is a
// caller-level validation, not enforced here.
const MaxCandidates = 6

// Text collapses internal whitespace runs to single spaces and trims.
// Non-string input yields an empty string.
func Text(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// Candidates sanitizes a raw candidate list: empty entries are dropped,
// duplicates are removed case-insensitively keeping the first occurrence's
// casing, and the result is capped at MaxCandidates.
func Candidates(v any) []string {
	items := anySlice(v)
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		text := Text(item)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, text)
	}
	if len(result) > MaxCandidates {
		result = result[:MaxCandidates]
	}
	return result
}

// StringList sanitizes each entry, drops empties, and truncates to maxItems
func StringList(v any, maxItems int) []string {
	items := anySlice(v)
	result := make([]string, 0, len(items))
	for _, item := range items {
		text := Text(item)
		if text == "" {
			continue
		}
		result = append(result, text)
		if len(result) == maxItems {
			break
		}
	}
	return result
}

// ClampFloat coerces v to a number and clamps it into [min, max].
// Values that do not read as numbers return fallback.
func ClampFloat(v any, min, max, fallback float64) float64 {
	num, ok := toNumber(v)
	if !ok {
		return fallback
	}
	return math.Min(max, math.Max(min, num))
}

// ClampInt is ClampFloat for integer state; fractional input is rounded
func ClampInt(v any, min, max, fallback int) int {
	num, ok := toNumber(v)
	if !ok {
		return fallback
	}
	n := int(math.Round(num))
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// ClampIntValue clamps an already-trusted integer into [min, max]
func ClampIntValue(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func anySlice(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case []string:
		items := make([]any, len(list))
		for i, s := range list {
			items[i] = s
		}
		return items
	default:
		return nil
	}
}

// Package numeric coerces user-entered text into numbers and renders money
// and percentages for display. Every function is total: malformed input
// resolves to a fallback, never an error.
package numeric

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseNumber parses the leading numeric content of text, the way a browser
// parseFloat does: leading whitespace is skipped and trailing garbage
// ignored, so "12.5kg" is 12.5. Returns fallback when no number can be read
// or the result is not finite.
func ParseNumber(text string, fallback float64) float64 {
	prefix := numericPrefix(strings.TrimLeftFunc(text, unicode.IsSpace))
	if prefix == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return fallback
	}
	return v
}

// numericPrefix returns the longest prefix of s that is a decimal literal:
// an optional sign, digits with at most one point, and an optional exponent
// that is only kept when it has digits.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

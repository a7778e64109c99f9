// Package normalize canonicalizes money strings, spreadsheet dates and nested extraction payloads.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// currency symbol with grouped or plain digits, or comma-grouped digits alone; optional fraction
	reMoney = regexp.MustCompile(`^-?(?:[£$€]\s?-?(?:\d{1,3}(?:,\d{3})+|\d+)|\d{1,3}(?:,\d{3})*)(?:\.\d+)?$`)
	// plain decimal with a fractional part
	reBareDecimal = regexp.MustCompile(`^-?\d+\.\d+$`)
	// "075", "0123": identifiers, never amounts
	reLeadingZero = regexp.MustCompile(`^-?[£$€]?\s?-?0\d`)

	moneyStripper = strings.NewReplacer("£", "", "$", "", "€", "", ",", "", " ", "")
)

// IsMoneyCandidate reports whether s looks like an amount that Clean would rewrite.
func IsMoneyCandidate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || reLeadingZero.MatchString(s) {
		return false
	}
	return reMoney.MatchString(s) || reBareDecimal.MatchString(s)
}

// CanonicalMoney rounds a money-looking string to 2 decimal places.
// Whole amounts drop the fraction ("1,250.00" -> "1250"), others keep exactly two digits ("425.5" -> "425.50").
func CanonicalMoney(s string) (string, bool) {
	if !IsMoneyCandidate(s) {
		return s, false
	}
	d, err := decimal.NewFromString(moneyStripper.Replace(strings.TrimSpace(s)))
	if err != nil {
		return s, false
	}
	return FormatAmount(d), true
}

// FormatAmount applies the canonical money rendering to d.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}

// Clean walks maps and slices and rewrites every money-looking string.
// Everything else is returned unchanged. Clean(Clean(x)) equals Clean(x).
func Clean(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clean(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clean(val)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, val := range t {
			out[i] = CleanRecord(val)
		}
		return out
	case string:
		if s, ok := CanonicalMoney(t); ok {
			return s
		}
		return t
	default:
		return v
	}
}

// CleanRecord is Clean for a single record.
func CleanRecord(rec map[string]any) map[string]any {
	if rec == nil {
		return nil
	}
	return Clean(rec).(map[string]any)
}

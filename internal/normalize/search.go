package normalize

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var reNotNumeric = regexp.MustCompile(`[^\d.\-]`)

// NormalizeKey lowercases a key and drops everything that is not a letter or digit,
// so "Gross Pay", "gross_pay" and "GROSS-PAY" compare equal.
func NormalizeKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range k {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// FindValues returns every value stored under key at any depth of data.
// Map keys are visited in sorted order so results are stable.
func FindValues(data any, key string) []any {
	target := NormalizeKey(key)
	var out []any
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if NormalizeKey(k) == target {
					out = append(out, t[k])
				}
				walk(t[k])
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		case []map[string]any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(data)
	return out
}

// SumValues adds every value found under key. Values that do not parse as numbers are skipped;
// the second return is how many values contributed.
func SumValues(data any, key string) (decimal.Decimal, int) {
	total := decimal.Zero
	n := 0
	for _, v := range FindValues(data, key) {
		if d, ok := ToDecimal(v); ok {
			total = total.Add(d)
			n++
		}
	}
	return total, n
}

// ToDecimal parses numbers and number-looking strings ("£1,250.00", "75").
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case decimal.Decimal:
		return t, true
	case string:
		cleaned := reNotNumeric.ReplaceAllString(t, "")
		if cleaned == "" || cleaned == "-" || cleaned == "." {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(cleaned)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

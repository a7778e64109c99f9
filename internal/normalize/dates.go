package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// spreadsheet serials count 1900-02-29, which never existed, and start at 1
	serialOffsetDays = 2
	minSerial        = 2
	maxSerial        = 100000

	DateLayout = "2006-01-02"
)

var serialEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// day-first layouts win over US ordering: the documents are UK payroll
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/06",
	"2/1/06",
	"01/02/2006",
	"1/2/2006",
}

var textDateLayouts = []string{
	"2 January 2006",
	"02 January 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, 2 January 2006",
	"02.01.2006",
}

// DateFromSerial converts a spreadsheet date serial to a calendar date.
// Serials outside the plausible range are rejected.
func DateFromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || serial < minSerial || serial > maxSerial {
		return time.Time{}, false
	}
	days := int(math.Floor(serial)) - serialOffsetDays
	return serialEpoch.AddDate(0, 0, days), true
}

// ParseDate accepts serial numbers, numeric strings and common written dates.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case float64:
		return DateFromSerial(t)
	case float32:
		return DateFromSerial(float64(t))
	case int:
		return DateFromSerial(float64(t))
	case int64:
		return DateFromSerial(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return DateFromSerial(f)
	case string:
		return parseDateString(t)
	default:
		return time.Time{}, false
	}
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if strings.ContainsAny(s, "-/") {
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return truncateDay(d), true
			}
		}
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return DateFromSerial(f)
	}
	for _, layout := range textDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return truncateDay(d), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

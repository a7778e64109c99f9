package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// nullTime scans DATE and timestamp columns from both pgx (time.Time) and sqlite (text).
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(src any) error {
	n.Time, n.Valid = time.Time{}, false
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		n.Time, n.Valid = v, true
		return nil
	case []byte:
		return n.parse(string(v))
	case string:
		return n.parse(v)
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (n *nullTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("unparseable time %q", s)
}

func (n nullTime) ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// text scans TEXT, NUMERIC and UUID columns as strings.
type text struct {
	String string
	Valid  bool
}

func (t *text) Scan(src any) error {
	t.String, t.Valid = "", false
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		t.String, t.Valid = v, true
	case []byte:
		t.String, t.Valid = string(v), true
	case int64:
		t.String, t.Valid = fmt.Sprint(v), true
	case float64:
		t.String, t.Valid = fmt.Sprint(v), true
	case [16]byte:
		t.String, t.Valid = fmt.Sprintf("%x-%x-%x-%x-%x", v[0:4], v[4:6], v[6:8], v[8:10], v[10:16]), true
	default:
		return fmt.Errorf("unsupported text value %T", src)
	}
	return nil
}

func (t text) ptr() *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// nullable turns empty optional values into SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateOnly(t *time.Time) any {
	if t == nil {
		return nil
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

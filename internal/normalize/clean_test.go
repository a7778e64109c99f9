package normalize

import (
	"reflect"
	"testing"
)

func TestCanonicalMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"£1,250.00", "1250", true},
		{"$ 99.9", "99.90", true},
		{"£1250.00", "1250", true},
		{"$2500", "2500", true},
		{"£ 1250.50", "1250.50", true},
		{"€0123", "€0123", false},
		{"425.5", "425.50", true},
		{"100.50", "100.50", true},
		{"75", "75", true},
		{"3.14159", "3.14", true},
		{"-12.345", "-12.35", true},
		{"0.5", "0.50", true},
		{"12345678", "12345678", false},
		{"0123", "0123", false},
		{"AB123456C", "AB123456C", false},
		{"2025-05-07", "2025-05-07", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := CanonicalMoney(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("CanonicalMoney(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCleanRecursesAndPreservesNonCandidates(t *testing.T) {
	in := map[string]any{
		"records": []any{
			map[string]any{"Gross Pay": "£1,000.50", "Hours charged": "37.50", "Person Name": "Jane Doe", "Paid": true},
			map[string]any{"Gross Pay": 250.0, "Status": nil},
		},
		"Agency Name": map[string]any{"Total": "2,000"},
	}
	want := map[string]any{
		"records": []any{
			map[string]any{"Gross Pay": "1000.50", "Hours charged": "37.50", "Person Name": "Jane Doe", "Paid": true},
			map[string]any{"Gross Pay": 250.0, "Status": nil},
		},
		"Agency Name": map[string]any{"Total": "2000"},
	}
	got := Clean(in)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Clean mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []any{
		"£1,250.00",
		"425.5",
		"-0.004",
		map[string]any{"a": []any{"1,000", "12.3456", map[string]any{"b": "€ 7.10"}}, "c": 3.0},
		[]any{"75", "abc", nil, false, "9,999,999.999"},
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("not idempotent for %#v: %#v vs %#v", in, once, twice)
		}
	}
}

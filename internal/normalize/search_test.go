package normalize

import "testing"

func TestNormalizeKey(t *testing.T) {
	for _, k := range []string{"Gross Pay", "gross_pay", "GROSS-PAY", " grossPay "} {
		if NormalizeKey(k) != "grosspay" {
			t.Errorf("NormalizeKey(%q) = %q", k, NormalizeKey(k))
		}
	}
}

func TestSumValuesAcrossRecords(t *testing.T) {
	payload := map[string]any{
		"records": []any{
			map[string]any{"Gross Pay": "100.00"},
			map[string]any{"Gross Pay": "250.50"},
			map[string]any{"gross_pay": "75"},
			map[string]any{"Gross Pay": ""},
		},
	}
	total, n := SumValues(payload, "Gross Pay")
	if n != 3 {
		t.Fatalf("expected 3 contributing values, got %d", n)
	}
	if got := total.StringFixed(2); got != "425.50" {
		t.Fatalf("total = %s, want 425.50", got)
	}
}

func TestFindValuesNested(t *testing.T) {
	payload := map[string]any{
		"summary": map[string]any{"Agency": map[string]any{"Gross Pay": 10.0}},
		"records": []any{map[string]any{"Gross Pay": "5"}},
	}
	vals := FindValues(payload, "grosspay")
	if len(vals) != 2 {
		t.Fatalf("expected 2 values, got %d (%v)", len(vals), vals)
	}
}

package normalize

import "testing"

func TestDateFromSerial(t *testing.T) {
	d, ok := DateFromSerial(45784)
	if !ok {
		t.Fatalf("serial 45784 rejected")
	}
	if got := FormatDate(d); got != "2025-05-07" {
		t.Fatalf("DateFromSerial(45784) = %s, want 2025-05-07", got)
	}
	if _, ok := DateFromSerial(1); ok {
		t.Fatalf("serial below range accepted")
	}
	if _, ok := DateFromSerial(250000); ok {
		t.Fatalf("serial above range accepted")
	}
}

func TestParseDate(t *testing.T) {
	cases := map[any]string{
		"2025-05-07":  "2025-05-07",
		"07/05/2025":  "2025-05-07",
		"7/5/2025":    "2025-05-07",
		"45784":       "2025-05-07",
		45784.0:       "2025-05-07",
		"7 May 2025":  "2025-05-07",
		"07.05.2025":  "2025-05-07",
		"12/25/2025":  "2025-12-25",
	}
	for in, want := range cases {
		d, ok := ParseDate(in)
		if !ok {
			t.Errorf("ParseDate(%v) failed", in)
			continue
		}
		if got := FormatDate(d); got != want {
			t.Errorf("ParseDate(%v) = %s, want %s", in, got, want)
		}
	}
	for _, bad := range []any{"", "next friday", "31/31/2025", nil, true} {
		if _, ok := ParseDate(bad); ok {
			t.Errorf("ParseDate(%v) should fail", bad)
		}
	}
}

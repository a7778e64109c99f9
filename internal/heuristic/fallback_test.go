package heuristic

import "testing"

func TestExtractFallbackLabelledTimesheet(t *testing.T) {
	text := "ACME RECRUITMENT LTD\n12 High Street\nTimesheet\n" +
		"Employee Name: Jane Doe\n" +
		"Week Ending: 07/05/2025\n" +
		"Total Hours: 37.5\n" +
		"Pay Rate: £15.50\n" +
		"Gross Pay: £1,581.25\n" +
		"Agency: Archer Resourcing Ltd\n"

	rec := NewExtractor(nil).ExtractFallback(text)

	want := map[string]any{
		KeyEmployeeName: "Jane Doe",
		KeyWeekEnding:   "2025-05-07",
		KeyHoursWorked:  "37.5",
		KeyPayRate:      "15.50",
		KeyGrossPay:     "1581.25",
		KeyAgencyName:   "Archer Resourcing Ltd",
		KeyFallbackMode: true,
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %#v, want %#v", k, rec[k], v)
		}
	}
}

func TestExtractFallbackSkipsHeaderLines(t *testing.T) {
	text := "REMITTANCE ADVICE\nTime Sheet\nJohn Smith\nHours: 40\n£600.00\n"

	rec := NewExtractor(nil).ExtractFallback(text)

	if rec[KeyEmployeeName] != "John Smith" {
		t.Fatalf("employee_name = %#v", rec[KeyEmployeeName])
	}
	if rec[KeyHoursWorked] != "40" {
		t.Fatalf("hours_worked = %#v", rec[KeyHoursWorked])
	}
	if rec[KeyGrossPay] != "600.00" {
		t.Fatalf("gross_pay = %#v", rec[KeyGrossPay])
	}
	if rec[KeyPayRate] != ZeroAmount {
		t.Fatalf("pay_rate = %#v, want sentinel", rec[KeyPayRate])
	}
	if rec[KeyAgencyName] != nil {
		t.Fatalf("agency_name = %#v, want nil", rec[KeyAgencyName])
	}
}

func TestExtractFallbackEmptyText(t *testing.T) {
	rec := NewExtractor(nil).ExtractFallback("")
	if rec == nil {
		t.Fatalf("expected a record")
	}
	if rec[KeyEmployeeName] != UnknownEmployee || rec[KeyGrossPay] != ZeroAmount || rec[KeyWeekEnding] != nil {
		t.Fatalf("unexpected sentinels %#v", rec)
	}
	if rec[KeyFallbackMode] != true {
		t.Fatalf("fallback flag missing")
	}
}

func TestAcceptName(t *testing.T) {
	cases := map[string]bool{
		"Jane Doe":         true,
		"Jane Doe Week":    true,
		"Time Sheet":       false,
		"Jane Week Ending": false,
		"Priya":            true,
	}
	for in, ok := range cases {
		if _, got := acceptName(in); got != ok {
			t.Errorf("acceptName(%q) = %v, want %v", in, got, ok)
		}
	}
}

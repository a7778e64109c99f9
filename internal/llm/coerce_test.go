package llm

import (
	"reflect"
	"strings"
	"testing"

	"github.com/joseph-ayodele/payroll-intake/constants"
)

func TestCoerceRecordsWrapsBareObject(t *testing.T) {
	obj := map[string]any{"employee_name": "Jane Doe", "gross_pay": "100.00"}
	records, payload, drift := CoerceRecords(obj)
	if !reflect.DeepEqual(records, []RawRecord{obj}) {
		t.Fatalf("records = %#v, want [%#v]", records, obj)
	}
	if got := payload[RecordsKey].([]any); len(got) != 1 {
		t.Fatalf("payload records = %#v", got)
	}
	if len(drift) != 1 {
		t.Fatalf("expected one drift note, got %v", drift)
	}
}

func TestCoerceRecordsKeepsSummaryBlocks(t *testing.T) {
	in := map[string]any{
		"records":     []any{map[string]any{"a": "1"}, "junk", map[string]any{"a": "2"}},
		"Agency Name": map[string]any{"Archer": map[string]any{}},
	}
	records, payload, drift := CoerceRecords(in)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if _, ok := payload["Agency Name"]; !ok {
		t.Fatalf("summary block lost")
	}
	if len(drift) != 1 || !strings.Contains(drift[0], "records[1]") {
		t.Fatalf("unexpected drift %v", drift)
	}
}

func TestDecodeResponse(t *testing.T) {
	out, err := DecodeResponse(constants.KindTimesheet, "```JSON\n{\"records\": {\"employee_name\": \"A\"}, \"total\": 3}\n```")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Records) != 1 || out.Records[0]["employee_name"] != "A" {
		t.Fatalf("records = %#v", out.Records)
	}
	if !reflect.DeepEqual(out.KeyOrder, []string{"records", "total"}) {
		t.Fatalf("key order = %v", out.KeyOrder)
	}
	if len(out.Drift) < 2 {
		t.Fatalf("expected schema and coercion drift, got %v", out.Drift)
	}

	if _, err := DecodeResponse(constants.KindTimesheet, "not json"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValidResponseHasNoDrift(t *testing.T) {
	out, err := DecodeResponse(constants.KindAgencyBulk, `{"records":[{"agency_name":"Archer","payment_terms_days":30}]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Drift) != 0 {
		t.Fatalf("unexpected drift %v", out.Drift)
	}
}

func TestBuildSystemPromptPerKind(t *testing.T) {
	for _, kind := range []constants.DocumentKind{
		constants.KindRemittance, constants.KindTimesheet, constants.KindEmployeeBulk, constants.KindAgencyBulk,
	} {
		p := BuildSystemPrompt(kind)
		for _, k := range RecordKeys(kind) {
			if !strings.Contains(p, `"`+k+`"`) {
				t.Fatalf("%s prompt missing key %q", kind, k)
			}
		}
		if !strings.Contains(p, "umbrella, PAYE or payroll") {
			t.Fatalf("%s prompt missing employment mapping", kind)
		}
	}
	if n := len(RemittanceKeys); n != 24 {
		t.Fatalf("remittance schema has %d keys, want 24", n)
	}
	if n := len(EmployeeBulkKeys); n != 30 {
		t.Fatalf("employee schema has %d keys, want 30", n)
	}
}

package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/llm"
	"github.com/joseph-ayodele/payroll-intake/internal/normalize"
	"github.com/joseph-ayodele/payroll-intake/internal/records"
)

// ManualTotalKey holds the cross-record gross pay total in the remittance summary.
const ManualTotalKey = "Manual Total Gross Pays"

// summaryKey receives the total when the reply has no summary object to attach it to.
const summaryKey = "summary"

// "Others - Misc" is an aggregate row; "Otherside Recruitment" is a real agency.
var reAggregateAgency = regexp.MustCompile(`(?i)\bothers\b`)

// survivor is a record that passed the business filters, with its index in the extraction.
type survivor struct {
	index int
	raw   map[string]any
}

// filterRecords drops remittance aggregate rows and fills empty agencies from the summary.
// Other kinds pass through unchanged.
func filterRecords(kind constants.DocumentKind, recs []llm.RawRecord, summaryAgency string) ([]survivor, []Outcome) {
	survivors := make([]survivor, 0, len(recs))
	var filtered []Outcome
	aliases := records.Aliases(kind)
	for i, rec := range recs {
		if rec == nil {
			continue
		}
		if kind != constants.KindRemittance {
			survivors = append(survivors, survivor{index: i, raw: rec})
			continue
		}

		agency := records.LookupString(rec, aliases[records.FieldAgencyName])
		if reAggregateAgency.MatchString(agency) {
			filtered = append(filtered, Outcome{
				Index:  i,
				Status: constants.OutcomeFiltered,
				Reason: fmt.Sprintf("agency %q is an aggregate row", agency),
			})
			continue
		}
		person := strings.ToLower(records.LookupString(rec, aliases[records.FieldEmployeeName]))
		if person == "other" || person == "others" {
			filtered = append(filtered, Outcome{
				Index:  i,
				Status: constants.OutcomeFiltered,
				Reason: "person is an aggregate row",
			})
			continue
		}
		if agency == "" && summaryAgency != "" {
			rec = withAgency(rec, aliases[records.FieldAgencyName], summaryAgency)
		}
		survivors = append(survivors, survivor{index: i, raw: rec})
	}
	return survivors, filtered
}

// withAgency copies rec and sets the first existing agency key, or "Agency" when there is none.
func withAgency(rec map[string]any, aliases []string, name string) map[string]any {
	out := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	_, key, _ := records.Lookup(presentKeys(rec), aliases)
	if key == "" {
		key = "Agency"
	}
	out[key] = name
	return out
}

// presentKeys marks every key as non-empty so Lookup reports which alias exists at all.
func presentKeys(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k := range rec {
		out[k] = true
	}
	return out
}

// summaryAgency reads the agency name from the remittance summary block:
// either {"Agency Name": {"<name>": {...totals}}} or {"Agency Name": "<name>"}.
func summaryAgency(payload map[string]any) string {
	var name string
	switch v := payload[llm.RemittanceSummaryKey].(type) {
	case string:
		name = strings.TrimSpace(v)
	case map[string]any:
		if len(v) == 1 {
			for k := range v {
				name = strings.TrimSpace(k)
			}
		}
	}
	if reAggregateAgency.MatchString(name) || strings.HasPrefix(name, "<") {
		return ""
	}
	return name
}

// cleanPayload normalizes the non-record keys and swaps in the surviving records.
func cleanPayload(payload map[string]any, survivors []survivor) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		if k == llm.RecordsKey {
			continue
		}
		out[k] = normalize.Clean(v)
	}
	out[llm.RecordsKey] = rawsOf(survivors)
	return out
}

func rawsOf(survivors []survivor) []any {
	out := make([]any, len(survivors))
	for i, s := range survivors {
		out[i] = s.raw
	}
	return out
}

// attachManualTotal writes total into the first non-records top-level key of payload.
// A summary shaped {"<agency>": {...}} receives it inside the agency object.
// Returns the key it was attached to.
func attachManualTotal(payload map[string]any, keyOrder []string, total string) string {
	for _, k := range keyOrder {
		if k == llm.RecordsKey {
			continue
		}
		v, ok := payload[k]
		if !ok {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		if len(m) == 1 {
			for _, inner := range m {
				if im, ok := inner.(map[string]any); ok {
					im[ManualTotalKey] = total
					return k
				}
			}
		}
		m[ManualTotalKey] = total
		return k
	}
	if m, ok := payload[summaryKey].(map[string]any); ok {
		m[ManualTotalKey] = total
	} else {
		payload[summaryKey] = map[string]any{ManualTotalKey: total}
	}
	return summaryKey
}

package constants

import "strings"

// DocumentKind selects the extraction schema and the business rules applied to a document.
type DocumentKind string

const (
	KindTimesheet    DocumentKind = "timesheet"
	KindRemittance   DocumentKind = "remittance"
	KindEmployeeBulk DocumentKind = "employee_bulk"
	KindAgencyBulk   DocumentKind = "agency_bulk"
)

var allKinds = []DocumentKind{KindTimesheet, KindRemittance, KindEmployeeBulk, KindAgencyBulk}

// DocumentKinds lists the kinds as plain strings, e.g. for CLI help.
func DocumentKinds() []string {
	out := make([]string, len(allKinds))
	for i, k := range allKinds {
		out[i] = string(k)
	}
	return out
}

// ParseDocumentKind accepts the canonical names plus a few spellings seen in upload forms.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer("-", "_", " ", "_").Replace(n)
	switch n {
	case "timesheet", "timesheets":
		return KindTimesheet, true
	case "remittance", "remittances":
		return KindRemittance, true
	case "employee_bulk", "employees", "bulk_employees":
		return KindEmployeeBulk, true
	case "agency_bulk", "agencies", "bulk_agencies":
		return KindAgencyBulk, true
	}
	return "", false
}

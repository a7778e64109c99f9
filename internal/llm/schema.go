package llm

import (
	"github.com/joseph-ayodele/payroll-intake/constants"
)

// RemittanceKeys is the fixed remittance record shape, spelled exactly as the agencies' reports are keyed.
var RemittanceKeys = []string{
	"Agency", "Person Name", "Shift details", "Start data", "Time sheet number", "Hours charged",
	"Pay Rate", "Gross Pay", "Employe type (LTD/PAYE)", "Total Received", "Customer Code",
	"Suplier Code", "Shift", "Remittance number", "Remittance Data", "Status", "Remittance Status",
	"Primo Status", "Shift Data", "Invoice Status", "Coda Agency Reference", "Code Reference",
	"Invoice Description", "PP Reference",
}

// RemittanceSummaryKey is the document-level summary block requested alongside remittance records.
const RemittanceSummaryKey = "Agency Name"

var TimesheetKeys = []string{
	"employee_name", "agency_name", "client_name", "timesheet_number", "period_start", "week_ending",
	"hours_worked", "pay_rate", "overtime_hours", "overtime_rate", "gross_pay", "employment_type",
	"shift_details", "notes",
}

var EmployeeBulkKeys = []string{
	"first_name", "last_name", "title", "date_of_birth", "national_insurance_number", "email", "phone",
	"address_line1", "address_line2", "city", "postcode", "country", "employment_type", "job_title",
	"department", "start_date", "end_date", "pay_rate", "pay_frequency", "tax_code", "hours_per_week",
	"agency_name", "bank_name", "account_name", "account_number", "sort_code", "iban",
	"emergency_contact_name", "emergency_contact_phone", "notes",
}

var AgencyBulkKeys = []string{
	"agency_name", "contact_name", "contact_email", "contact_phone", "address", "city", "postcode",
	"country", "company_number", "vat_number", "payment_terms_days", "payment_method", "currency",
	"bank_name", "account_name", "account_number", "sort_code", "iban", "notes",
}

// RecordKeys returns the exact record field names requested for kind.
func RecordKeys(kind constants.DocumentKind) []string {
	switch kind {
	case constants.KindRemittance:
		return RemittanceKeys
	case constants.KindTimesheet:
		return TimesheetKeys
	case constants.KindEmployeeBulk:
		return EmployeeBulkKeys
	case constants.KindAgencyBulk:
		return AgencyBulkKeys
	default:
		return nil
	}
}

// BuildOutputShape is the literal JSON template embedded in the prompt: every key present, values empty.
func BuildOutputShape(kind constants.DocumentKind) map[string]any {
	rec := make(map[string]any, len(RecordKeys(kind)))
	for _, k := range RecordKeys(kind) {
		rec[k] = ""
	}
	out := map[string]any{RecordsKey: []any{rec}}
	if kind == constants.KindRemittance {
		out[RemittanceSummaryKey] = map[string]any{
			"<agency_name>": map[string]any{
				"Total Gross Pay":   "",
				"VAT Rate":          "",
				"Fee":               "",
				"Total Amount Paid": "",
			},
		}
	}
	return out
}

// BuildResponseSchema is the JSON schema a well-formed reply satisfies. Violations are treated
// as schema drift: logged and coerced, never fatal.
func BuildResponseSchema(kind constants.DocumentKind) map[string]any {
	props := make(map[string]any, len(RecordKeys(kind)))
	for _, k := range RecordKeys(kind) {
		props[k] = scalarProp()
	}
	properties := map[string]any{
		RecordsKey: map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":       "object",
				"properties": props,
			},
		},
	}
	if kind == constants.KindRemittance {
		properties[RemittanceSummaryKey] = map[string]any{"type": "object"}
	}
	return map[string]any{
		"type":       "object",
		"required":   []string{RecordsKey},
		"properties": properties,
	}
}

func scalarProp() map[string]any {
	return map[string]any{
		"type": []string{"string", "number", "integer", "boolean", "null"},
	}
}

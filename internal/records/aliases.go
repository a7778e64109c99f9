// Package records narrows untyped extraction output into typed per-kind records.
package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/normalize"
)

// Field is a logical field read from a raw record.
type Field string

const (
	FieldEmployeeName   Field = "employee_name"
	FieldFirstName      Field = "first_name"
	FieldLastName       Field = "last_name"
	FieldAgencyName     Field = "agency_name"
	FieldPeriodEnd      Field = "period_end"
	FieldHours          Field = "hours"
	FieldPayRate        Field = "pay_rate"
	FieldGrossPay       Field = "gross_pay"
	FieldReference      Field = "reference"
	FieldEmploymentType Field = "employment_type"
	FieldRemittanceNo   Field = "remittance_number"
	FieldTotalReceived  Field = "total_received"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldDateOfBirth    Field = "date_of_birth"
	FieldNINumber       Field = "ni_number"
	FieldJobTitle       Field = "job_title"
	FieldStartDate      Field = "start_date"
	FieldAddress        Field = "address"
	FieldPostcode       Field = "postcode"
	FieldBankName       Field = "bank_name"
	FieldAccountNumber  Field = "account_number"
	FieldSortCode       Field = "sort_code"
	FieldContactName    Field = "contact_name"
	FieldVATNumber      Field = "vat_number"
	FieldPaymentTerms   Field = "payment_terms"
)

// AliasTable lists, per field, the raw keys tried in priority order.
type AliasTable map[Field][]string

var lineAliases = AliasTable{
	FieldEmployeeName:   {"employee_name", "Person Name", "employee", "worker_name", "candidate_name", "full_name", "name"},
	FieldAgencyName:     {"agency_name", "Agency", "agency", "supplier", "supplier_name"},
	FieldPeriodEnd:      {"week_ending", "period_end", "week_end", "Shift Data", "Start data", "date", "Remittance Data"},
	FieldHours:          {"hours_worked", "Hours charged", "hours", "total_hours"},
	FieldPayRate:        {"pay_rate", "Pay Rate", "hourly_rate", "rate"},
	FieldGrossPay:       {"gross_pay", "Gross Pay", "gross", "total_pay", "amount"},
	FieldReference:      {"timesheet_number", "Time sheet number", "reference", "PP Reference", "Code Reference"},
	FieldEmploymentType: {"employment_type", "Employe type (LTD/PAYE)", "employee_type", "type"},
	FieldRemittanceNo:   {"Remittance number", "remittance_number", "remittance_no"},
	FieldTotalReceived:  {"Total Received", "total_received", "amount_paid"},
}

var employeeAliases = AliasTable{
	FieldFirstName:      {"first_name", "forename", "given_name"},
	FieldLastName:       {"last_name", "surname", "family_name"},
	FieldEmployeeName:   {"full_name", "employee_name", "name"},
	FieldEmail:          {"email", "email_address"},
	FieldPhone:          {"phone", "mobile", "phone_number", "telephone"},
	FieldDateOfBirth:    {"date_of_birth", "dob", "birth_date"},
	FieldNINumber:       {"national_insurance_number", "ni_number", "nino", "ni"},
	FieldEmploymentType: {"employment_type", "employee_type", "contract_type", "type"},
	FieldJobTitle:       {"job_title", "position", "role"},
	FieldStartDate:      {"start_date", "date_started"},
	FieldPayRate:        {"pay_rate", "hourly_rate", "rate"},
	FieldAddress:        {"address_line1", "address", "street"},
	FieldPostcode:       {"postcode", "post_code", "zip"},
	FieldAgencyName:     {"agency_name", "agency"},
	FieldBankName:       {"bank_name", "bank"},
	FieldAccountNumber:  {"account_number", "account_no"},
	FieldSortCode:       {"sort_code", "sortcode"},
}

var agencyAliases = AliasTable{
	FieldAgencyName:    {"agency_name", "name", "agency", "company_name"},
	FieldContactName:   {"contact_name", "contact"},
	FieldEmail:         {"contact_email", "email"},
	FieldPhone:         {"contact_phone", "phone", "telephone"},
	FieldAddress:       {"address", "address_line1"},
	FieldVATNumber:     {"vat_number", "vat", "vat_no"},
	FieldPaymentTerms:  {"payment_terms_days", "payment_terms", "terms"},
	FieldBankName:      {"bank_name", "bank"},
	FieldAccountNumber: {"account_number", "account_no"},
	FieldSortCode:      {"sort_code", "sortcode"},
}

// Aliases returns the alias table used for kind.
func Aliases(kind constants.DocumentKind) AliasTable {
	switch kind {
	case constants.KindTimesheet, constants.KindRemittance:
		return lineAliases
	case constants.KindEmployeeBulk:
		return employeeAliases
	case constants.KindAgencyBulk:
		return agencyAliases
	default:
		return nil
	}
}

// Lookup returns the first non-empty value stored under one of aliases.
// Exact keys are tried before keys that only match after NormalizeKey.
func Lookup(raw map[string]any, aliases []string) (any, string, bool) {
	for _, a := range aliases {
		if v, ok := raw[a]; ok && !isEmpty(v) {
			return v, a, true
		}
	}
	if len(raw) == 0 {
		return nil, "", false
	}
	byNorm := make(map[string]string, len(raw))
	for k := range raw {
		n := normalize.NormalizeKey(k)
		if prev, ok := byNorm[n]; !ok || k < prev {
			byNorm[n] = k
		}
	}
	for _, a := range aliases {
		if k, ok := byNorm[normalize.NormalizeKey(a)]; ok && !isEmpty(raw[k]) {
			return raw[k], k, true
		}
	}
	return nil, "", false
}

// LookupString is Lookup rendered as trimmed text.
func LookupString(raw map[string]any, aliases []string) string {
	v, _, ok := Lookup(raw, aliases)
	if !ok {
		return ""
	}
	return Text(v)
}

// Text renders scalar values the way they would appear in a document.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

package records

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/normalize"
)

const (
	maxNameLength       = 200
	minAgencyNameLength = 2
)

var reLeadingInt = regexp.MustCompile(`\d+`)

// Narrow reads a raw record through the alias table of kind and validates the essential fields.
// A failed validation is an AppError with code VALIDATION_ERROR.
func Narrow(kind constants.DocumentKind, raw map[string]any) (Record, error) {
	switch kind {
	case constants.KindTimesheet:
		ts := narrowLine(raw, lineAliases)
		if err := validateLine(ts); err != nil {
			return nil, err
		}
		return ts, nil
	case constants.KindRemittance:
		r := Remittance{
			Timesheet:        narrowLine(raw, lineAliases),
			RemittanceNumber: LookupString(raw, lineAliases[FieldRemittanceNo]),
			TotalReceived:    amount(raw, lineAliases[FieldTotalReceived], ""),
		}
		if err := validateLine(r.Timesheet); err != nil {
			return nil, err
		}
		return r, nil
	case constants.KindEmployeeBulk:
		return narrowEmployee(raw)
	case constants.KindAgencyBulk:
		return narrowAgency(raw)
	default:
		return nil, common.NewAppError("INVALID_INPUT", fmt.Sprintf("unknown document kind %q", kind), common.ErrInvalidInput)
	}
}

func narrowLine(raw map[string]any, t AliasTable) Timesheet {
	ts := Timesheet{
		EmployeeName: LookupString(raw, t[FieldEmployeeName]),
		AgencyName:   LookupString(raw, t[FieldAgencyName]),
		PeriodEnd:    date(raw, t[FieldPeriodEnd]),
		Hours:        amount(raw, t[FieldHours], "0"),
		PayRate:      amount(raw, t[FieldPayRate], "0"),
		GrossPay:     amount(raw, t[FieldGrossPay], ""),
		Reference:    LookupString(raw, t[FieldReference]),
	}
	ts.EmploymentType = employmentType(LookupString(raw, t[FieldEmploymentType]))
	return ts
}

func validateLine(ts Timesheet) error {
	v := common.NewValidator().
		Field(string(FieldEmployeeName), ts.EmployeeName, common.Required, common.MaxLen(maxNameLength)).
		Field(string(FieldGrossPay), ts.GrossPay, common.Required, isDecimal).
		Field(string(FieldHours), ts.Hours, isDecimal).
		Field(string(FieldPayRate), ts.PayRate, isDecimal)
	return common.ValidateAndReturnError(v)
}

func narrowEmployee(raw map[string]any) (Record, error) {
	t := employeeAliases
	e := EmployeeRow{
		FirstName:     LookupString(raw, t[FieldFirstName]),
		LastName:      LookupString(raw, t[FieldLastName]),
		Email:         LookupString(raw, t[FieldEmail]),
		Phone:         LookupString(raw, t[FieldPhone]),
		DateOfBirth:   date(raw, t[FieldDateOfBirth]),
		NINumber:      strings.ToUpper(strings.ReplaceAll(LookupString(raw, t[FieldNINumber]), " ", "")),
		JobTitle:      LookupString(raw, t[FieldJobTitle]),
		StartDate:     date(raw, t[FieldStartDate]),
		PayRate:       amount(raw, t[FieldPayRate], ""),
		Address:       LookupString(raw, t[FieldAddress]),
		Postcode:      strings.ToUpper(LookupString(raw, t[FieldPostcode])),
		AgencyName:    LookupString(raw, t[FieldAgencyName]),
		BankName:      LookupString(raw, t[FieldBankName]),
		AccountNumber: LookupString(raw, t[FieldAccountNumber]),
		SortCode:      LookupString(raw, t[FieldSortCode]),
	}
	e.EmploymentType = employmentType(LookupString(raw, t[FieldEmploymentType]))
	if e.FirstName == "" && e.LastName == "" {
		e.FirstName, e.LastName = splitName(LookupString(raw, t[FieldEmployeeName]))
	}

	v := common.NewValidator().
		Field(string(FieldFirstName), e.FirstName, common.Required, common.MaxLen(maxNameLength)).
		Field(string(FieldLastName), e.LastName, common.Required, common.MaxLen(maxNameLength))
	if e.PayRate != "" {
		v.Field(string(FieldPayRate), e.PayRate, isDecimal)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	return e, nil
}

func narrowAgency(raw map[string]any) (Record, error) {
	t := agencyAliases
	a := AgencyRow{
		Name:          LookupString(raw, t[FieldAgencyName]),
		ContactName:   LookupString(raw, t[FieldContactName]),
		ContactEmail:  LookupString(raw, t[FieldEmail]),
		ContactPhone:  LookupString(raw, t[FieldPhone]),
		Address:       LookupString(raw, t[FieldAddress]),
		VATNumber:     LookupString(raw, t[FieldVATNumber]),
		BankName:      LookupString(raw, t[FieldBankName]),
		AccountNumber: LookupString(raw, t[FieldAccountNumber]),
		SortCode:      LookupString(raw, t[FieldSortCode]),
	}
	if m := reLeadingInt.FindString(LookupString(raw, t[FieldPaymentTerms])); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			a.PaymentTerms = &n
		}
	}
	v := common.NewValidator().
		Field(string(FieldAgencyName), a.Name, common.Required, common.MinLen(minAgencyNameLength), common.MaxLen(maxNameLength))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	return a, nil
}

// amount renders a money or quantity field canonically; def is used when the field is absent.
func amount(raw map[string]any, aliases []string, def string) string {
	s := LookupString(raw, aliases)
	if s == "" {
		return def
	}
	if c, ok := normalize.CanonicalMoney(s); ok {
		return c
	}
	return s
}

func date(raw map[string]any, aliases []string) *time.Time {
	v, _, ok := Lookup(raw, aliases)
	if !ok {
		return nil
	}
	d, ok := normalize.ParseDate(v)
	if !ok {
		return nil
	}
	return &d
}

// employmentType keeps unrecognised labels verbatim so nothing is silently lost.
func employmentType(s string) string {
	if s == "" {
		return ""
	}
	if et, ok := constants.CanonicalEmploymentType(s); ok {
		return string(et)
	}
	return s
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func isDecimal(fieldName string, value interface{}) *common.ValidationError {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return &common.ValidationError{Field: fieldName, Value: value, Message: "must be a number"}
	}
	return nil
}

package records

import (
	"time"

	"github.com/joseph-ayodele/payroll-intake/constants"
)

// Record is one narrowed entity. The concrete type is decided by the document kind.
type Record interface {
	Kind() constants.DocumentKind
	DisplayName() string
}

// Timesheet is one worked period for one person.
type Timesheet struct {
	EmployeeName   string
	AgencyName     string
	PeriodEnd      *time.Time
	Hours          string
	PayRate        string
	GrossPay       string
	Reference      string
	EmploymentType string
}

func (t Timesheet) Kind() constants.DocumentKind { return constants.KindTimesheet }
func (t Timesheet) DisplayName() string          { return t.EmployeeName }

// Remittance is one paid line of an agency remittance advice.
type Remittance struct {
	Timesheet
	RemittanceNumber string
	TotalReceived    string
}

func (r Remittance) Kind() constants.DocumentKind { return constants.KindRemittance }

// EmployeeRow is one row of a bulk employee import.
type EmployeeRow struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	DateOfBirth    *time.Time
	NINumber       string
	EmploymentType string
	JobTitle       string
	StartDate      *time.Time
	PayRate        string
	Address        string
	Postcode       string
	AgencyName     string
	BankName       string
	AccountNumber  string
	SortCode       string
}

func (e EmployeeRow) Kind() constants.DocumentKind { return constants.KindEmployeeBulk }
func (e EmployeeRow) DisplayName() string          { return joinName(e.FirstName, e.LastName) }

// AgencyRow is one row of a bulk agency import.
type AgencyRow struct {
	Name          string
	ContactName   string
	ContactEmail  string
	ContactPhone  string
	Address       string
	VATNumber     string
	PaymentTerms  *int
	BankName      string
	AccountNumber string
	SortCode      string
}

func (a AgencyRow) Kind() constants.DocumentKind { return constants.KindAgencyBulk }
func (a AgencyRow) DisplayName() string          { return a.Name }

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

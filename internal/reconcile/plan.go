package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/entity"
	"github.com/joseph-ayodele/payroll-intake/internal/heuristic"
	"github.com/joseph-ayodele/payroll-intake/internal/match"
	"github.com/joseph-ayodele/payroll-intake/internal/normalize"
	"github.com/joseph-ayodele/payroll-intake/internal/records"
)

// intent is the planned store write for one surviving record.
// err is set when the record could not be narrowed; nothing is written for it.
type intent struct {
	index      int
	record     records.Record
	employee   *entity.Employee
	agency     *entity.Agency
	agencyRule match.Rule
	err        error
}

// invoiceEffect is a draft invoice requested for a created timesheet.
// outcome indexes the slice returned by execute.
type invoiceEffect struct {
	outcome int
	invoice entity.Invoice
}

// plan narrows every survivor and matches it against the candidates. It performs no writes.
func (e *Engine) plan(req Request, survivors []survivor, employees []entity.Employee, agencies []entity.Agency, fallback bool) []intent {
	intents := make([]intent, 0, len(survivors))
	for _, s := range survivors {
		it := intent{index: s.index}
		rec, err := records.Narrow(req.Kind, s.raw)
		if err != nil {
			it.err = err
			intents = append(intents, it)
			continue
		}
		it.record = rec

		switch r := rec.(type) {
		case records.Timesheet:
			it.employee, it.agency, it.agencyRule = e.matchLine(r, employees, agencies)
		case records.Remittance:
			it.employee, it.agency, it.agencyRule = e.matchLine(r.Timesheet, employees, agencies)
		case records.EmployeeRow:
			if fallback && r.DisplayName() == heuristic.UnknownEmployee {
				it.err = errNoEmployeeFound
			}
			if r.AgencyName != "" {
				it.agency, it.agencyRule = e.Matcher.MatchAgency(r.AgencyName, agencies)
			}
		}
		intents = append(intents, it)
	}
	return intents
}

func (e *Engine) matchLine(ts records.Timesheet, employees []entity.Employee, agencies []entity.Agency) (*entity.Employee, *entity.Agency, match.Rule) {
	var emp *entity.Employee
	if ts.EmployeeName != heuristic.UnknownEmployee {
		emp = e.Matcher.MatchEmployee(ts.EmployeeName, employees)
	}
	if ts.AgencyName == "" {
		return emp, nil, match.RuleNone
	}
	ag, rule := e.Matcher.MatchAgency(ts.AgencyName, agencies)
	return emp, ag, rule
}

// planInvoices requests a draft invoice for every created timesheet whose matched employee
// belongs to at least one agency.
func planInvoices(req Request, intents []intent, outcomes []Outcome, ratio decimal.Decimal) []invoiceEffect {
	var effects []invoiceEffect
	for i, it := range intents {
		o := outcomes[i]
		if o.Status != constants.OutcomeCreated || o.EntityType != EntityTimesheet {
			continue
		}
		if it.employee == nil || len(it.employee.AgencyIDs) == 0 {
			continue
		}
		ts := lineOf(it.record)
		gross, ok := normalize.ToDecimal(ts.GrossPay)
		if !ok {
			continue
		}
		effects = append(effects, invoiceEffect{
			outcome: i,
			invoice: entity.Invoice{
				CompanyID:   req.CompanyID,
				AgencyID:    invoiceAgency(it.employee, it.agency),
				EmployeeID:  it.employee.ID,
				TimesheetID: o.EntityID,
				GrossAmount: normalize.FormatAmount(gross),
				NetAmount:   normalize.FormatAmount(gross.Mul(ratio)),
				Status:      constants.InvoiceStatusDraft,
			},
		})
	}
	return effects
}

// invoiceAgency prefers the matched agency when the employee is linked to it.
func invoiceAgency(emp *entity.Employee, ag *entity.Agency) string {
	if ag != nil {
		for _, id := range emp.AgencyIDs {
			if id == ag.ID {
				return id
			}
		}
	}
	return emp.AgencyIDs[0]
}

func lineOf(rec records.Record) records.Timesheet {
	switch r := rec.(type) {
	case records.Timesheet:
		return r
	case records.Remittance:
		return r.Timesheet
	default:
		return records.Timesheet{}
	}
}

func timesheetEntity(req Request, it intent, fallback bool) entity.Timesheet {
	line := lineOf(it.record)
	ts := entity.Timesheet{
		CompanyID:      req.CompanyID,
		EmployeeName:   line.EmployeeName,
		AgencyName:     optional(line.AgencyName),
		PeriodEnd:      line.PeriodEnd,
		HoursWorked:    line.Hours,
		PayRate:        line.PayRate,
		GrossPay:       line.GrossPay,
		Reference:      optional(line.Reference),
		EmploymentType: optional(line.EmploymentType),
		Source:         constants.SourceTimesheetUpload,
		FallbackMode:   fallback,
	}
	if r, ok := it.record.(records.Remittance); ok {
		ts.Source = constants.SourceRemittanceUpload
		if ts.Reference == nil {
			ts.Reference = optional(r.RemittanceNumber)
		}
	}
	if it.employee != nil {
		ts.EmployeeID = optional(it.employee.ID)
	}
	if it.agency != nil {
		ts.AgencyID = optional(it.agency.ID)
	}
	return ts
}

func employeeEntity(req Request, it intent) entity.Employee {
	r := it.record.(records.EmployeeRow)
	e := entity.Employee{
		CompanyID:      req.CompanyID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          optional(r.Email),
		Phone:          optional(r.Phone),
		DateOfBirth:    r.DateOfBirth,
		NINumber:       optional(r.NINumber),
		EmploymentType: optional(r.EmploymentType),
		JobTitle:       optional(r.JobTitle),
		StartDate:      r.StartDate,
		PayRate:        optional(r.PayRate),
		Address:        optional(r.Address),
		Postcode:       optional(r.Postcode),
		BankName:       optional(r.BankName),
		AccountNumber:  optional(r.AccountNumber),
		SortCode:       optional(r.SortCode),
	}
	if it.agency != nil {
		e.AgencyIDs = []string{it.agency.ID}
	}
	return e
}

func agencyEntity(req Request, it intent) entity.Agency {
	r := it.record.(records.AgencyRow)
	return entity.Agency{
		CompanyID:     req.CompanyID,
		Name:          r.Name,
		ContactName:   optional(r.ContactName),
		ContactEmail:  optional(r.ContactEmail),
		ContactPhone:  optional(r.ContactPhone),
		Address:       optional(r.Address),
		VATNumber:     optional(r.VATNumber),
		PaymentTerms:  r.PaymentTerms,
		BankName:      optional(r.BankName),
		AccountNumber: optional(r.AccountNumber),
		SortCode:      optional(r.SortCode),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

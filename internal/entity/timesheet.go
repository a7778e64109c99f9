package entity

import "time"

// Timesheet represents one worked period, from a timesheet or a remittance line.
// EmployeeID and AgencyID stay nil for orphan rows pending manual linking.
type Timesheet struct {
	ID             string     `json:"id"`
	CompanyID      string     `json:"company_id"`
	EmployeeID     *string    `json:"employee_id,omitempty"`
	AgencyID       *string    `json:"agency_id,omitempty"`
	EmployeeName   string     `json:"employee_name"`
	AgencyName     *string    `json:"agency_name,omitempty"`
	PeriodEnd      *time.Time `json:"period_end,omitempty"`
	HoursWorked    string     `json:"hours_worked"`
	PayRate        string     `json:"pay_rate"`
	GrossPay       string     `json:"gross_pay"`
	Reference      *string    `json:"reference,omitempty"`
	EmploymentType *string    `json:"employment_type,omitempty"`
	Source         string     `json:"source"`
	FallbackMode   bool       `json:"fallback_mode"`
	CreatedAt      time.Time  `json:"created_at"`
}

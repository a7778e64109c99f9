package entity

import "time"

// Invoice represents a draft invoice derived from a reconciled timesheet.
type Invoice struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	AgencyID    string    `json:"agency_id"`
	EmployeeID  string    `json:"employee_id"`
	TimesheetID string    `json:"timesheet_id"`
	GrossAmount string    `json:"gross_amount"`
	NetAmount   string    `json:"net_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

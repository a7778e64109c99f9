package entity

import (
	"strings"
	"time"
)

// Employee represents an employee for data transfer between layers.
type Employee struct {
	ID             string     `json:"id"`
	CompanyID      string     `json:"company_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	NINumber       *string    `json:"ni_number,omitempty"`
	EmploymentType *string    `json:"employment_type,omitempty"`
	JobTitle       *string    `json:"job_title,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	PayRate        *string    `json:"pay_rate,omitempty"`
	Address        *string    `json:"address,omitempty"`
	Postcode       *string    `json:"postcode,omitempty"`
	BankName       *string    `json:"bank_name,omitempty"`
	AccountNumber  *string    `json:"account_number,omitempty"`
	SortCode       *string    `json:"sort_code,omitempty"`
	AgencyIDs      []string   `json:"agency_ids,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// FullName is "first last" with surrounding whitespace trimmed.
func (e Employee) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

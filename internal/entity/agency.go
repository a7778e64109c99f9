package entity

import "time"

// Agency represents a staffing agency for data transfer between layers.
type Agency struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	Name          string    `json:"name"`
	ContactName   *string   `json:"contact_name,omitempty"`
	ContactEmail  *string   `json:"contact_email,omitempty"`
	ContactPhone  *string   `json:"contact_phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	VATNumber     *string   `json:"vat_number,omitempty"`
	PaymentTerms  *int      `json:"payment_terms_days,omitempty"`
	BankName      *string   `json:"bank_name,omitempty"`
	AccountNumber *string   `json:"account_number,omitempty"`
	SortCode      *string   `json:"sort_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

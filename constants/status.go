package constants

// OutcomeStatus is the per-record result of reconciliation.
type OutcomeStatus string

const (
	OutcomeCreated  OutcomeStatus = "CREATED"
	OutcomeFailed   OutcomeStatus = "FAILED"   // essential fields missing or store rejected the write
	OutcomeFiltered OutcomeStatus = "FILTERED" // dropped by a business filter before reconciliation
)

// InvoiceStatus values written to the store.
const (
	InvoiceStatusDraft = "draft"
)

// TimesheetSource records which upload path produced a timesheet row.
const (
	SourceTimesheetUpload  = "timesheet_upload"
	SourceRemittanceUpload = "remittance_upload"
)

package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
)

// BatchResult is the per-document answer returned to callers. Any HTTP layer wraps it unchanged.
type BatchResult struct {
	Success              bool                   `json:"success"`
	DocumentKind         constants.DocumentKind `json:"document_kind"`
	Filename             string                 `json:"filename"`
	FallbackMode         bool                   `json:"fallback_mode"`
	Processed            int                    `json:"processed"`
	Created              int                    `json:"created"`
	Failed               int                    `json:"failed"`
	Filtered             int                    `json:"filtered"`
	InvoicesCreated      int                    `json:"invoices_created"`
	ManualTotalGrossPays string                 `json:"manual_total_gross_pays,omitempty"`
	CreatedEntities      []CreatedEntity        `json:"created_entities"`
	Errors               []string               `json:"errors"`
	Error                string                 `json:"error,omitempty"`
	ErrorCode            string                 `json:"error_code,omitempty"`
	Outcomes             []Outcome              `json:"outcomes"`
	Text                 *TextSummary           `json:"text,omitempty"`
	Model                string                 `json:"model,omitempty"`
	SchemaDrift          []string               `json:"schema_drift,omitempty"`
	Extraction           map[string]any         `json:"extraction,omitempty"`
	RawExtraction        json.RawMessage        `json:"raw_extraction,omitempty"`
	DurationMS           int64                  `json:"duration_ms"`
}

// Outcome is what happened to one extracted record. Index is its position in the extraction.
type Outcome struct {
	Index        int                     `json:"index"`
	Status       constants.OutcomeStatus `json:"status"`
	EntityType   string                  `json:"entity_type,omitempty"`
	EntityID     string                  `json:"entity_id,omitempty"`
	DisplayName  string                  `json:"display_name,omitempty"`
	EmployeeID   string                  `json:"employee_id,omitempty"`
	AgencyID     string                  `json:"agency_id,omitempty"`
	AgencyMatch  string                  `json:"agency_match,omitempty"`
	Orphan       bool                    `json:"orphan,omitempty"`
	InvoiceID    string                  `json:"invoice_id,omitempty"`
	InvoiceError string                  `json:"invoice_error,omitempty"`
	Reason       string                  `json:"reason,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

// CreatedEntity summarizes one row written to the store.
type CreatedEntity struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	EmployeeID  string `json:"employee_id,omitempty"`
	AgencyID    string `json:"agency_id,omitempty"`
	Orphan      bool   `json:"orphan,omitempty"`
	InvoiceID   string `json:"invoice_id,omitempty"`
}

// TextSummary describes the text extraction step.
type TextSummary struct {
	Method     string   `json:"method"`
	Pages      int      `json:"pages"`
	Length     int      `json:"length"`
	Confidence float32  `json:"confidence,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

const (
	EntityTimesheet = "timesheet"
	EntityEmployee  = "employee"
	EntityAgency    = "agency"
)

func newResult(req Request) *BatchResult {
	return &BatchResult{
		Success:         true,
		DocumentKind:    req.Kind,
		Filename:        req.Document.Filename,
		CreatedEntities: []CreatedEntity{},
		Errors:          []string{},
		Outcomes:        []Outcome{},
	}
}

// fail marks the whole document as failed. Counts gathered so far are kept.
func (r *BatchResult) fail(err error) {
	r.Success = false
	r.Error = err.Error()
	r.ErrorCode = common.ErrorCode(err)
}

// tally recomputes the aggregate counts from the outcomes.
func (r *BatchResult) tally() {
	r.Processed, r.Created, r.Failed, r.Filtered, r.InvoicesCreated = 0, 0, 0, 0, 0
	r.CreatedEntities = r.CreatedEntities[:0]
	r.Errors = r.Errors[:0]
	for _, o := range r.Outcomes {
		switch o.Status {
		case constants.OutcomeFiltered:
			r.Filtered++
			continue
		case constants.OutcomeCreated:
			r.Created++
			r.CreatedEntities = append(r.CreatedEntities, CreatedEntity{
				Type:        o.EntityType,
				ID:          o.EntityID,
				DisplayName: o.DisplayName,
				EmployeeID:  o.EmployeeID,
				AgencyID:    o.AgencyID,
				Orphan:      o.Orphan,
				InvoiceID:   o.InvoiceID,
			})
		case constants.OutcomeFailed:
			r.Failed++
			r.Errors = append(r.Errors, fmt.Sprintf("record %d: %s", o.Index, o.Error))
		}
		r.Processed++
		if o.InvoiceID != "" {
			r.InvoicesCreated++
		}
		if o.InvoiceError != "" {
			r.Errors = append(r.Errors, fmt.Sprintf("record %d: invoice: %s", o.Index, o.InvoiceError))
		}
	}
}

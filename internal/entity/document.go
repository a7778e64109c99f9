package entity

import "github.com/joseph-ayodele/payroll-intake/constants"

// SourceDocument represents an uploaded file handed to the pipeline by the upload transport.
type SourceDocument struct {
	Path     string           `json:"path"`
	Filename string           `json:"filename"`
	Format   constants.Format `json:"format"`
	Size     int64            `json:"size,omitempty"`
	HashHex  string           `json:"hash_hex,omitempty"`
}

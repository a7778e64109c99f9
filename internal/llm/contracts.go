package llm

import (
	"context"

	"github.com/joseph-ayodele/payroll-intake/constants"
)

// RawRecord is one untyped entity as returned by an extraction path.
type RawRecord = map[string]any

// RecordsKey holds the record collection in every extraction payload.
const RecordsKey = "records"

type ExtractRequest struct {
	Text         string
	Kind         constants.DocumentKind
	FilenameHint string
}

// Extraction is the decoded reply of the structured-extraction service.
// Payload keeps every top-level key (summary blocks included) with Records under RecordsKey.
type Extraction struct {
	Records  []RawRecord
	Payload  map[string]any
	KeyOrder []string // top-level keys in reply order
	Raw      []byte   // model content after fence stripping
	Model    string
	Drift    []string // schema problems that were recovered by coercion
}

// EntityExtractor is the structured-extraction client the pipeline depends on.
// Implementations return an error wrapping ErrQuotaExceeded for quota/availability failures.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, req ExtractRequest) (Extraction, error)
}

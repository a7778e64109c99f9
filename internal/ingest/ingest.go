package ingest

import (
	"context"
	"time"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

// IngestionResult is the per-file intake outcome.
type IngestionResult struct {
	Document     entity.SourceDocument
	DocumentID   string
	Deduplicated bool
	UploadedAt   time.Time
	Err          string
}

// DirStats summarizes a directory intake.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor turns files on disk into source documents for a company.
type Ingestor interface {
	IngestPath(ctx context.Context, companyID string, kind constants.DocumentKind, path string) (IngestionResult, error)
	// IngestDirectory ingests every supported file under root.
	IngestDirectory(ctx context.Context, companyID string, kind constants.DocumentKind, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}

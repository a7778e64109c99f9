package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

// TextExtractor is Stage 1: document -> text.
type TextExtractor interface {
	Extract(ctx context.Context, doc entity.SourceDocument) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.Format
	Method     string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

package extract

import (
	"context"
	"path/filepath"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/entity"
	"github.com/joseph-ayodele/payroll-intake/internal/ocr"
)

type OCRAdapter struct {
	e *ocr.Extractor
}

func NewOCRAdapter(e *ocr.Extractor) *OCRAdapter {
	return &OCRAdapter{e: e}
}

// Extract trusts the declared format and falls back to the file extension when none was given.
func (a *OCRAdapter) Extract(ctx context.Context, doc entity.SourceDocument) (TextExtractionResult, error) {
	format := doc.Format
	if format == constants.UNKNOWN {
		name := doc.Filename
		if name == "" {
			name = doc.Path
		}
		format = constants.MapExtToFormat(filepath.Ext(name))
	}
	r, err := a.e.ExtractFormat(ctx, doc.Path, format)
	return TextExtractionResult{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, err
}

package ocr

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
)

// extractCSV passes the file through verbatim; a UTF-8 BOM is dropped.
func (e *Extractor) extractCSV(path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.CSV, Method: "csv", Pages: 1}
	b, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("%w: read csv: %v", common.ErrInvalidInput, err)
	}
	text := strings.TrimPrefix(string(b), "\ufeff")
	if !utf8.ValidString(text) {
		res.Warnings = append(res.Warnings, "csv is not valid UTF-8; invalid bytes replaced")
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	res.Text = text
	return res, nil
}

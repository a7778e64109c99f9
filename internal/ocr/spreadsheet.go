package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/normalize"
)

var reDateish = regexp.MustCompile(`(?i)^\d{1,4}[/.\-]\d{1,2}[/.\-]\d{1,4}|\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)

// extractSpreadsheet emits every sheet as a section: marker line, header row, then
// tab-separated data rows. Dates become YYYY-MM-DD, numbers lose their display formatting.
func (e *Extractor) extractSpreadsheet(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.SPREADSHEET, Method: "spreadsheet"}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return res, fmt.Errorf("%w: open workbook: %v", common.ErrInvalidInput, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("workbook close error", "path", path, "error", err)
		}
	}()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		formatted, err := f.GetRows(sheet)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("sheet %q: %v", sheet, err))
			continue
		}
		raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			raw = formatted
		}

		rows := make([][]string, 0, len(formatted))
		for i, row := range formatted {
			var rawRow []string
			if i < len(raw) {
				rawRow = raw[i]
			}
			cells := make([]string, len(row))
			empty := true
			for j, cell := range row {
				var rawCell string
				if j < len(rawRow) {
					rawCell = rawRow[j]
				}
				cells[j] = cellText(cell, rawCell)
				if cells[j] != "" {
					empty = false
				}
			}
			if !empty {
				rows = append(rows, cells)
			}
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("=== Sheet: " + sheet + " ===\n")
		if len(rows) == 0 {
			continue
		}
		res.Pages++

		header, body := splitHeader(rows)
		b.WriteString(strings.Join(header, "\t"))
		b.WriteString("\n")
		for _, row := range body {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
	}

	res.Text = strings.TrimRight(b.String(), "\n")
	return res, nil
}

// cellText prefers the raw stored value for numbers and renders date-formatted serials as dates.
func cellText(formatted, raw string) string {
	formatted = strings.TrimSpace(formatted)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return formatted
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return formatted
	}
	if formatted != raw && reDateish.MatchString(formatted) {
		if d, ok := normalize.DateFromSerial(f); ok {
			return normalize.FormatDate(d)
		}
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// splitHeader uses the first row as header when every cell is non-empty text;
// otherwise column keys are inferred and the first row stays data.
func splitHeader(rows [][]string) ([]string, [][]string) {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	first := rows[0]
	isHeader := len(first) == width
	for _, c := range first {
		if c == "" {
			isHeader = false
			break
		}
		if _, err := strconv.ParseFloat(c, 64); err == nil {
			isHeader = false
			break
		}
	}
	if isHeader {
		return first, rows[1:]
	}
	header := make([]string, width)
	for i := range header {
		header[i] = fmt.Sprintf("Column%d", i+1)
	}
	return header, rows
}

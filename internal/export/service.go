package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/payroll-intake/internal/entity"
	"github.com/joseph-ayodele/payroll-intake/internal/reconcile"
)

const (
	SheetSummary  = "Summary"
	SheetOutcomes = "Outcomes"
	SheetOrphans  = "Orphans"
)

// OrphanLister supplies timesheets still waiting for a manual employee or agency link.
type OrphanLister interface {
	ListOrphans(ctx context.Context, companyID string) ([]entity.Timesheet, error)
}

// Service produces XLSX bytes summarizing intake runs.
type Service struct {
	orphans OrphanLister
	logger  *slog.Logger
}

// NewService accepts a nil lister, in which case the Orphans sheet is omitted.
func NewService(orphans OrphanLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orphans: orphans, logger: logger}
}

// BatchResultsXLSX writes one Summary row per document and one Outcomes row per extracted record.
func (s *Service) BatchResultsXLSX(ctx context.Context, companyID string, results []reconcile.BatchResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}

	summary := sheetWriter{f: f, sheet: SheetSummary}
	summary.header(20, "Document", "Kind", "Success", "Fallback", "Processed", "Created", "Failed",
		"Filtered", "Invoices", "Manual Total Gross Pays", "Error Code", "Error", "Duration (ms)")
	for _, r := range results {
		summary.row(r.Filename, string(r.DocumentKind), r.Success, r.FallbackMode, r.Processed, r.Created,
			r.Failed, r.Filtered, r.InvoicesCreated, r.ManualTotalGrossPays, r.ErrorCode,
			truncate(r.Error, 140), r.DurationMS)
	}

	if _, err := f.NewSheet(SheetOutcomes); err != nil {
		return nil, err
	}
	outcomes := sheetWriter{f: f, sheet: SheetOutcomes}
	outcomes.header(18, "Document", "Index", "Status", "Entity", "Entity ID", "Name", "Employee ID",
		"Agency ID", "Agency Match", "Orphan", "Invoice ID", "Detail")
	rows := 0
	for _, r := range results {
		for _, o := range r.Outcomes {
			outcomes.row(r.Filename, o.Index, string(o.Status), o.EntityType, o.EntityID, o.DisplayName,
				o.EmployeeID, o.AgencyID, o.AgencyMatch, o.Orphan, o.InvoiceID, truncate(detail(o), 140))
			rows++
		}
	}

	if s.orphans != nil {
		orphans, err := s.orphans.ListOrphans(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("query orphans: %w", err)
		}
		if _, err := f.NewSheet(SheetOrphans); err != nil {
			return nil, err
		}
		w := sheetWriter{f: f, sheet: SheetOrphans}
		w.header(16, "Timesheet ID", "Employee", "Agency", "Period End", "Hours", "Rate", "Gross", "Source", "Created")
		for _, ts := range orphans {
			period := ""
			if ts.PeriodEnd != nil {
				period = ts.PeriodEnd.Format("2006-01-02")
			}
			agency := ""
			if ts.AgencyName != nil {
				agency = *ts.AgencyName
			}
			w.row(ts.ID, ts.EmployeeName, agency, period, ts.HoursWorked, ts.PayRate, ts.GrossPay,
				ts.Source, ts.CreatedAt.UTC().Format(time.RFC3339))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"company_id", companyID,
		"documents", len(results),
		"outcomes", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
}

func (w *sheetWriter) header(width float64, cols ...string) {
	w.next = 1
	w.row(toAny(cols)...)
	last, _ := excelize.ColumnNumberToName(len(cols))
	_ = w.f.SetColWidth(w.sheet, "A", last, width)
	_ = w.f.SetPanes(w.sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (w *sheetWriter) row(values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, w.next)
		_ = w.f.SetCellValue(w.sheet, cell, v)
	}
	w.next++
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func detail(o reconcile.Outcome) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{o.Reason, o.Error, o.InvoiceError} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

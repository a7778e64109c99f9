package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
)

type fakeRunner struct {
	run   func(name string, args []string) ([]byte, []byte, error)
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.run(name, args)
}

type fakeRecognizer struct {
	files map[string]string // base name -> text; missing name -> error
	bytes string
	err   error
}

func (f *fakeRecognizer) RecognizeFile(_ context.Context, path string) (string, error) {
	if txt, ok := f.files[filepath.Base(path)]; ok {
		return txt, nil
	}
	return "", errors.New("unreadable image " + filepath.Base(path))
}

func (f *fakeRecognizer) RecognizeBytes(_ context.Context, _ []byte) (string, error) {
	return f.bytes, f.err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestExtractPDFSkipsFailedPagesAndRemovesRasters(t *testing.T) {
	pdf := writeFile(t, t.TempDir(), "remit.pdf", "not really a pdf")

	var rasterDir string
	runner := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		rasterDir = filepath.Dir(prefix)
		for _, n := range []string{"-1.png", "-2.png", "-3.png"} {
			if err := os.WriteFile(prefix+n, []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}}
	rec := &fakeRecognizer{files: map[string]string{
		"page-1.png": "Agency: Archer   Resourcing\r\nGross Pay 100.00",
		"page-3.png": "Total 100.00",
	}}

	e := NewExtractor(Config{}, nil, WithRunner(runner), WithRecognizer(rec))
	res, err := e.ExtractFormat(context.Background(), pdf, constants.PDF)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := "Agency: Archer Resourcing\nGross Pay 100.00" + PageSeparator + "Total 100.00"
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	if res.Pages != 3 {
		t.Fatalf("pages = %d, want 3", res.Pages)
	}
	if !containsWarning(res.Warnings, "page 2") {
		t.Fatalf("expected page 2 warning, got %v", res.Warnings)
	}
	if rasterDir == "" {
		t.Fatalf("pdftoppm was not invoked")
	}
	if _, err := os.Stat(rasterDir); !os.IsNotExist(err) {
		t.Fatalf("raster dir %s still exists (err=%v)", rasterDir, err)
	}
	if got := runner.calls[0]; got[0] != "pdftoppm" || got[1] != "-r" || got[2] != "300" {
		t.Fatalf("unexpected pdftoppm invocation %v", got)
	}
}

func TestExtractPDFFallsBackToDirectOCR(t *testing.T) {
	pdf := writeFile(t, t.TempDir(), "scan.pdf", "%PDF-broken")
	runner := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error"), errors.New("exit status 1")
	}}
	rec := &fakeRecognizer{bytes: "Employee: Jane Doe\nHours: 37.5"}

	e := NewExtractor(Config{MaxPages: 2}, nil, WithRunner(runner), WithRecognizer(rec))
	res, err := e.Extract(context.Background(), pdf)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Method != "pdf-direct-ocr" || res.Text != "Employee: Jane Doe\nHours: 37.5" {
		t.Fatalf("unexpected result %+v", res)
	}
	args := strings.Join(runner.calls[0], " ")
	if !strings.Contains(args, "-f 1 -l 2") {
		t.Fatalf("max pages not passed to pdftoppm: %s", args)
	}
}

func TestExtractPDFGivesUpWithEmptyText(t *testing.T) {
	pdf := writeFile(t, t.TempDir(), "scan.pdf", "junk")
	runner := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return nil, nil, errors.New("exit status 1")
	}}
	rec := &fakeRecognizer{err: errors.New("cannot read pdf bytes")}

	res, err := NewExtractor(Config{}, nil, WithRunner(runner), WithRecognizer(rec)).Extract(context.Background(), pdf)
	if err != nil {
		t.Fatalf("ocr failures must not surface as errors: %v", err)
	}
	if res.Text != "" || !containsWarning(res.Warnings, "direct ocr failed") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExtractImageFailureReturnsEmptyText(t *testing.T) {
	img := writeFile(t, t.TempDir(), "timesheet.png", "png")
	e := NewExtractor(Config{}, nil, WithRecognizer(&fakeRecognizer{}))
	res, err := e.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "" || len(res.Warnings) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExtractImageUsesCLIRecognizer(t *testing.T) {
	img := writeFile(t, t.TempDir(), "timesheet.jpg", "jpg")
	runner := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		return []byte("Week Ending 07/05/2025\n-----\nHours  37.50\n"), nil, nil
	}}
	e := NewExtractor(Config{TessdataDir: "/usr/share/tessdata"}, nil, WithRunner(runner))
	res, err := e.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Text != "Week Ending 07/05/2025\n\nHours 37.50" {
		t.Fatalf("text = %q", res.Text)
	}
	call := strings.Join(runner.calls[0], " ")
	if call != "tesseract "+img+" stdout -l eng --tessdata-dir /usr/share/tessdata" {
		t.Fatalf("unexpected tesseract call %q", call)
	}
	if res.Confidence <= 0.2 {
		t.Fatalf("expected payroll-looking text to score above base, got %v", res.Confidence)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := NewExtractor(Config{}, nil).Extract(context.Background(), "/tmp/contract.docx")
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractCSVVerbatim(t *testing.T) {
	body := "Agency,Person Name,Gross Pay\nArcher,Jane Doe,\"1,250.00\"\n"
	p := writeFile(t, t.TempDir(), "remit.csv", "\ufeff"+body)
	res, err := NewExtractor(Config{}, nil).Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Text != body {
		t.Fatalf("csv text = %q", res.Text)
	}
}

func TestExtractSpreadsheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hours.xlsx")
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Hours"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	rows := [][]any{
		{"Employee", "Hours", "Week Ending"},
		{"Jane Doe", 37.5, time.Date(2025, time.May, 7, 0, 0, 0, 0, time.UTC)},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Hours", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if _, err := f.NewSheet("Totals"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.SetCellValue("Totals", "A1", 1250.5)
	_ = f.SetCellValue("Totals", "B1", "paid")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	res, err := NewExtractor(Config{}, nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{
		"=== Sheet: Hours ===",
		"Employee\tHours\tWeek Ending",
		"Jane Doe\t37.5\t2025-05-07",
		"=== Sheet: Totals ===",
		"Column1\tColumn2\n1250.5\tpaid",
	} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("spreadsheet text missing %q:\n%s", want, res.Text)
		}
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
}

func TestCellText(t *testing.T) {
	cases := []struct{ formatted, raw, want string }{
		{"05-07-25", "45784", "2025-05-07"},
		{"7-May-25", "45784", "2025-05-07"},
		{"£1,250.00", "1250", "1250"},
		{"Jane Doe", "Jane Doe", "Jane Doe"},
		{"", "", ""},
	}
	for _, c := range cases {
		if got := cellText(c.formatted, c.raw); got != c.want {
			t.Errorf("cellText(%q, %q) = %q, want %q", c.formatted, c.raw, got, c.want)
		}
	}
}

func containsWarning(ws []string, sub string) bool {
	for _, w := range ws {
		if strings.Contains(w, sub) {
			return true
		}
	}
	return false
}

package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
)

// OCR engines selectable through Config.Engine.
const (
	EngineTesseractCLI = "tesseract"
	EngineGosseract    = "gosseract"
)

type Config struct {
	Engine    string // EngineTesseractCLI (default) | EngineGosseract
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for PDF pages, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.Format
	Method     string // "image-ocr" | "pdf-ocr" | "pdf-direct-ocr" | "spreadsheet" | "csv"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg        Config
	runner     Runner
	recognizer Recognizer
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec runner used for pdftoppm and the tesseract CLI.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithRecognizer replaces the OCR engine.
func WithRecognizer(r Recognizer) Option {
	return func(e *Extractor) {
		if r != nil {
			e.recognizer = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineTesseractCLI
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}

	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	if e.recognizer == nil {
		switch cfg.Engine {
		case EngineGosseract:
			e.recognizer = NewGosseractRecognizer(cfg)
		default:
			e.recognizer = NewCLIRecognizer(cfg, e.runner)
		}
	}
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	return e.ExtractFormat(ctx, path, constants.MapExtToFormat(filepath.Ext(path)))
}

// ExtractFormat runs the strategy for a declared format.
// Only an unsupported format or an unreadable spreadsheet/CSV is reported as an error;
// OCR failures yield empty text plus warnings.
func (e *Extractor) ExtractFormat(ctx context.Context, path string, format constants.Format) (ExtractionResult, error) {
	start := time.Now()
	e.logger.Debug("ocr.extract.start", "path", path, "format", format, "engine", e.cfg.Engine)

	var (
		res ExtractionResult
		err error
	)
	switch format {
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.SPREADSHEET:
		res, err = e.extractSpreadsheet(ctx, path)
	case constants.CSV:
		res, err = e.extractCSV(path)
	default:
		e.logger.Error("unsupported ocr format", "path", path, "extension", filepath.Ext(path))
		return ExtractionResult{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
	res.Duration = time.Since(start)

	e.logger.Info("ocr.extract.done",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"warnings", len(res.Warnings),
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, err
}

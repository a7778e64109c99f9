// Package app builds the pipeline components from configuration for the command-line entry points.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"entgo.io/ent/dialect"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/extract"
	"github.com/joseph-ayodele/payroll-intake/internal/llm"
	"github.com/joseph-ayodele/payroll-intake/internal/llm/openai"
	"github.com/joseph-ayodele/payroll-intake/internal/llm/vertex"
	"github.com/joseph-ayodele/payroll-intake/internal/ocr"
	"github.com/joseph-ayodele/payroll-intake/internal/reconcile"
	"github.com/joseph-ayodele/payroll-intake/internal/repository"
)

// OpenDatabase connects to the configured store and applies the schema.
// inMemory forces a throwaway SQLite database.
func OpenDatabase(ctx context.Context, cfg *common.Config, inMemory bool, logger *slog.Logger) (*repository.DB, error) {
	dbCfg := repository.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}
	if inMemory {
		dbCfg.Driver = dialect.SQLite
		dbCfg.DSN = ":memory:"
	}

	db, err := repository.Connect(ctx, dbCfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// NewTextExtractor wires the OCR/spreadsheet extractor behind the TextExtractor contract.
func NewTextExtractor(cfg *common.Config, logger *slog.Logger) *extract.OCRAdapter {
	x := ocr.NewExtractor(ocr.Config{
		Engine:              cfg.OCR.Engine,
		Pdftoppm:            cfg.OCR.Pdftoppm,
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		DPI:                 cfg.OCR.DPI,
		MaxPages:            cfg.OCR.MaxPages,
		TessdataDir:         cfg.OCR.TessdataDir,
		EnableTSVConfidence: true,
	}, logger)
	return extract.NewOCRAdapter(x)
}

// NewEntityExtractor returns the configured AI client, or nil when no credentials are present.
// A nil extractor sends every document through the heuristic fallback.
func NewEntityExtractor(ctx context.Context, cfg *common.Config, logger *slog.Logger) (llm.EntityExtractor, func(), error) {
	noop := func() {}
	switch strings.ToLower(cfg.LLM.Provider) {
	case "vertex":
		if cfg.LLM.VertexProject == "" {
			logger.Warn("VERTEX_PROJECT not set, using heuristic extraction only")
			return nil, noop, nil
		}
		c, err := vertex.NewClient(ctx, vertex.Config{
			Project:  cfg.LLM.VertexProject,
			Location: cfg.LLM.VertexLocation,
			Model:    cfg.LLM.VertexModel,
			Timeout:  cfg.LLM.Timeout,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		return c, func() {
			if err := c.Close(); err != nil {
				logger.Error("close vertex client", "error", err)
			}
		}, nil
	default:
		if cfg.LLM.APIKey == "" {
			logger.Warn("OPENAI_API_KEY not set, using heuristic extraction only")
			return nil, noop, nil
		}
		return openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger), noop, nil
	}
}

// EngineConfig converts pipeline settings into reconcile.Config.
func EngineConfig(cfg *common.Config) (reconcile.Config, error) {
	out := reconcile.Config{
		MinTextLength: cfg.Pipeline.MinTextLength,
		Concurrency:   cfg.Pipeline.RecordConcurrency,
	}
	if s := strings.TrimSpace(cfg.Pipeline.InvoiceNetRatio); s != "" {
		ratio, err := decimal.NewFromString(s)
		if err != nil {
			return out, common.NewAppError("CONFIG_ERROR", "INVOICE_NET_RATIO must be a decimal", err)
		}
		// zero is indistinguishable from unset in reconcile.Config
		if !ratio.IsPositive() || ratio.GreaterThan(decimal.NewFromInt(1)) {
			return out, common.NewAppError("CONFIG_ERROR", "INVOICE_NET_RATIO must be greater than 0 and at most 1", common.ErrInvalidInput)
		}
		out.NetRatio = ratio
	}
	return out, nil
}

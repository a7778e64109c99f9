package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/joseph-ayodele/payroll-intake/internal/common"
)

func TestEngineConfig(t *testing.T) {
	cfg := &common.Config{Pipeline: common.PipelineConfig{MinTextLength: 30, InvoiceNetRatio: "0.75", RecordConcurrency: 2}}
	got, err := EngineConfig(cfg)
	if err != nil {
		t.Fatalf("engine config: %v", err)
	}
	if got.MinTextLength != 30 || got.Concurrency != 2 || got.NetRatio.String() != "0.75" {
		t.Fatalf("unexpected config: %+v", got)
	}

	cfg.Pipeline.InvoiceNetRatio = "1.5"
	if _, err := EngineConfig(cfg); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected invalid input for ratio > 1, got %v", err)
	}
	cfg.Pipeline.InvoiceNetRatio = "0"
	if _, err := EngineConfig(cfg); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected invalid input for a zero ratio, got %v", err)
	}
	cfg.Pipeline.InvoiceNetRatio = "eighty"
	if _, err := EngineConfig(cfg); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewEntityExtractorWithoutCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := &common.Config{LLM: common.LLMConfig{Provider: "openai"}}
	x, closeFn, err := NewEntityExtractor(context.Background(), cfg, nopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if x != nil {
		t.Fatalf("expected nil extractor without an API key")
	}
}

func TestOpenDatabaseInMemory(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDatabase(ctx, &common.Config{}, true, nopLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := db.HealthCheck(ctx, 0); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func nopLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

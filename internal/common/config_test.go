package common

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("INVOICE_NET_RATIO", "0.75")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.LLM.Timeout != 15*time.Second {
		t.Fatalf("timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Pipeline.InvoiceNetRatio != "0.75" {
		t.Fatalf("ratio = %q", cfg.Pipeline.InvoiceNetRatio)
	}
	if cfg.OCR.DPI != 300 {
		t.Fatalf("dpi default = %d", cfg.OCR.DPI)
	}
	if cfg.LogLevel.String() != "DEBUG" {
		t.Fatalf("log level = %v", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRequiresProviderCredentials(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		LLM:      LLMConfig{Provider: "vertex"},
	}
	err := cfg.Validate()
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
}

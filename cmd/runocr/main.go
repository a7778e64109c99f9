package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/app"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

func main() {
	cfg := common.LoadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <path-to-document>")
		os.Exit(2)
	}
	path := os.Args[1]
	info, err := os.Stat(path)
	if err != nil {
		logger.Error("stat document", "path", path, "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	doc := entity.SourceDocument{
		Path:     path,
		Filename: filepath.Base(path),
		Format:   constants.MapExtToFormat(filepath.Ext(path)),
		Size:     info.Size(),
	}
	start := time.Now()
	res, err := app.NewTextExtractor(cfg, logger).Extract(ctx, doc)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "error", err, "error_code", common.ErrorCode(err), "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"duration_ms", dur.Milliseconds(),
	)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}

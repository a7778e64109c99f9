package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/app"
	"github.com/joseph-ayodele/payroll-intake/internal/async"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/export"
	"github.com/joseph-ayodele/payroll-intake/internal/ingest"
	"github.com/joseph-ayodele/payroll-intake/internal/reconcile"
	"github.com/joseph-ayodele/payroll-intake/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of payroll documents to process (required)")
		kindStr = flag.String("kind", "", "document kind: "+strings.Join(constants.DocumentKinds(), "|")+" (required)")
		company = flag.String("company", "", "company id (defaults to COMPANY_ID)")
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		out     = flag.String("out", "", "output XLSX summary path (defaults to <dir>/../payroll-intake.xlsx)")
		results = flag.String("results", "", "optional directory for one <filename>.json result per document")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	kind, ok := constants.ParseDocumentKind(*kindStr)
	if !ok {
		printError("Error: --kind must be one of %s\n", strings.Join(constants.DocumentKinds(), ", "))
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "payroll-intake.xlsx")
	}

	cfg := common.LoadConfig()
	if *company == "" {
		*company = cfg.Pipeline.CompanyID
	}
	if *company == "" {
		printError("Error: --company or COMPANY_ID is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, *dir, kind, *company, *inmem, *out, *results); err != nil {
		logger.Error("payroll batch failed", "error", err, "error_code", common.ErrorCode(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger, dir string, kind constants.DocumentKind,
	companyID string, inmem bool, outPath, resultsPath string) error {
	start := time.Now()

	db, err := app.OpenDatabase(ctx, cfg, inmem, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store := repository.NewStore(db, logger)
	docs := repository.NewDocumentRepository(db, logger)

	extractor, closeExtractor, err := app.NewEntityExtractor(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("entity extractor: %w", err)
	}
	defer closeExtractor()

	engineCfg, err := app.EngineConfig(cfg)
	if err != nil {
		return err
	}
	engine := reconcile.NewEngine(logger, engineCfg, app.NewTextExtractor(cfg, logger), extractor, store)

	ingested, stats, err := ingest.NewFSIngestor(docs, logger).IngestDirectory(ctx, companyID, kind, dir, true)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", dir, err)
	}
	logger.Info("documents discovered", "dir", dir, "matched", stats.Matched, "deduplicated", stats.Deduplicated, "failed", stats.Failed)

	var (
		mu       sync.Mutex
		finished []reconcile.BatchResult
	)
	queue := async.NewProcessorQueue(ctx, engine, logger,
		async.WithWorkers(cfg.Pipeline.BatchWorkers),
		async.WithProcessTimeout(cfg.Pipeline.DocumentTimeout),
		async.WithResultHandler(func(job async.Job, res reconcile.BatchResult, err error) {
			finish(docs, logger, job, res, err)
			mu.Lock()
			finished = append(finished, res)
			mu.Unlock()
		}),
	)

	for _, in := range ingested {
		switch {
		case in.Err != "":
			logger.Warn("skipping unreadable document", "path", in.Document.Path, "error", in.Err)
			continue
		case in.Deduplicated:
			logger.Info("skipping already ingested document", "path", in.Document.Path, "document_id", in.DocumentID)
			continue
		}
		job := async.Job{
			DocumentID: in.DocumentID,
			Request:    reconcile.Request{Document: in.Document, Kind: kind, CompanyID: companyID},
		}
		if err := queue.Enqueue(ctx, job); err != nil {
			return fmt.Errorf("enqueue %s: %w", in.Document.Filename, err)
		}
	}
	if err := queue.Shutdown(ctx); err != nil {
		return fmt.Errorf("drain queue: %w", err)
	}

	sort.Slice(finished, func(i, j int) bool { return finished[i].Filename < finished[j].Filename })

	xlsx, err := export.NewService(store.Timesheets, logger).BatchResultsXLSX(ctx, companyID, finished)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(outPath, xlsx, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	if resultsPath != "" {
		if err := writeResults(resultsPath, finished); err != nil {
			return err
		}
	}

	var created, failed int
	for _, r := range finished {
		created += r.Created
		failed += r.Failed
	}
	logger.Info("payroll batch complete",
		"documents", len(finished),
		"created", created,
		"failed", failed,
		"xlsx", outPath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func writeResults(dir string, results []reconcile.BatchResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("results dir: %w", err)
	}
	for _, r := range results {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", r.Filename, err)
		}
		name := filepath.Join(dir, r.Filename+".json")
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// finish records the outcome on the source document row.
func finish(docs repository.DocumentRepository, logger *slog.Logger, job async.Job, res reconcile.BatchResult, procErr error) {
	if job.DocumentID == "" {
		return
	}
	status := repository.DocumentProcessed
	var errMsg *string
	if procErr != nil || !res.Success {
		status = repository.DocumentFailed
		msg := res.Error
		if msg == "" && procErr != nil {
			msg = procErr.Error()
		}
		errMsg = &msg
	}
	payload, err := json.Marshal(res)
	if err != nil {
		logger.Error("marshal result", "document_id", job.DocumentID, "error", err)
		payload = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := docs.Finish(ctx, job.DocumentID, status, errMsg, payload); err != nil {
		logger.Error("record document status", "document_id", job.DocumentID, "error", err)
	}
}

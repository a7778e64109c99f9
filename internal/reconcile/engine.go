// Package reconcile turns one uploaded payroll document into store records.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/entity"
	"github.com/joseph-ayodele/payroll-intake/internal/extract"
	"github.com/joseph-ayodele/payroll-intake/internal/heuristic"
	"github.com/joseph-ayodele/payroll-intake/internal/llm"
	"github.com/joseph-ayodele/payroll-intake/internal/match"
	"github.com/joseph-ayodele/payroll-intake/internal/normalize"
)

// Store is the record store the engine reads candidates from and writes results to.
// Implementations return errors wrapping common.ErrStoreUnavailable when the store cannot be reached.
type Store interface {
	ListEmployees(ctx context.Context, companyID string) ([]entity.Employee, error)
	ListAgencies(ctx context.Context, companyID string) ([]entity.Agency, error)
	CreateTimesheet(ctx context.Context, ts entity.Timesheet) (entity.Timesheet, error)
	CreateInvoice(ctx context.Context, inv entity.Invoice) (entity.Invoice, error)
	CreateEmployee(ctx context.Context, e entity.Employee) (entity.Employee, error)
	CreateAgency(ctx context.Context, a entity.Agency) (entity.Agency, error)
}

// Config holds thresholds and policy knobs.
type Config struct {
	MinTextLength int             // default 20
	NetRatio      decimal.Decimal // invoice net = gross * NetRatio; default 0.80
	Concurrency   int             // parallel store writes per document; default 4
}

var defaultNetRatio = decimal.RequireFromString("0.80")

type Request struct {
	Document  entity.SourceDocument
	Kind      constants.DocumentKind
	CompanyID string
}

type Engine struct {
	Logger    *slog.Logger
	Cfg       Config
	Text      extract.TextExtractor
	Extractor llm.EntityExtractor // nil means every document goes through the heuristic path
	Fallback  *heuristic.Extractor
	Matcher   *match.Matcher
	Store     Store
}

func NewEngine(
	logger *slog.Logger,
	cfg Config,
	text extract.TextExtractor,
	extractor llm.EntityExtractor,
	store Store,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 20
	}
	if cfg.NetRatio.IsZero() {
		cfg.NetRatio = defaultNetRatio
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Engine{
		Logger:    logger,
		Cfg:       cfg,
		Text:      text,
		Extractor: extractor,
		Fallback:  heuristic.NewExtractor(logger),
		Matcher:   match.NewMatcher(logger),
		Store:     store,
	}
}

// Process loads the company's employees and agencies from the store, then reconciles the document.
func (e *Engine) Process(ctx context.Context, req Request) (BatchResult, error) {
	if strings.TrimSpace(req.CompanyID) == "" {
		res := newResult(req)
		err := common.NewAppError("INVALID_INPUT", "company id is required", common.ErrInvalidInput)
		res.fail(err)
		return *res, err
	}
	employees, err := e.Store.ListEmployees(ctx, req.CompanyID)
	if err != nil {
		res := newResult(req)
		err = fmt.Errorf("list employees: %w", err)
		res.fail(err)
		return *res, err
	}
	agencies, err := e.Store.ListAgencies(ctx, req.CompanyID)
	if err != nil {
		res := newResult(req)
		err = fmt.Errorf("list agencies: %w", err)
		res.fail(err)
		return *res, err
	}
	return e.Reconcile(ctx, req, employees, agencies)
}

// Reconcile runs one document against the given candidate lists. The returned result is always
// populated; err is non-nil when the whole document failed or the store became unavailable.
func (e *Engine) Reconcile(ctx context.Context, req Request, employees []entity.Employee, agencies []entity.Agency) (BatchResult, error) {
	start := time.Now()
	res := newResult(req)
	finish := func(err error) (BatchResult, error) {
		if err != nil {
			res.fail(err)
		}
		res.DurationMS = time.Since(start).Milliseconds()
		e.Logger.Info("reconcile.done",
			"file", req.Document.Filename, "kind", req.Kind, "success", res.Success,
			"processed", res.Processed, "created", res.Created, "failed", res.Failed,
			"filtered", res.Filtered, "invoices", res.InvoicesCreated,
			"fallback", res.FallbackMode, "elapsed_ms", res.DurationMS,
		)
		return *res, err
	}

	e.Logger.Info("reconcile.start",
		"file", req.Document.Filename, "kind", req.Kind, "company_id", req.CompanyID,
		"employees", len(employees), "agencies", len(agencies),
	)
	if _, ok := constants.ParseDocumentKind(string(req.Kind)); !ok {
		return finish(common.NewAppError("INVALID_INPUT", fmt.Sprintf("unknown document kind %q", req.Kind), common.ErrInvalidInput))
	}

	// 1. text
	tx, err := e.Text.Extract(ctx, req.Document)
	if err != nil {
		return finish(fmt.Errorf("extract text: %w", err))
	}
	text := strings.TrimSpace(tx.Text)
	res.Text = &TextSummary{
		Method:     tx.Method,
		Pages:      tx.Pages,
		Length:     len(text),
		Confidence: tx.Confidence,
		Warnings:   tx.Warnings,
	}
	if len(text) < e.Cfg.MinTextLength {
		e.Logger.Warn("reconcile.text.too_short", "file", req.Document.Filename, "len", len(text), "min", e.Cfg.MinTextLength)
		return finish(common.NewAppError("TEXT_TOO_SHORT",
			fmt.Sprintf("extracted %d characters, need at least %d", len(text), e.Cfg.MinTextLength),
			common.ErrTextTooShort))
	}

	// 2-3. structured extraction, heuristic on quota failures
	ext, fallback, err := e.extractRecords(ctx, req, text)
	if err != nil {
		return finish(fmt.Errorf("structured extraction: %w", err))
	}
	res.FallbackMode = fallback
	res.Model = ext.Model
	res.SchemaDrift = ext.Drift
	res.RawExtraction = json.RawMessage(ext.Raw)

	// 4. business filters
	survivors, filtered := filterRecords(req.Kind, ext.Records, summaryAgency(ext.Payload))
	for _, o := range filtered {
		e.Logger.Info("reconcile.record.filtered", "file", req.Document.Filename, "index", o.Index, "reason", o.Reason)
	}
	res.Outcomes = append(res.Outcomes, filtered...)

	// 5. normalize
	for i := range survivors {
		survivors[i].raw = normalize.CleanRecord(survivors[i].raw)
	}
	payload := cleanPayload(ext.Payload, survivors)

	// 6. remittance total
	if req.Kind == constants.KindRemittance {
		total, n := normalize.SumValues(rawsOf(survivors), "Gross Pay")
		res.ManualTotalGrossPays = normalize.FormatAmount(total)
		at := attachManualTotal(payload, ext.KeyOrder, res.ManualTotalGrossPays)
		e.Logger.Info("reconcile.manual_total", "file", req.Document.Filename, "total", res.ManualTotalGrossPays, "values", n, "attached_to", at)
	}
	res.Extraction = payload

	// 7-8. plan, create, then run the invoice effects
	intents := e.plan(req, survivors, employees, agencies, fallback)
	outcomes, storeErr := e.execute(ctx, req, intents, fallback)
	if storeErr == nil {
		storeErr = e.applyInvoices(ctx, req, planInvoices(req, intents, outcomes, e.Cfg.NetRatio), outcomes)
	}
	res.Outcomes = append(res.Outcomes, outcomes...)
	sort.SliceStable(res.Outcomes, func(i, j int) bool { return res.Outcomes[i].Index < res.Outcomes[j].Index })

	// 9. aggregate
	res.tally()
	if storeErr != nil {
		return finish(storeErr)
	}
	return finish(nil)
}

// extractRecords calls the extraction service and switches to the heuristic on quota errors.
func (e *Engine) extractRecords(ctx context.Context, req Request, text string) (llm.Extraction, bool, error) {
	if e.Extractor != nil {
		ext, err := e.Extractor.ExtractEntities(ctx, llm.ExtractRequest{
			Text:         text,
			Kind:         req.Kind,
			FilenameHint: req.Document.Filename,
		})
		if err == nil {
			if ext.Payload == nil {
				ext.Payload = map[string]any{llm.RecordsKey: recordsAsAny(ext.Records)}
			}
			return ext, false, nil
		}
		if !llm.IsQuota(err) {
			return llm.Extraction{}, false, err
		}
		e.Logger.Warn("reconcile.fallback", "file", req.Document.Filename, "kind", req.Kind, "error", err)
	} else {
		e.Logger.Warn("reconcile.fallback", "file", req.Document.Filename, "kind", req.Kind, "reason", "no extraction service configured")
	}

	rec := e.Fallback.ExtractFallback(text)
	payload := map[string]any{llm.RecordsKey: []any{rec}}
	raw, _ := json.Marshal(payload)
	return llm.Extraction{
		Records:  []llm.RawRecord{rec},
		Payload:  payload,
		KeyOrder: []string{llm.RecordsKey},
		Raw:      raw,
		Model:    "heuristic",
	}, true, nil
}

func isStoreUnavailable(err error) bool {
	return errors.Is(err, common.ErrStoreUnavailable)
}

func recordsAsAny(recs []llm.RawRecord) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}

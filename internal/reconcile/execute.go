package reconcile

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/records"
)

var (
	errNoEmployeeFound = errors.New("no employee could be read from the document")
	errBatchAborted    = errors.New("skipped: record store unavailable")
)

// execute performs the planned writes with bounded parallelism. Each record fails on its own;
// only an unavailable store stops the remaining writes and is returned.
func (e *Engine) execute(ctx context.Context, req Request, intents []intent, fallback bool) ([]Outcome, error) {
	outcomes := make([]Outcome, len(intents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Cfg.Concurrency)

	for i := range intents {
		it := intents[i]
		if it.err != nil {
			outcomes[i] = e.failed(req, it, it.err)
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				outcomes[i] = e.failed(req, it, errBatchAborted)
				return nil
			}
			o, err := e.create(gctx, req, it, fallback)
			if err != nil {
				outcomes[i] = e.failed(req, it, err)
				if isStoreUnavailable(err) {
					return err
				}
				return nil
			}
			outcomes[i] = o
			e.Logger.Info("reconcile.record.created",
				"file", req.Document.Filename, "index", it.index,
				"entity", o.EntityType, "id", o.EntityID, "orphan", o.Orphan, "agency_match", o.AgencyMatch,
			)
			return nil
		})
	}
	return outcomes, g.Wait()
}

func (e *Engine) create(ctx context.Context, req Request, it intent, fallback bool) (Outcome, error) {
	o := Outcome{
		Index:       it.index,
		Status:      constants.OutcomeCreated,
		DisplayName: it.record.DisplayName(),
		AgencyMatch: string(it.agencyRule),
	}
	if it.employee != nil {
		o.EmployeeID = it.employee.ID
	}
	if it.agency != nil {
		o.AgencyID = it.agency.ID
	}

	switch it.record.(type) {
	case records.Timesheet, records.Remittance:
		ts, err := e.Store.CreateTimesheet(ctx, timesheetEntity(req, it, fallback))
		if err != nil {
			return o, fmt.Errorf("create timesheet: %w", err)
		}
		o.EntityType, o.EntityID = EntityTimesheet, ts.ID
		o.Orphan = it.employee == nil || it.agency == nil
	case records.EmployeeRow:
		emp, err := e.Store.CreateEmployee(ctx, employeeEntity(req, it))
		if err != nil {
			return o, fmt.Errorf("create employee: %w", err)
		}
		o.EntityType, o.EntityID = EntityEmployee, emp.ID
		o.DisplayName = emp.FullName()
	case records.AgencyRow:
		ag, err := e.Store.CreateAgency(ctx, agencyEntity(req, it))
		if err != nil {
			return o, fmt.Errorf("create agency: %w", err)
		}
		o.EntityType, o.EntityID = EntityAgency, ag.ID
		o.AgencyID = ag.ID
	default:
		return o, fmt.Errorf("no store write for %T", it.record)
	}
	return o, nil
}

func (e *Engine) failed(req Request, it intent, err error) Outcome {
	e.Logger.Warn("reconcile.record.failed", "file", req.Document.Filename, "index", it.index, "error", err)
	o := Outcome{Index: it.index, Status: constants.OutcomeFailed, Error: err.Error()}
	if it.record != nil {
		o.DisplayName = it.record.DisplayName()
	}
	return o
}

// applyInvoices runs the invoice effects in order. A failed invoice is recorded on its outcome
// and never undoes the timesheet it belongs to.
func (e *Engine) applyInvoices(ctx context.Context, req Request, effects []invoiceEffect, outcomes []Outcome) error {
	for _, eff := range effects {
		o := &outcomes[eff.outcome]
		inv, err := e.Store.CreateInvoice(ctx, eff.invoice)
		if err != nil {
			o.InvoiceError = err.Error()
			e.Logger.Warn("reconcile.invoice.failed",
				"file", req.Document.Filename, "index", o.Index, "timesheet_id", eff.invoice.TimesheetID, "error", err)
			if isStoreUnavailable(err) {
				return fmt.Errorf("create invoice: %w", err)
			}
			continue
		}
		o.InvoiceID = inv.ID
		e.Logger.Info("reconcile.invoice.created",
			"file", req.Document.Filename, "index", o.Index, "invoice_id", inv.ID,
			"gross", eff.invoice.GrossAmount, "net", eff.invoice.NetAmount)
	}
	return nil
}

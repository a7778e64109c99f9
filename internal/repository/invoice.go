package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, inv entity.Invoice) (entity.Invoice, error)
	ListByTimesheet(ctx context.Context, timesheetID string) ([]entity.Invoice, error)
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

var invoiceColumns = []string{
	"id", "company_id", "agency_id", "employee_id", "timesheet_id", "gross_amount", "net_amount",
	"status", "created_at",
}

func (r *invoiceRepository) CreateInvoice(ctx context.Context, inv entity.Invoice) (entity.Invoice, error) {
	inv.ID = uuid.NewString()
	inv.CreatedAt = time.Now().UTC()
	insert := r.db.builder().Insert("invoices").
		Columns(invoiceColumns...).
		Values(inv.ID, inv.CompanyID, inv.AgencyID, inv.EmployeeID, inv.TimesheetID,
			inv.GrossAmount, inv.NetAmount, inv.Status, inv.CreatedAt)
	if err := r.db.exec(ctx, r.db.SQL(), insert); err != nil {
		r.logger.Error("failed to create invoice", "timesheet_id", inv.TimesheetID, "error", err)
		return entity.Invoice{}, err
	}
	return inv, nil
}

func (r *invoiceRepository) ListByTimesheet(ctx context.Context, timesheetID string) ([]entity.Invoice, error) {
	b := r.db.builder()
	t := b.Table("invoices")
	cols := make([]string, len(invoiceColumns))
	for i, c := range invoiceColumns {
		cols[i] = t.C(c)
	}
	query, args := b.Select(cols...).
		From(t).
		Where(entsql.EQ(t.C("timesheet_id"), timesheetID)).
		OrderBy(t.C("created_at")).
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		var id, agencyID, empID, tsID, gross, net text
		var created nullTime
		if err := rows.Scan(&id, &inv.CompanyID, &agencyID, &empID, &tsID, &gross, &net, &inv.Status, &created); err != nil {
			return nil, classify(err)
		}
		inv.ID, inv.AgencyID, inv.EmployeeID, inv.TimesheetID = id.String, agencyID.String, empID.String, tsID.String
		inv.GrossAmount, inv.NetAmount = gross.String, net.String
		inv.CreatedAt = created.Time
		out = append(out, inv)
	}
	return out, classify(rows.Err())
}

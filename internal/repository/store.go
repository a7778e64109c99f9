package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

// Store bundles the repositories behind the record-store contract used by reconciliation.
type Store struct {
	Employees  EmployeeRepository
	Agencies   AgencyRepository
	Timesheets TimesheetRepository
	Invoices   InvoiceRepository
	Documents  DocumentRepository
}

func NewStore(db *DB, logger *slog.Logger) *Store {
	return &Store{
		Employees:  NewEmployeeRepository(db, logger),
		Agencies:   NewAgencyRepository(db, logger),
		Timesheets: NewTimesheetRepository(db, logger),
		Invoices:   NewInvoiceRepository(db, logger),
		Documents:  NewDocumentRepository(db, logger),
	}
}

func (s *Store) ListEmployees(ctx context.Context, companyID string) ([]entity.Employee, error) {
	return s.Employees.ListEmployees(ctx, companyID)
}

func (s *Store) ListAgencies(ctx context.Context, companyID string) ([]entity.Agency, error) {
	return s.Agencies.ListAgencies(ctx, companyID)
}

func (s *Store) CreateTimesheet(ctx context.Context, ts entity.Timesheet) (entity.Timesheet, error) {
	return s.Timesheets.CreateTimesheet(ctx, ts)
}

func (s *Store) CreateInvoice(ctx context.Context, inv entity.Invoice) (entity.Invoice, error) {
	return s.Invoices.CreateInvoice(ctx, inv)
}

func (s *Store) CreateEmployee(ctx context.Context, e entity.Employee) (entity.Employee, error) {
	return s.Employees.CreateEmployee(ctx, e)
}

func (s *Store) CreateAgency(ctx context.Context, a entity.Agency) (entity.Agency, error) {
	return s.Agencies.CreateAgency(ctx, a)
}

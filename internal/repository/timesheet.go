package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

type TimesheetRepository interface {
	CreateTimesheet(ctx context.Context, ts entity.Timesheet) (entity.Timesheet, error)
	ListOrphans(ctx context.Context, companyID string) ([]entity.Timesheet, error)
}

type timesheetRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewTimesheetRepository(db *DB, logger *slog.Logger) TimesheetRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &timesheetRepository{db: db, logger: logger}
}

var timesheetColumns = []string{
	"id", "company_id", "employee_id", "agency_id", "employee_name", "agency_name", "period_end",
	"hours_worked", "pay_rate", "gross_pay", "reference", "employment_type", "source", "fallback_mode",
	"created_at",
}

func (r *timesheetRepository) CreateTimesheet(ctx context.Context, ts entity.Timesheet) (entity.Timesheet, error) {
	ts.ID = uuid.NewString()
	ts.CreatedAt = time.Now().UTC()
	insert := r.db.builder().Insert("timesheets").
		Columns(timesheetColumns...).
		Values(ts.ID, ts.CompanyID, nullable(ts.EmployeeID), nullable(ts.AgencyID), ts.EmployeeName,
			nullable(ts.AgencyName), dateOnly(ts.PeriodEnd), orZero(ts.HoursWorked), orZero(ts.PayRate),
			orZero(ts.GrossPay), nullable(ts.Reference), nullable(ts.EmploymentType), ts.Source,
			ts.FallbackMode, ts.CreatedAt)
	if err := r.db.exec(ctx, r.db.SQL(), insert); err != nil {
		r.logger.Error("failed to create timesheet", "company_id", ts.CompanyID, "employee_name", ts.EmployeeName, "error", err)
		return entity.Timesheet{}, err
	}
	return ts, nil
}

// ListOrphans returns timesheets still waiting for an employee or agency link.
func (r *timesheetRepository) ListOrphans(ctx context.Context, companyID string) ([]entity.Timesheet, error) {
	b := r.db.builder()
	t := b.Table("timesheets")
	cols := make([]string, len(timesheetColumns))
	for i, c := range timesheetColumns {
		cols[i] = t.C(c)
	}
	query, args := b.Select(cols...).
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("company_id"), companyID),
			entsql.Or(entsql.IsNull(t.C("employee_id")), entsql.IsNull(t.C("agency_id"))),
		)).
		OrderBy(t.C("created_at"), t.C("id")).
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list orphan timesheets", "company_id", companyID, "error", err)
		return nil, classify(err)
	}
	defer rows.Close()

	var out []entity.Timesheet
	for rows.Next() {
		var ts entity.Timesheet
		var id, empID, agencyID, agencyName, hours, rate, gross, ref, empType text
		var periodEnd, created nullTime
		if err := rows.Scan(&id, &ts.CompanyID, &empID, &agencyID, &ts.EmployeeName, &agencyName, &periodEnd,
			&hours, &rate, &gross, &ref, &empType, &ts.Source, &ts.FallbackMode, &created); err != nil {
			return nil, classify(err)
		}
		ts.ID = id.String
		ts.EmployeeID, ts.AgencyID, ts.AgencyName = empID.ptr(), agencyID.ptr(), agencyName.ptr()
		ts.HoursWorked, ts.PayRate, ts.GrossPay = hours.String, rate.String, gross.String
		ts.Reference, ts.EmploymentType = ref.ptr(), empType.ptr()
		ts.PeriodEnd = periodEnd.ptr()
		ts.CreatedAt = created.Time
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

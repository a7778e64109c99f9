package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

type EmployeeRepository interface {
	ListEmployees(ctx context.Context, companyID string) ([]entity.Employee, error)
	CreateEmployee(ctx context.Context, e entity.Employee) (entity.Employee, error)
}

type employeeRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewEmployeeRepository(db *DB, logger *slog.Logger) EmployeeRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &employeeRepository{db: db, logger: logger}
}

var employeeColumns = []string{
	"id", "company_id", "first_name", "last_name", "email", "phone", "date_of_birth", "ni_number",
	"employment_type", "job_title", "start_date", "pay_rate", "address", "postcode", "bank_name",
	"account_number", "sort_code", "created_at",
}

func (r *employeeRepository) ListEmployees(ctx context.Context, companyID string) ([]entity.Employee, error) {
	b := r.db.builder()
	t := b.Table("employees")
	cols := make([]string, len(employeeColumns))
	for i, c := range employeeColumns {
		cols[i] = t.C(c)
	}
	query, args := b.Select(cols...).
		From(t).
		Where(entsql.EQ(t.C("company_id"), companyID)).
		OrderBy(t.C("last_name"), t.C("first_name"), t.C("id")).
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list employees", "company_id", companyID, "error", err)
		return nil, classify(err)
	}
	defer rows.Close()

	var out []entity.Employee
	index := make(map[string]int)
	for rows.Next() {
		var e entity.Employee
		var id, email, phone, ni, empType, jobTitle, payRate, addr, post, bank, acct, sort text
		var dob, start, created nullTime
		if err := rows.Scan(&id, &e.CompanyID, &e.FirstName, &e.LastName, &email, &phone, &dob, &ni,
			&empType, &jobTitle, &start, &payRate, &addr, &post, &bank, &acct, &sort, &created); err != nil {
			return nil, classify(err)
		}
		e.ID = id.String
		e.Email, e.Phone, e.NINumber = email.ptr(), phone.ptr(), ni.ptr()
		e.EmploymentType, e.JobTitle, e.PayRate = empType.ptr(), jobTitle.ptr(), payRate.ptr()
		e.Address, e.Postcode, e.BankName = addr.ptr(), post.ptr(), bank.ptr()
		e.AccountNumber, e.SortCode = acct.ptr(), sort.ptr()
		e.DateOfBirth, e.StartDate = dob.ptr(), start.ptr()
		e.CreatedAt = created.Time
		index[e.ID] = len(out)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	if len(out) == 0 {
		return out, nil
	}

	if err := r.attachAgencies(ctx, companyID, out, index); err != nil {
		return nil, err
	}
	r.logger.Debug("listed employees", "company_id", companyID, "count", len(out))
	return out, nil
}

// attachAgencies fills AgencyIDs from the link table in one query.
func (r *employeeRepository) attachAgencies(ctx context.Context, companyID string, out []entity.Employee, index map[string]int) error {
	b := r.db.builder()
	l := b.Table("employee_agencies")
	e := b.Table("employees")
	query, args := b.Select(l.C("employee_id"), l.C("agency_id")).
		From(l).
		Join(e).On(l.C("employee_id"), e.C("id")).
		Where(entsql.EQ(e.C("company_id"), companyID)).
		OrderBy(l.C("employee_id"), l.C("agency_id")).
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list employee agencies", "company_id", companyID, "error", err)
		return classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		var empID, agencyID text
		if err := rows.Scan(&empID, &agencyID); err != nil {
			return classify(err)
		}
		if i, ok := index[empID.String]; ok {
			out[i].AgencyIDs = append(out[i].AgencyIDs, agencyID.String)
		}
	}
	return classify(rows.Err())
}

func (r *employeeRepository) CreateEmployee(ctx context.Context, e entity.Employee) (entity.Employee, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	b := r.db.builder()
	insert := b.Insert("employees").
		Columns(employeeColumns...).
		Values(e.ID, e.CompanyID, e.FirstName, e.LastName, nullable(e.Email), nullable(e.Phone),
			dateOnly(e.DateOfBirth), nullable(e.NINumber), nullable(e.EmploymentType), nullable(e.JobTitle),
			dateOnly(e.StartDate), nullable(e.PayRate), nullable(e.Address), nullable(e.Postcode),
			nullable(e.BankName), nullable(e.AccountNumber), nullable(e.SortCode), e.CreatedAt)

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.exec(ctx, tx, insert); err != nil {
			return err
		}
		for _, agencyID := range e.AgencyIDs {
			link := b.Insert("employee_agencies").Columns("employee_id", "agency_id").Values(e.ID, agencyID)
			if err := r.db.exec(ctx, tx, link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to create employee", "company_id", e.CompanyID, "name", e.FullName(), "error", err)
		return entity.Employee{}, err
	}
	return e, nil
}

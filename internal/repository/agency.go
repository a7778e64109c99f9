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

type AgencyRepository interface {
	ListAgencies(ctx context.Context, companyID string) ([]entity.Agency, error)
	CreateAgency(ctx context.Context, a entity.Agency) (entity.Agency, error)
}

type agencyRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewAgencyRepository(db *DB, logger *slog.Logger) AgencyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &agencyRepository{db: db, logger: logger}
}

var agencyColumns = []string{
	"id", "company_id", "name", "contact_name", "contact_email", "contact_phone", "address",
	"vat_number", "payment_terms_days", "bank_name", "account_number", "sort_code", "created_at",
}

func (r *agencyRepository) ListAgencies(ctx context.Context, companyID string) ([]entity.Agency, error) {
	b := r.db.builder()
	t := b.Table("agencies")
	cols := make([]string, len(agencyColumns))
	for i, c := range agencyColumns {
		cols[i] = t.C(c)
	}
	query, args := b.Select(cols...).
		From(t).
		Where(entsql.EQ(t.C("company_id"), companyID)).
		OrderBy(t.C("name"), t.C("id")).
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list agencies", "company_id", companyID, "error", err)
		return nil, classify(err)
	}
	defer rows.Close()

	var out []entity.Agency
	for rows.Next() {
		var a entity.Agency
		var id, contact, email, phone, addr, vat, bank, acct, sort text
		var terms sql.NullInt64
		var created nullTime
		if err := rows.Scan(&id, &a.CompanyID, &a.Name, &contact, &email, &phone, &addr, &vat,
			&terms, &bank, &acct, &sort, &created); err != nil {
			return nil, classify(err)
		}
		a.ID = id.String
		a.ContactName, a.ContactEmail, a.ContactPhone = contact.ptr(), email.ptr(), phone.ptr()
		a.Address, a.VATNumber, a.PaymentTerms = addr.ptr(), vat.ptr(), intPtr(terms)
		a.BankName, a.AccountNumber, a.SortCode = bank.ptr(), acct.ptr(), sort.ptr()
		a.CreatedAt = created.Time
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *agencyRepository) CreateAgency(ctx context.Context, a entity.Agency) (entity.Agency, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	insert := r.db.builder().Insert("agencies").
		Columns(agencyColumns...).
		Values(a.ID, a.CompanyID, a.Name, nullable(a.ContactName), nullable(a.ContactEmail),
			nullable(a.ContactPhone), nullable(a.Address), nullable(a.VATNumber), nullable(a.PaymentTerms),
			nullable(a.BankName), nullable(a.AccountNumber), nullable(a.SortCode), a.CreatedAt)
	if err := r.db.exec(ctx, r.db.SQL(), insert); err != nil {
		r.logger.Error("failed to create agency", "company_id", a.CompanyID, "name", a.Name, "error", err)
		return entity.Agency{}, err
	}
	return a, nil
}

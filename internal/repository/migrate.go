package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

// column types that differ between the two supported dialects
type typeSet struct {
	id, money, date, ts string
}

var types = map[string]typeSet{
	dialect.Postgres: {id: "UUID", money: "NUMERIC(14,2)", date: "DATE", ts: "TIMESTAMPTZ"},
	dialect.SQLite:   {id: "TEXT", money: "TEXT", date: "DATE", ts: "DATETIME"},
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS agencies (
		id {id} PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		contact_name TEXT,
		contact_email TEXT,
		contact_phone TEXT,
		address TEXT,
		vat_number TEXT,
		payment_terms_days INTEGER,
		bank_name TEXT,
		account_number TEXT,
		sort_code TEXT,
		created_at {ts} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS agencies_company_idx ON agencies (company_id)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id {id} PRIMARY KEY,
		company_id TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		date_of_birth {date},
		ni_number TEXT,
		employment_type TEXT,
		job_title TEXT,
		start_date {date},
		pay_rate {money},
		address TEXT,
		postcode TEXT,
		bank_name TEXT,
		account_number TEXT,
		sort_code TEXT,
		created_at {ts} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS employees_company_idx ON employees (company_id)`,
	`CREATE TABLE IF NOT EXISTS employee_agencies (
		employee_id {id} NOT NULL REFERENCES employees (id) ON DELETE CASCADE,
		agency_id {id} NOT NULL REFERENCES agencies (id) ON DELETE CASCADE,
		PRIMARY KEY (employee_id, agency_id)
	)`,
	`CREATE TABLE IF NOT EXISTS timesheets (
		id {id} PRIMARY KEY,
		company_id TEXT NOT NULL,
		employee_id {id} REFERENCES employees (id) ON DELETE SET NULL,
		agency_id {id} REFERENCES agencies (id) ON DELETE SET NULL,
		employee_name TEXT NOT NULL,
		agency_name TEXT,
		period_end {date},
		hours_worked {money} NOT NULL,
		pay_rate {money} NOT NULL,
		gross_pay {money} NOT NULL,
		reference TEXT,
		employment_type TEXT,
		source TEXT NOT NULL,
		fallback_mode BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {ts} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS timesheets_company_idx ON timesheets (company_id)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id {id} PRIMARY KEY,
		company_id TEXT NOT NULL,
		agency_id {id} NOT NULL REFERENCES agencies (id),
		employee_id {id} NOT NULL REFERENCES employees (id),
		timesheet_id {id} NOT NULL REFERENCES timesheets (id) ON DELETE CASCADE,
		gross_amount {money} NOT NULL,
		net_amount {money} NOT NULL,
		status TEXT NOT NULL,
		created_at {ts} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS source_documents (
		id {id} PRIMARY KEY,
		company_id TEXT NOT NULL,
		path TEXT NOT NULL,
		filename TEXT NOT NULL,
		format TEXT NOT NULL,
		kind TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		hash_hex TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		result_json TEXT,
		uploaded_at {ts} NOT NULL,
		processed_at {ts},
		UNIQUE (company_id, kind, hash_hex)
	)`,
}

// Migrate creates the store tables when they do not exist.
func Migrate(ctx context.Context, db *sql.DB, dialectName string) error {
	ts, ok := types[dialectName]
	if !ok {
		return fmt.Errorf("migrate: unsupported dialect %q", dialectName)
	}
	r := strings.NewReplacer("{id}", ts.id, "{money}", ts.money, "{date}", ts.date, "{ts}", ts.ts)
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return classify(fmt.Errorf("migrate: %w", err))
		}
	}
	return nil
}

// Migrate applies the schema to d.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.SQL(), d.Dialect()); err != nil {
		d.logger.Error("migration failed", "error", err)
		return err
	}
	d.logger.Info("schema migrated", "dialect", d.Dialect())
	return nil
}

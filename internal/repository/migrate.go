package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS invoices (
		id                TEXT PRIMARY KEY,
		filename          TEXT NOT NULL,
		vendor_name       TEXT,
		invoice_number    TEXT,
		invoice_date      TEXT,
		currency          TEXT,
		subtotal          TEXT,
		tax               TEXT,
		total             TEXT,
		confidence_score  REAL NOT NULL,
		validation_status TEXT NOT NULL,
		validation_errors TEXT NOT NULL DEFAULT '[]',
		needs_review      INTEGER NOT NULL DEFAULT 0,
		content_hash      TEXT NOT NULL UNIQUE,
		created_at        INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
		id          TEXT PRIMARY KEY,
		invoice_id  TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		description TEXT NOT NULL,
		quantity    TEXT,
		unit_price  TEXT,
		amount      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS invoice_items_invoice_id ON invoice_items (invoice_id)`,
	`CREATE INDEX IF NOT EXISTS invoices_created_at ON invoices (created_at)`,
}

var postgresDDL = []string{
	`CREATE TABLE IF NOT EXISTS invoices (
		id                TEXT PRIMARY KEY,
		filename          TEXT NOT NULL,
		vendor_name       TEXT,
		invoice_number    TEXT,
		invoice_date      TEXT,
		currency          CHAR(3),
		subtotal          NUMERIC,
		tax               NUMERIC,
		total             NUMERIC,
		confidence_score  DOUBLE PRECISION NOT NULL,
		validation_status TEXT NOT NULL,
		validation_errors TEXT NOT NULL DEFAULT '[]',
		needs_review      BOOLEAN NOT NULL DEFAULT FALSE,
		content_hash      TEXT NOT NULL UNIQUE,
		created_at        BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
		id          TEXT PRIMARY KEY,
		invoice_id  TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		description TEXT NOT NULL,
		quantity    NUMERIC,
		unit_price  NUMERIC,
		amount      NUMERIC
	)`,
	`CREATE INDEX IF NOT EXISTS invoice_items_invoice_id ON invoice_items (invoice_id)`,
	`CREATE INDEX IF NOT EXISTS invoices_created_at ON invoices (created_at)`,
}

// Migrate creates the invoice tables when missing.
func (db *DB) Migrate(ctx context.Context) error {
	stmts := sqliteDDL
	if db.dialect == dialect.Postgres {
		stmts = postgresDDL
	}
	for _, s := range stmts {
		if _, err := db.SQL().ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	db.logger.Info("database schema ready", "dialect", db.dialect)
	return nil
}

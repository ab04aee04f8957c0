package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Messages raised by the triggers. triggerError matches on them.
const (
	msgPeriodClosed = "fiscal period is closed"
	msgPeriodFinal  = "closed fiscal period cannot be reopened"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Create schema version table
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// Fiscal periods: one row per year once it has been touched
		`CREATE TABLE IF NOT EXISTS fiscal_periods (
			year      INTEGER PRIMARY KEY,
			status    TEXT NOT NULL DEFAULT 'OPEN' CHECK (status IN ('OPEN','CLOSED')),
			closed_at TEXT,
			closed_by TEXT NOT NULL DEFAULT ''
		)`,

		// Cash ledger. Amounts are decimal strings.
		`CREATE TABLE IF NOT EXISTS cash_transactions (
			seq            INTEGER PRIMARY KEY AUTOINCREMENT,
			id             TEXT NOT NULL UNIQUE,
			timestamp      TEXT NOT NULL,
			type           TEXT NOT NULL CHECK (type IN ('INCOME','EXPENSE')),
			amount         TEXT NOT NULL,
			currency       TEXT NOT NULL DEFAULT 'TND',
			reference_type TEXT NOT NULL CHECK (reference_type IN ('INVOICE','EXPENSE','SALARY','CAPITAL','MISSION')),
			reference_id   TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			description    TEXT NOT NULL DEFAULT '',
			vehicle_id     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cash_vehicle ON cash_transactions(vehicle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cash_reference ON cash_transactions(reference_type, reference_id)`,

		// VAT journal
		`CREATE TABLE IF NOT EXISTS vat_journal (
			seq       INTEGER PRIMARY KEY AUTOINCREMENT,
			id        TEXT NOT NULL UNIQUE,
			timestamp TEXT NOT NULL,
			period    TEXT NOT NULL,
			type      TEXT NOT NULL CHECK (type IN ('COLLECTED','DEDUCTIBLE')),
			base      TEXT NOT NULL,
			rate      TEXT NOT NULL,
			amount    TEXT NOT NULL,
			reference TEXT NOT NULL,
			declared  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vat_period ON vat_journal(period)`,

		// Trigger: cash transactions are append-only
		`CREATE TRIGGER IF NOT EXISTS trg_cash_immutable
		BEFORE UPDATE ON cash_transactions
		BEGIN
			SELECT RAISE(ABORT, 'cash transactions are append-only');
		END`,

		// Trigger: only the declared flag of a VAT entry may change, and only to 1
		`CREATE TRIGGER IF NOT EXISTS trg_vat_immutable
		BEFORE UPDATE ON vat_journal
		WHEN NEW.id != OLD.id OR NEW.timestamp != OLD.timestamp OR NEW.period != OLD.period
			OR NEW.type != OLD.type OR NEW.base != OLD.base OR NEW.rate != OLD.rate
			OR NEW.amount != OLD.amount OR NEW.reference != OLD.reference
			OR (OLD.declared = 1 AND NEW.declared = 0)
		BEGIN
			SELECT RAISE(ABORT, 'vat journal entries are append-only');
		END`,

		// Trigger: no cash movement dated in a closed year
		`CREATE TRIGGER IF NOT EXISTS trg_cash_closed_period
		BEFORE INSERT ON cash_transactions
		WHEN EXISTS (
			SELECT 1 FROM fiscal_periods
			WHERE year = CAST(substr(NEW.timestamp, 1, 4) AS INTEGER) AND status = 'CLOSED'
		)
		BEGIN
			SELECT RAISE(ABORT, '` + msgPeriodClosed + `');
		END`,

		// Trigger: no VAT operation booked in a closed year
		`CREATE TRIGGER IF NOT EXISTS trg_vat_closed_period
		BEFORE INSERT ON vat_journal
		WHEN EXISTS (
			SELECT 1 FROM fiscal_periods
			WHERE year = CAST(substr(NEW.period, 1, 4) AS INTEGER) AND status = 'CLOSED'
		)
		BEGIN
			SELECT RAISE(ABORT, '` + msgPeriodClosed + `');
		END`,

		// Trigger: closing is one-way
		`CREATE TRIGGER IF NOT EXISTS trg_period_final
		BEFORE UPDATE ON fiscal_periods
		WHEN OLD.status = 'CLOSED'
		BEGIN
			SELECT RAISE(ABORT, '` + msgPeriodFinal + `');
		END`,

		// Record schema version
		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

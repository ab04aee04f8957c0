package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/simonvc/fiscaledger/internal/ledger"
)

// ListPeriods returns every year that has a row, oldest first. Years that
// were never touched are implicitly open and are not listed.
func (s *Store) ListPeriods(ctx context.Context) ([]ledger.FiscalPeriod, error) {
	rows, err := s.reader.QueryContext(ctx, `SELECT year, status, closed_at, closed_by FROM fiscal_periods ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("list fiscal periods: %w", err)
	}
	defer rows.Close()

	periods := []ledger.FiscalPeriod{}
	for rows.Next() {
		fp, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, fp)
	}
	return periods, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPeriod(row rowScanner) (ledger.FiscalPeriod, error) {
	var fp ledger.FiscalPeriod
	var closedAt sql.NullString
	if err := row.Scan(&fp.Year, &fp.Status, &closedAt, &fp.ClosedBy); err != nil {
		return fp, fmt.Errorf("scan fiscal period: %w", err)
	}
	if closedAt.Valid {
		t := parseTime(closedAt.String)
		fp.ClosedAt = &t
	}
	return fp, nil
}

func (s *Store) GetPeriod(ctx context.Context, year int) (ledger.FiscalPeriod, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT year, status, closed_at, closed_by FROM fiscal_periods WHERE year = ?`, year)
	fp, err := scanPeriod(row)
	if isNoRows(err) {
		return ledger.OpenPeriod(year), nil
	}
	return fp, err
}

func (s *Store) IsClosed(ctx context.Context, year int) (bool, error) {
	fp, err := s.GetPeriod(ctx, year)
	if err != nil {
		return false, err
	}
	return fp.IsClosed(), nil
}

// ClosePeriod closes year. Closing is final.
func (s *Store) ClosePeriod(ctx context.Context, year int, by string) (ledger.FiscalPeriod, error) {
	if year < 1900 || year > 9999 {
		return ledger.FiscalPeriod{}, fmt.Errorf("year %d: %w", year, ledger.ErrInvalidPeriod)
	}
	now := s.now()

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return ledger.FiscalPeriod{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fp, err := scanPeriod(tx.QueryRowContext(ctx,
		`SELECT year, status, closed_at, closed_by FROM fiscal_periods WHERE year = ?`, year))
	switch {
	case isNoRows(err):
	case err != nil:
		return ledger.FiscalPeriod{}, err
	case fp.IsClosed():
		return ledger.FiscalPeriod{}, fmt.Errorf("%d: %w", year, ledger.ErrPeriodAlreadyClosed)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fiscal_periods (year, status, closed_at, closed_by) VALUES (?, 'CLOSED', ?, ?)
		 ON CONFLICT(year) DO UPDATE SET status = excluded.status, closed_at = excluded.closed_at, closed_by = excluded.closed_by`,
		year, now.Format(timeLayout), strings.TrimSpace(by),
	)
	if err != nil {
		return ledger.FiscalPeriod{}, fmt.Errorf("close fiscal period: %w", triggerError(err))
	}
	if err := tx.Commit(); err != nil {
		return ledger.FiscalPeriod{}, fmt.Errorf("commit: %w", err)
	}

	return ledger.FiscalPeriod{Year: year, Status: ledger.PeriodClosed, ClosedAt: &now, ClosedBy: strings.TrimSpace(by)}, nil
}

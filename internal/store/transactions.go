package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/simonvc/fiscaledger/internal/journal"
)

func (s *Store) RecordTransaction(ctx context.Context, in journal.TransactionInput) (journal.Transaction, error) {
	if err := in.Validate(); err != nil {
		return journal.Transaction{}, err
	}
	txn := journal.NewTransaction(uuid.Must(uuid.NewV7()).String(), s.now(), in)

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO cash_transactions (id, timestamp, type, amount, currency, reference_type, reference_id, category, description, vehicle_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Timestamp.Format(timeLayout), string(txn.Type), txn.Amount.String(), txn.Currency,
		string(txn.ReferenceType), txn.ReferenceID, txn.Category, txn.Description, txn.VehicleID,
	)
	if err != nil {
		return journal.Transaction{}, fmt.Errorf("insert cash transaction: %w", triggerError(err))
	}
	return txn, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter TxnFilter) ([]journal.Transaction, error) {
	query := `SELECT id, timestamp, type, amount, currency, reference_type, reference_id, category, description, vehicle_id
		FROM cash_transactions WHERE 1=1`
	args := []any{}

	if filter.VehicleID != "" {
		query += ` AND vehicle_id = ?`
		args = append(args, filter.VehicleID)
	}
	if filter.ReferenceType != "" {
		query += ` AND reference_type = ?`
		args = append(args, filter.ReferenceType)
	}

	query += ` ORDER BY seq`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cash transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]journal.Transaction, error) {
	txns := []journal.Transaction{}
	for rows.Next() {
		var t journal.Transaction
		var ts string
		if err := rows.Scan(&t.ID, &ts, &t.Type, &t.Amount, &t.Currency, &t.ReferenceType, &t.ReferenceID, &t.Category, &t.Description, &t.VehicleID); err != nil {
			return nil, fmt.Errorf("scan cash transaction: %w", err)
		}
		t.Timestamp = parseTime(ts)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (s *Store) ClearTransactions(ctx context.Context) error {
	if _, err := s.writer.ExecContext(ctx, `DELETE FROM cash_transactions`); err != nil {
		return fmt.Errorf("clear cash transactions: %w", err)
	}
	return nil
}

// CashLedger is the journal.CashLedger view of the store.
type CashLedger struct {
	s *Store
}

func (s *Store) CashLedger() *CashLedger {
	return &CashLedger{s: s}
}

func (c *CashLedger) Record(ctx context.Context, in journal.TransactionInput) (journal.Transaction, error) {
	return c.s.RecordTransaction(ctx, in)
}

func (c *CashLedger) List(ctx context.Context) ([]journal.Transaction, error) {
	return c.s.ListTransactions(ctx, TxnFilter{})
}

func (c *CashLedger) Clear(ctx context.Context) error {
	return c.s.ClearTransactions(ctx)
}

var _ journal.CashLedger = (*CashLedger)(nil)

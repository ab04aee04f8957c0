package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simonvc/fiscaledger/internal/journal"
)

func (s *Store) LogVAT(ctx context.Context, in journal.VATInput) (journal.VATEntry, error) {
	if err := in.Validate(); err != nil {
		return journal.VATEntry{}, err
	}
	e := journal.NewVATEntry(uuid.Must(uuid.NewV7()).String(), s.now(), in)

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO vat_journal (id, timestamp, period, type, base, rate, amount, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.Format(timeLayout), e.Period, string(e.Type),
		e.Base.String(), e.Rate.String(), e.Amount.String(), e.Reference,
	)
	if err != nil {
		return journal.VATEntry{}, fmt.Errorf("insert vat entry: %w", triggerError(err))
	}
	return e, nil
}

// ListVAT returns the journal in append order. An empty period lists all.
func (s *Store) ListVAT(ctx context.Context, period string) ([]journal.VATEntry, error) {
	query := `SELECT id, timestamp, period, type, base, rate, amount, reference, declared FROM vat_journal`
	args := []any{}
	if period != "" {
		query += ` WHERE period = ?`
		args = append(args, period)
	}
	query += ` ORDER BY seq`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vat journal: %w", err)
	}
	defer rows.Close()

	entries := []journal.VATEntry{}
	for rows.Next() {
		var e journal.VATEntry
		var ts string
		var declared int
		if err := rows.Scan(&e.ID, &ts, &e.Period, &e.Type, &e.Base, &e.Rate, &e.Amount, &e.Reference, &declared); err != nil {
			return nil, fmt.Errorf("scan vat entry: %w", err)
		}
		e.Timestamp = parseTime(ts)
		e.Declared = declared == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) MarkVATDeclared(ctx context.Context, period string) (int, error) {
	res, err := s.writer.ExecContext(ctx,
		`UPDATE vat_journal SET declared = 1 WHERE period = ? AND declared = 0`, period)
	if err != nil {
		return 0, fmt.Errorf("mark vat declared: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark vat declared: %w", err)
	}
	return int(n), nil
}

func (s *Store) ClearVAT(ctx context.Context) error {
	if _, err := s.writer.ExecContext(ctx, `DELETE FROM vat_journal`); err != nil {
		return fmt.Errorf("clear vat journal: %w", err)
	}
	return nil
}

// VATJournal is the journal.VATJournal view of the store.
type VATJournal struct {
	s *Store
}

func (s *Store) VATJournal() *VATJournal {
	return &VATJournal{s: s}
}

func (v *VATJournal) LogOperation(ctx context.Context, in journal.VATInput) (journal.VATEntry, error) {
	return v.s.LogVAT(ctx, in)
}

func (v *VATJournal) List(ctx context.Context) ([]journal.VATEntry, error) {
	return v.s.ListVAT(ctx, "")
}

func (v *VATJournal) ListByPeriod(ctx context.Context, period string) ([]journal.VATEntry, error) {
	return v.s.ListVAT(ctx, period)
}

func (v *VATJournal) MarkDeclared(ctx context.Context, period string) (int, error) {
	return v.s.MarkVATDeclared(ctx, period)
}

func (v *VATJournal) Clear(ctx context.Context) error {
	return v.s.ClearVAT(ctx)
}

var _ journal.VATJournal = (*VATJournal)(nil)

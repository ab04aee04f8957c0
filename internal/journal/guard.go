package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/simonvc/fiscaledger/internal/ledger"
)

// PeriodChecker reports whether a fiscal year has been closed.
type PeriodChecker interface {
	IsClosed(ctx context.Context, year int) (bool, error)
}

// Guard rejects appends dated in a closed fiscal year. Reads, MarkDeclared
// and Clear pass through.
type Guard struct {
	periods PeriodChecker
	now     func() time.Time
}

func NewGuard(periods PeriodChecker, opts ...Option) *Guard {
	o := buildOptions(opts)
	return &Guard{periods: periods, now: o.now}
}

func (g *Guard) check(ctx context.Context, year int) error {
	closed, err := g.periods.IsClosed(ctx, year)
	if err != nil {
		return fmt.Errorf("check fiscal period %d: %w", year, err)
	}
	if closed {
		return fmt.Errorf("%d: %w", year, ledger.ErrPeriodClosed)
	}
	return nil
}

// Cash wraps l so that Record checks the fiscal period first.
func (g *Guard) Cash(l CashLedger) CashLedger {
	return guardedCash{CashLedger: l, g: g}
}

// VAT wraps j so that LogOperation checks the fiscal period first.
func (g *Guard) VAT(j VATJournal) VATJournal {
	return guardedVAT{VATJournal: j, g: g}
}

type guardedCash struct {
	CashLedger
	g *Guard
}

func (c guardedCash) Record(ctx context.Context, in TransactionInput) (Transaction, error) {
	if err := c.g.check(ctx, in.Year(c.g.now())); err != nil {
		return Transaction{}, err
	}
	return c.CashLedger.Record(ctx, in)
}

type guardedVAT struct {
	VATJournal
	g *Guard
}

func (v guardedVAT) LogOperation(ctx context.Context, in VATInput) (VATEntry, error) {
	if err := v.g.check(ctx, in.Year(v.g.now())); err != nil {
		return VATEntry{}, err
	}
	return v.VATJournal.LogOperation(ctx, in)
}

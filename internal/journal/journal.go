// Package journal holds the two append-only logs fed by document events:
// the cash ledger and the VAT journal.
package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Outflow TransactionType = "EXPENSE"
)

// SourceType is what caused a cash movement.
type SourceType string

const (
	SourceInvoice SourceType = "INVOICE"
	SourceExpense SourceType = "EXPENSE"
	SourceSalary  SourceType = "SALARY"
	SourceCapital SourceType = "CAPITAL"
	SourceMission SourceType = "MISSION"
)

type Transaction struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ReferenceType SourceType      `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	VehicleID     string          `json:"vehicle_id,omitempty"`
}

// Signed is the amount with outflows negative.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Outflow {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionInput is what callers supply to CashLedger.Record. A zero
// Timestamp means now; an empty Currency means TND.
type TransactionInput struct {
	Timestamp     time.Time       `json:"timestamp"`
	Type          TransactionType `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency      string          `json:"currency"`
	ReferenceType SourceType      `json:"reference_type" validate:"required,oneof=INVOICE EXPENSE SALARY CAPITAL MISSION"`
	ReferenceID   string          `json:"reference_id"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	VehicleID     string          `json:"vehicle_id,omitempty"`
}

func (in TransactionInput) Validate() error {
	var extra []ledger.FieldError
	if in.Currency != "" && !money.ValidCurrency(in.Currency) {
		extra = append(extra, ledger.FieldError{Field: "currency", Rule: "currency", Value: in.Currency})
	}
	return ledger.ValidateStruct(ledger.RefCash, in.ReferenceID, in, extra...)
}

type VATType string

const (
	VATCollected  VATType = "COLLECTED"
	VATDeductible VATType = "DEDUCTIBLE"
)

type VATEntry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Period    string          `json:"period"`
	Type      VATType         `json:"type"`
	Base      decimal.Decimal `json:"base"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Declared  bool            `json:"declared"`
}

// VATInput is what callers supply to VATJournal.LogOperation. The period
// defaults to the month of Timestamp, and Timestamp defaults to now.
type VATInput struct {
	Timestamp time.Time       `json:"timestamp"`
	Period    string          `json:"period"`
	Type      VATType         `json:"type" validate:"required,oneof=COLLECTED DEDUCTIBLE"`
	Base      decimal.Decimal `json:"base" validate:"gte=0"`
	Rate      decimal.Decimal `json:"rate" validate:"gte=0,lte=100"`
	Reference string          `json:"reference" validate:"required"`
}

func (in VATInput) Validate() error {
	var extra []ledger.FieldError
	if in.Period != "" {
		if p, err := ledger.ParsePeriod(in.Period); err != nil || p.Kind != ledger.PeriodMonth {
			extra = append(extra, ledger.FieldError{Field: "period", Rule: "YYYY-MM", Value: in.Period})
		}
	}
	return ledger.ValidateStruct(ledger.RefVATJournal, in.Reference, in, extra...)
}

// CashLedger is the append-only log of money movements.
type CashLedger interface {
	Record(ctx context.Context, in TransactionInput) (Transaction, error)
	List(ctx context.Context) ([]Transaction, error)
	// Clear empties the log. Used only by the administrative reset.
	Clear(ctx context.Context) error
}

// VATJournal is the append-only log of VAT operations. Entries are never
// edited, except for the declared flag set by MarkDeclared.
type VATJournal interface {
	LogOperation(ctx context.Context, in VATInput) (VATEntry, error)
	List(ctx context.Context) ([]VATEntry, error)
	ListByPeriod(ctx context.Context, period string) ([]VATEntry, error)
	// MarkDeclared flags every entry of period as declared and returns how
	// many entries changed.
	MarkDeclared(ctx context.Context, period string) (int, error)
	Clear(ctx context.Context) error
}

// NewTransaction applies defaults to in and builds the stored row. Shared by
// every CashLedger implementation.
func NewTransaction(id string, now time.Time, in TransactionInput) Transaction {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}
	currency := in.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return Transaction{
		ID:            id,
		Timestamp:     ts.UTC(),
		Type:          in.Type,
		Amount:        money.Round(in.Amount),
		Currency:      currency,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Category:      in.Category,
		Description:   in.Description,
		VehicleID:     in.VehicleID,
	}
}

// NewVATEntry applies defaults to in and computes the amount.
func NewVATEntry(id string, now time.Time, in VATInput) VATEntry {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}
	ts = ts.UTC()
	period := in.Period
	if period == "" {
		period = ts.Format("2006-01")
	}
	return VATEntry{
		ID:        id,
		Timestamp: ts,
		Period:    period,
		Type:      in.Type,
		Base:      money.Round(in.Base),
		Rate:      in.Rate,
		Amount:    money.Percent(in.Base, in.Rate),
		Reference: in.Reference,
	}
}

// Year is the fiscal year a VAT input will be booked in.
func (in VATInput) Year(now time.Time) int {
	if in.Period != "" {
		if p, err := ledger.ParsePeriod(in.Period); err == nil {
			return p.Start.Year()
		}
	}
	if in.Timestamp.IsZero() {
		return now.UTC().Year()
	}
	return in.Timestamp.UTC().Year()
}

// Year is the fiscal year a cash input will be booked in.
func (in TransactionInput) Year(now time.Time) int {
	if in.Timestamp.IsZero() {
		return now.UTC().Year()
	}
	return in.Timestamp.UTC().Year()
}

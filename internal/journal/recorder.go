package journal

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/tax"
	"go.uber.org/zap"
)

// Recorded is what a document event appended. Either side may be nil.
type Recorded struct {
	Cash *Transaction `json:"cash,omitempty"`
	VAT  *VATEntry    `json:"vat,omitempty"`
}

// Recorder turns document lifecycle events into cash ledger and VAT journal
// appends.
type Recorder struct {
	cash     CashLedger
	vat      VATJournal
	schedule tax.Schedule
	log      *zap.Logger
}

func NewRecorder(cash CashLedger, vat VATJournal, schedule tax.Schedule, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{cash: cash, vat: vat, schedule: schedule, log: log}
}

func invoiceRef(inv ledger.Invoice) string {
	if inv.Number != "" {
		return inv.Number
	}
	return inv.ID
}

func checkInvoice(inv ledger.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	if !inv.Postable() {
		return fmt.Errorf("invoice %s is %s: %w", inv.ID, inv.Status, ledger.ErrNotPostable)
	}
	return nil
}

// InvoiceValidated logs the collected VAT of the invoice. Invoices without
// VAT record nothing.
func (r *Recorder) InvoiceValidated(ctx context.Context, inv ledger.Invoice) (Recorded, error) {
	if err := checkInvoice(inv); err != nil {
		return Recorded{}, err
	}
	t := inv.Totals()
	if !t.VATAmount.IsPositive() {
		return Recorded{}, nil
	}
	e, err := r.vat.LogOperation(ctx, VATInput{
		Timestamp: inv.Date.Time,
		Type:      VATCollected,
		Base:      t.TotalHT,
		Rate:      inv.VATRate,
		Reference: invoiceRef(inv),
	})
	if err != nil {
		return Recorded{}, fmt.Errorf("log collected vat for invoice %s: %w", inv.ID, err)
	}
	r.log.Info("collected vat logged", zap.String("invoice", inv.ID), zap.String("amount", e.Amount.StringFixed(3)))
	return Recorded{VAT: &e}, nil
}

// InvoicePaid records the cash received, net of withholding.
func (r *Recorder) InvoicePaid(ctx context.Context, inv ledger.Invoice, paidOn ledger.Date) (Recorded, error) {
	if err := checkInvoice(inv); err != nil {
		return Recorded{}, err
	}
	t := inv.Totals()
	label := "Paiement facture " + invoiceRef(inv)
	if inv.ClientName != "" {
		label += " - " + inv.ClientName
	}
	txn, err := r.cash.Record(ctx, TransactionInput{
		Timestamp:     paidOn.Time,
		Type:          Income,
		Amount:        t.NetToPay,
		ReferenceType: SourceInvoice,
		ReferenceID:   inv.ID,
		Category:      "SALES",
		Description:   label,
	})
	if err != nil {
		return Recorded{}, fmt.Errorf("record payment for invoice %s: %w", inv.ID, err)
	}
	r.log.Info("invoice payment recorded", zap.String("invoice", inv.ID), zap.String("amount", txn.Amount.StringFixed(3)))
	return Recorded{Cash: &txn}, nil
}

// ExpenseValidated logs the deductible VAT of the expense. Non-deductible
// expenses and expenses without VAT record nothing.
func (r *Recorder) ExpenseValidated(ctx context.Context, exp ledger.Expense) (Recorded, error) {
	if err := exp.Validate(); err != nil {
		return Recorded{}, err
	}
	if !exp.Deductible || !exp.VATAmount.IsPositive() {
		return Recorded{}, nil
	}
	rate := exp.VATRate
	if rate.IsZero() && exp.AmountHT.IsPositive() {
		// only the VAT amount was captured
		rate = exp.VATAmount.Mul(decimal.NewFromInt(100)).Div(exp.AmountHT).Round(money.Places)
	}
	e, err := r.vat.LogOperation(ctx, VATInput{
		Timestamp: exp.Date.Time,
		Type:      VATDeductible,
		Base:      exp.AmountHT,
		Rate:      rate,
		Reference: exp.ID,
	})
	if err != nil {
		return Recorded{}, fmt.Errorf("log deductible vat for expense %s: %w", exp.ID, err)
	}
	return Recorded{VAT: &e}, nil
}

// ExpensePaid records the cash paid out, TTC, against the expense's vehicle.
func (r *Recorder) ExpensePaid(ctx context.Context, exp ledger.Expense, paidOn ledger.Date) (Recorded, error) {
	if err := exp.Validate(); err != nil {
		return Recorded{}, err
	}
	desc := exp.Description
	if desc == "" {
		desc = string(exp.Category)
	}
	txn, err := r.cash.Record(ctx, TransactionInput{
		Timestamp:     paidOn.Time,
		Type:          Outflow,
		Amount:        money.Round(exp.AmountTTC),
		ReferenceType: SourceExpense,
		ReferenceID:   exp.ID,
		Category:      string(exp.Category),
		Description:   desc,
		VehicleID:     exp.VehicleID,
	})
	if err != nil {
		return Recorded{}, fmt.Errorf("record payment for expense %s: %w", exp.ID, err)
	}
	return Recorded{Cash: &txn}, nil
}

// SalaryPaid records the net salary paid to one employee for the month of
// paidOn.
func (r *Recorder) SalaryPaid(ctx context.Context, emp ledger.Employee, paidOn ledger.Date) (Recorded, error) {
	if err := emp.Validate(); err != nil {
		return Recorded{}, err
	}
	if paidOn.IsZero() {
		return Recorded{}, ledger.ErrMissingPayrollDate
	}
	p := r.schedule.ComputePayroll(emp.PayrollInput())
	name := emp.Name
	if name == "" {
		name = emp.ID
	}
	txn, err := r.cash.Record(ctx, TransactionInput{
		Timestamp:     paidOn.Time,
		Type:          Outflow,
		Amount:        p.Net,
		ReferenceType: SourceSalary,
		ReferenceID:   accounting.PayrollReference(emp.ID, paidOn),
		Category:      string(ledger.CategorySalary),
		Description:   fmt.Sprintf("Salaire %s - %s", paidOn.MonthKey(), name),
	})
	if err != nil {
		return Recorded{}, fmt.Errorf("record salary for employee %s: %w", emp.ID, err)
	}
	return Recorded{Cash: &txn}, nil
}

// Package vat reconciles collected against deductible VAT for a period.
package vat

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

type Alert string

const (
	AlertNone        Alert = "NONE"
	AlertHighPayable Alert = "HIGH_PAYABLE"
	AlertLargeCredit Alert = "LARGE_CREDIT"
)

// Policy holds the advisory thresholds. Alerts never block a declaration.
type Policy struct {
	HighPayableThreshold decimal.Decimal `json:"high_payable_threshold" mapstructure:"high_payable_threshold"`
	LargeCreditThreshold decimal.Decimal `json:"large_credit_threshold" mapstructure:"large_credit_threshold"`
}

func DefaultPolicy() Policy {
	return Policy{
		HighPayableThreshold: decimal.NewFromInt(5000),
		LargeCreditThreshold: decimal.NewFromInt(-2000),
	}
}

type Reconciliation struct {
	Period      string          `json:"period"`
	Collected   decimal.Decimal `json:"collected"`
	Deductible  decimal.Decimal `json:"deductible"`
	PriorCredit decimal.Decimal `json:"prior_credit"`
	Net         decimal.Decimal `json:"net"`
	Payable     decimal.Decimal `json:"payable"`
	Credit      decimal.Decimal `json:"credit"`
	Alert       Alert           `json:"alert"`
	Message     string          `json:"message,omitempty"`
}

// FromEntries reconciles from generated ledger lines dated within [from, to].
func (p Policy) FromEntries(entries []ledger.Entry, from, to ledger.Date, priorCredit decimal.Decimal) (Reconciliation, error) {
	period, err := ledger.RangePeriod(from, to)
	if err != nil {
		return Reconciliation{}, err
	}
	return p.FromPeriod(entries, period, priorCredit), nil
}

// FromPeriod reconciles from generated ledger lines within period.
func (p Policy) FromPeriod(entries []ledger.Entry, period ledger.Period, priorCredit decimal.Decimal) Reconciliation {
	in := ledger.InPeriod(entries, period)
	collected := ledger.SumCredits(in, ledger.IsAccount(ledger.AccountVATCollected))
	deductible := ledger.SumDebits(in, ledger.IsAccount(ledger.AccountVATDeductible))
	return p.Reconcile(period.Key, collected, deductible, priorCredit)
}

// FromJournal reconciles from VAT journal entries whose period key matches.
func (p Policy) FromJournal(entries []journal.VATEntry, periodKey string, priorCredit decimal.Decimal) Reconciliation {
	collected, deductible := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Period != periodKey {
			continue
		}
		switch e.Type {
		case journal.VATCollected:
			collected = collected.Add(e.Amount)
		case journal.VATDeductible:
			deductible = deductible.Add(e.Amount)
		}
	}
	return p.Reconcile(periodKey, collected, deductible, priorCredit)
}

// Reconcile computes net = collected − deductible − priorCredit and splits it
// into payable or carry-forward credit.
func (p Policy) Reconcile(period string, collected, deductible, priorCredit decimal.Decimal) Reconciliation {
	r := Reconciliation{
		Period:      period,
		Collected:   money.Round(collected),
		Deductible:  money.Round(deductible),
		PriorCredit: money.Round(priorCredit),
		Payable:     decimal.Zero,
		Credit:      decimal.Zero,
		Alert:       AlertNone,
	}
	r.Net = money.Round(r.Collected.Sub(r.Deductible).Sub(r.PriorCredit))
	switch {
	case r.Net.IsPositive():
		r.Payable = r.Net
	case r.Net.IsNegative():
		r.Credit = r.Net.Abs()
	}

	switch {
	case r.Net.GreaterThan(p.HighPayableThreshold):
		r.Alert = AlertHighPayable
		r.Message = fmt.Sprintf("VAT payable of %s TND exceeds %s TND; check treasury before the filing deadline",
			money.Format(r.Payable), money.Format(p.HighPayableThreshold))
	case r.Net.LessThan(p.LargeCreditThreshold):
		r.Alert = AlertLargeCredit
		r.Message = fmt.Sprintf("VAT credit of %s TND is large; consider a refund request",
			money.Format(r.Credit))
	}
	return r
}

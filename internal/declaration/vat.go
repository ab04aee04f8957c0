// Package declaration projects the ledger and the source documents onto the
// statutory returns: VAT, withholding tax, CNSS, corporate tax and the
// client and supplier statements.
//
// Every projection is a pure function. Empty inputs give zero-valued
// declarations.
package declaration

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/vat"
)

type SalesSection struct {
	BaseHT       decimal.Decimal `json:"base_ht"`
	VATCollected decimal.Decimal `json:"vat_collected"`
}

type PurchasesSection struct {
	BaseHT        decimal.Decimal `json:"base_ht"`
	VATDeductible decimal.Decimal `json:"vat_deductible"`
}

type VATDeclaration struct {
	Period      string           `json:"period"`
	Sales       SalesSection     `json:"sales"`
	Purchases   PurchasesSection `json:"purchases"`
	StampDuty   decimal.Decimal  `json:"stamp_duty"`
	PriorCredit decimal.Decimal  `json:"prior_credit"`
	Net         decimal.Decimal  `json:"net"`
	VATPayable  decimal.Decimal  `json:"vat_payable"`
	VATCredit   decimal.Decimal  `json:"vat_credit"`
	Alert       vat.Alert        `json:"alert"`
	Message     string           `json:"message,omitempty"`

	// Skipped lists the documents that could not be posted to the ledger
	// the return was built from.
	Skipped []accounting.RecordError `json:"skipped,omitempty"`
}

// VAT builds the monthly VAT return from generated ledger lines.
func VAT(entries []ledger.Entry, period ledger.Period, priorCredit decimal.Decimal, policy vat.Policy) (VATDeclaration, error) {
	if period.Kind != ledger.PeriodMonth {
		return VATDeclaration{}, fmt.Errorf("vat return needs a month, got %q: %w", period.Key, ledger.ErrInvalidPeriod)
	}
	in := ledger.InPeriod(entries, period)
	rec := policy.FromPeriod(in, period, priorCredit)

	return VATDeclaration{
		Period: period.Key,
		Sales: SalesSection{
			BaseHT:       money.Round(ledger.SumCredits(in, ledger.IsType(ledger.TypeRevenue))),
			VATCollected: rec.Collected,
		},
		Purchases: PurchasesSection{
			BaseHT:        money.Round(ledger.SumDebits(in, ledger.IsType(ledger.TypeExpense))),
			VATDeductible: rec.Deductible,
		},
		StampDuty:   money.Round(ledger.SumCredits(in, ledger.IsAccount(ledger.AccountStampDuty))),
		PriorCredit: rec.PriorCredit,
		Net:         rec.Net,
		VATPayable:  rec.Payable,
		VATCredit:   rec.Credit,
		Alert:       rec.Alert,
		Message:     rec.Message,
	}, nil
}

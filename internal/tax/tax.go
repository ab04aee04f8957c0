// Package tax holds the stateless Tunisian tax calculators: HT/TTC and VAT
// conversions, withholding at source, and payroll (CNSS and IRPP).
package tax

import (
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/money"
)

// WithholdingThreshold is the TTC amount from which the law expects a 1%
// withholding on supplier payments. It is guidance only: the issuer opts in.
var WithholdingThreshold = decimal.NewFromInt(1000)

var hundred = decimal.NewFromInt(100)

// TTCFromHT returns ht + VAT(ht) + stamp.
func TTCFromHT(ht, vatRate, stamp decimal.Decimal) decimal.Decimal {
	return money.Round(ht.Add(VATAmount(ht, vatRate)).Add(stamp))
}

// HTFromTTC strips stamp and VAT from a tax-inclusive amount.
func HTFromTTC(ttc, vatRate, stamp decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(vatRate.Div(hundred))
	return money.Round(ttc.Sub(stamp).Div(factor))
}

// VATAmount returns ht × rate / 100.
func VATAmount(ht, vatRate decimal.Decimal) decimal.Decimal {
	return money.Percent(ht, vatRate)
}

// WithholdingAmount returns ttc × rate / 100 when the withholding was
// declared on the document, zero otherwise.
func WithholdingAmount(ttc, rate decimal.Decimal, forced bool) decimal.Decimal {
	if !forced {
		return decimal.Zero
	}
	return money.Percent(ttc, rate)
}

// WithholdingAdvised reports whether a document of this TTC amount reaches
// the legal withholding threshold. Callers use it to suggest, not to enforce.
func WithholdingAdvised(ttc decimal.Decimal) bool {
	return ttc.GreaterThanOrEqual(WithholdingThreshold)
}

package declaration

import (
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

// CorporatePolicy carries the flat rate and the expense categories whose cost
// is added back to the taxable profit.
type CorporatePolicy struct {
	Rate                    decimal.Decimal          `json:"rate" mapstructure:"rate"`
	NonDeductibleCategories []ledger.ExpenseCategory `json:"non_deductible_categories" mapstructure:"non_deductible_categories"`
}

func DefaultCorporatePolicy() CorporatePolicy {
	return CorporatePolicy{Rate: decimal.NewFromInt(15)}
}

func (p CorporatePolicy) nonDeductible(c ledger.ExpenseCategory) bool {
	for _, nd := range p.NonDeductibleCategories {
		if nd == c {
			return true
		}
	}
	return false
}

type CorporateTaxDeclaration struct {
	Year               int             `json:"year"`
	Revenue            decimal.Decimal `json:"revenue"`
	DeductibleExpenses decimal.Decimal `json:"deductible_expenses"`
	NonDeductible      decimal.Decimal `json:"non_deductible"`
	TaxableProfit      decimal.Decimal `json:"taxable_profit"`
	Rate               decimal.Decimal `json:"rate"`
	Tax                decimal.Decimal `json:"tax"`

	Skipped []accounting.RecordError `json:"skipped,omitempty"`
}

// CorporateTax builds the annual return. Expenses are only read to find the
// non-deductible add-backs.
func CorporateTax(entries []ledger.Entry, expenses []ledger.Expense, year int, policy CorporatePolicy) CorporateTaxDeclaration {
	period := ledger.YearPeriod(year)
	in := ledger.InPeriod(entries, period)

	addBack := decimal.Zero
	for _, exp := range expenses {
		if period.Contains(exp.Date) && policy.nonDeductible(exp.Category) {
			addBack = addBack.Add(exp.Cost())
		}
	}

	out := CorporateTaxDeclaration{
		Year:               year,
		Revenue:            money.Round(ledger.SumCredits(in, ledger.IsType(ledger.TypeRevenue))),
		DeductibleExpenses: money.Round(ledger.SumDebits(in, ledger.IsType(ledger.TypeExpense))),
		NonDeductible:      money.Round(addBack),
		Rate:               policy.Rate,
	}
	out.TaxableProfit = money.Round(out.Revenue.Sub(out.DeductibleExpenses).Add(out.NonDeductible))
	out.Tax = money.Percent(money.Max0(out.TaxableProfit), policy.Rate)
	return out
}

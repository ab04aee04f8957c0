package declaration

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/tax"
)

// WithholdingBucket is one line of the withholding return.
type WithholdingBucket struct {
	Beneficiaries int             `json:"beneficiaries"`
	Base          decimal.Decimal `json:"base"`
	Amount        decimal.Decimal `json:"amount"`
}

// WithholdingDeclaration is the monthly withholding return. Fees covers
// professional fees and rent paid to suppliers that carry a withholding rate.
type WithholdingDeclaration struct {
	Period   string                   `json:"period"`
	Salaries WithholdingBucket        `json:"salaries"`
	Fees     WithholdingBucket        `json:"fees"`
	Total    decimal.Decimal          `json:"total"`
	Skipped  []accounting.RecordError `json:"skipped,omitempty"`
}

func zeroBucket() WithholdingBucket {
	return WithholdingBucket{Base: decimal.Zero, Amount: decimal.Zero}
}

// Withholding builds the monthly withholding return. The salary bucket holds
// the monthly IRPP of the whole roster; the base is the gross payroll. Fee
// beneficiaries are counted once per supplier. Invalid documents are left
// out and listed in Skipped.
func Withholding(employees []ledger.Employee, expenses []ledger.Expense, period ledger.Period, schedule tax.Schedule) (WithholdingDeclaration, error) {
	if period.Kind != ledger.PeriodMonth {
		return WithholdingDeclaration{}, fmt.Errorf("withholding return needs a month, got %q: %w", period.Key, ledger.ErrInvalidPeriod)
	}
	out := WithholdingDeclaration{
		Period:   period.Key,
		Salaries: zeroBucket(),
		Fees:     zeroBucket(),
	}

	for _, emp := range employees {
		if err := emp.Validate(); err != nil {
			out.Skipped = append(out.Skipped, accounting.NewRecordError(ledger.RefEmployee, emp.ID, err))
			continue
		}
		p := schedule.ComputePayroll(emp.PayrollInput())
		out.Salaries.Beneficiaries++
		out.Salaries.Base = out.Salaries.Base.Add(p.Gross)
		out.Salaries.Amount = out.Salaries.Amount.Add(p.MonthlyTax)
	}

	suppliers := map[string]bool{}
	for _, exp := range expenses {
		if !exp.WithholdingRate.IsPositive() || !period.Contains(exp.Date) {
			continue
		}
		if err := exp.Validate(); err != nil {
			out.Skipped = append(out.Skipped, accounting.NewRecordError(ledger.RefExpense, exp.ID, err))
			continue
		}
		key, _ := SupplierKey(exp)
		suppliers[key] = true
		out.Fees.Base = out.Fees.Base.Add(exp.AmountTTC)
		out.Fees.Amount = out.Fees.Amount.Add(exp.WithholdingAmount())
	}

	out.Fees.Beneficiaries = len(suppliers)
	out.Salaries.Base = money.Round(out.Salaries.Base)
	out.Salaries.Amount = money.Round(out.Salaries.Amount)
	out.Fees.Base = money.Round(out.Fees.Base)
	out.Fees.Amount = money.Round(out.Fees.Amount)
	out.Total = money.Sum(out.Salaries.Amount, out.Fees.Amount)
	return out, nil
}

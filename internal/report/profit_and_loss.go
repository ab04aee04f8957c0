package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

// TurnoverBasis selects whether turnover is read before or after taxes.
// There is no default: callers always choose.
type TurnoverBasis string

const (
	BasisHT  TurnoverBasis = "HT"
	BasisTTC TurnoverBasis = "TTC"
)

func ParseTurnoverBasis(s string) (TurnoverBasis, error) {
	switch b := TurnoverBasis(strings.ToUpper(strings.TrimSpace(s))); b {
	case BasisHT, BasisTTC:
		return b, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ledger.ErrInvalidTurnoverBasis)
	}
}

type PLLine struct {
	AccountCode  string          `json:"account_code"`
	AccountLabel string          `json:"account_label"`
	Amount       decimal.Decimal `json:"amount"`
}

// ProfitAndLoss is an analytics view. Expenses never include recovered VAT,
// whatever the basis.
type ProfitAndLoss struct {
	Period        string          `json:"period"`
	Basis         TurnoverBasis   `json:"basis"`
	Turnover      decimal.Decimal `json:"turnover"`
	Revenue       []PLLine        `json:"revenue"`
	Expenses      []PLLine        `json:"expenses"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Result        decimal.Decimal `json:"result"`
}

// BuildProfitAndLoss summarises revenue and expense accounts over p. With
// BasisTTC the collected VAT and stamp duty are added to turnover.
func BuildProfitAndLoss(entries []ledger.Entry, p ledger.Period, basis TurnoverBasis) (ProfitAndLoss, error) {
	if basis != BasisHT && basis != BasisTTC {
		return ProfitAndLoss{}, fmt.Errorf("%q: %w", basis, ledger.ErrInvalidTurnoverBasis)
	}
	in := ledger.InPeriod(entries, p)

	pl := ProfitAndLoss{
		Period:   p.Key,
		Basis:    basis,
		Revenue:  byAccount(in, ledger.TypeRevenue),
		Expenses: byAccount(in, ledger.TypeExpense),
	}
	turnover := ledger.SumCredits(in, ledger.IsType(ledger.TypeRevenue))
	if basis == BasisTTC {
		turnover = turnover.
			Add(ledger.SumCredits(in, ledger.IsAccount(ledger.AccountVATCollected))).
			Add(ledger.SumCredits(in, ledger.IsAccount(ledger.AccountStampDuty)))
	}
	pl.Turnover = money.Round(turnover)
	pl.TotalExpenses = money.Round(ledger.SumDebits(in, ledger.IsType(ledger.TypeExpense)))
	pl.Result = money.Round(pl.Turnover.Sub(pl.TotalExpenses))
	return pl, nil
}

func byAccount(entries []ledger.Entry, typ ledger.AccountType) []PLLine {
	sums := map[string]decimal.Decimal{}
	match := ledger.IsType(typ)
	for _, e := range entries {
		if !match(e.AccountCode) {
			continue
		}
		if typ == ledger.TypeRevenue {
			sums[e.AccountCode] = sums[e.AccountCode].Add(e.Credit).Sub(e.Debit)
		} else {
			sums[e.AccountCode] = sums[e.AccountCode].Add(e.Debit).Sub(e.Credit)
		}
	}
	out := make([]PLLine, 0, len(sums))
	for code, amount := range sums {
		out = append(out, PLLine{AccountCode: code, AccountLabel: ledger.Label(code), Amount: money.Round(amount)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountCode < out[j].AccountCode })
	return out
}

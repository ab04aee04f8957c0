// Package report aggregates generated ledger lines and the cash ledger for
// analysis. Nothing here feeds a statutory declaration.
package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

type TrialBalanceLine struct {
	AccountCode  string             `json:"account_code"`
	AccountLabel string             `json:"account_label"`
	Type         ledger.AccountType `json:"type"`
	Debit        decimal.Decimal    `json:"debit"`
	Credit       decimal.Decimal    `json:"credit"`
}

// Balance is the net position, positive on the debit side.
func (l TrialBalanceLine) Balance() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

type TrialBalance struct {
	Period      string             `json:"period,omitempty"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	Balanced    bool               `json:"balanced"`
}

// BuildTrialBalance nets every account to a single debit or credit figure.
// Accounts that net to zero are left out.
func BuildTrialBalance(entries []ledger.Entry) TrialBalance {
	net := map[string]decimal.Decimal{}
	for _, e := range entries {
		net[e.AccountCode] = net[e.AccountCode].Add(e.Signed())
	}

	tb := TrialBalance{Lines: []TrialBalanceLine{}, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for code, balance := range net {
		balance = money.Round(balance)
		if balance.IsZero() {
			continue
		}
		typ, _ := ledger.TypeForCode(code)
		line := TrialBalanceLine{
			AccountCode:  code,
			AccountLabel: ledger.Label(code),
			Type:         typ,
			Debit:        decimal.Zero,
			Credit:       decimal.Zero,
		}
		if balance.IsPositive() {
			line.Debit = balance
			tb.TotalDebit = tb.TotalDebit.Add(balance)
		} else {
			line.Credit = balance.Neg()
			tb.TotalCredit = tb.TotalCredit.Add(line.Credit)
		}
		tb.Lines = append(tb.Lines, line)
	}
	sort.Slice(tb.Lines, func(i, j int) bool { return tb.Lines[i].AccountCode < tb.Lines[j].AccountCode })

	tb.Balanced = tb.TotalDebit.Equal(tb.TotalCredit)
	return tb
}

// TrialBalanceFor restricts the trial balance to lines dated within p.
func TrialBalanceFor(entries []ledger.Entry, p ledger.Period) TrialBalance {
	tb := BuildTrialBalance(ledger.InPeriod(entries, p))
	tb.Period = p.Key
	return tb
}

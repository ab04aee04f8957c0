package tui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

// accountDetailModel is the ledger of one account: its postings in the
// current journal with a running balance on the account's normal side.
type accountDetailModel struct {
	account ledger.ChartEntry
	lines   []ledger.Entry
	width   int
}

func (m *accountDetailModel) show(account ledger.ChartEntry, entries []ledger.Entry) {
	m.account = account
	m.lines = nil
	for _, e := range entries {
		if e.AccountCode == account.Code {
			m.lines = append(m.lines, e)
		}
	}
}

func (m *accountDetailModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Account: %s", m.account.Code)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Label:"), m.account.Label))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), ledger.TypeLabel(m.account.Type)))
	normal := ledger.NormalBalance(m.account.Type)
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Normal balance:"), normal))
	if m.account.Description != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Description:"), m.account.Description))
	}
	b.WriteString("\n")

	if len(m.lines) == 0 {
		b.WriteString(dimStyle.Render("  No postings in this period."))
		b.WriteString("\n\n" + dimStyle.Render("  Press ESC to go back"))
		return b.String()
	}

	header := fmt.Sprintf("  %-10s %-16s %-30s %14s %14s %14s", "DATE", "REFERENCE", "LABEL", "DEBIT", "CREDIT", "BALANCE")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	balance := decimal.Zero
	for _, e := range m.lines {
		if normal == "debit" {
			balance = balance.Add(e.Debit).Sub(e.Credit)
		} else {
			balance = balance.Add(e.Credit).Sub(e.Debit)
		}
		line := fmt.Sprintf("  %-10s %-16s %-30s %14s %14s %14s",
			e.Date, truncate(e.ReferenceID, 16), truncate(e.Label, 30),
			blankZero(e.Debit), blankZero(e.Credit), money.FormatSigned(balance))
		if e.Debit.IsPositive() {
			b.WriteString(debitStyle.Render(line))
		} else {
			b.WriteString(creditStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}

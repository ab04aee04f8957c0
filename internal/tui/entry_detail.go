package tui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/ledger"
)

// entryDetailModel shows every line posted for one source document.
type entryDetailModel struct {
	ref   string
	lines []ledger.Entry
	width int
}

func (m *entryDetailModel) show(ref string, entries []ledger.Entry) {
	m.ref = ref
	m.lines = m.lines[:0]
	for _, e := range entries {
		if e.ReferenceID == ref {
			m.lines = append(m.lines, e)
		}
	}
}

func (m *entryDetailModel) view() string {
	if len(m.lines) == 0 {
		return dimStyle.Render("No lines for " + m.ref)
	}

	var b strings.Builder
	first := m.lines[0]

	b.WriteString(titleStyle.Render(fmt.Sprintf("Document: %s", m.ref)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), first.ReferenceType))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Journal:"), first.Journal))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Date:"), first.Date))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-4s %-8s %-40s %14s %14s", "SIDE", "ACCOUNT", "LABEL", "DEBIT", "CREDIT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range m.lines {
		side := "DR"
		style := debitStyle
		if e.Credit.IsPositive() {
			side = "CR"
			style = creditStyle
		}
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
		line := fmt.Sprintf("  %-4s %-8s %-40s %14s %14s",
			side, e.AccountCode, truncate(e.AccountLabel, 40), blankZero(e.Debit), blankZero(e.Credit))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("  %s\n", strings.Repeat("─", 86)))
	b.WriteString(fmt.Sprintf("  %-54s %14s %14s\n", "Total", blankZero(debit), blankZero(credit)))
	if debit.Equal(credit) {
		b.WriteString(successStyle.Render("  [BALANCED]"))
	} else {
		b.WriteString(errorStyle.Render("  [UNBALANCED!]"))
	}

	b.WriteString("\n\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}

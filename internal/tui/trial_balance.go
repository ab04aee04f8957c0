package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/report"
)

type trialBalanceLoadedMsg struct {
	tb  *report.TrialBalance
	err error
}

type trialBalanceModel struct {
	tb      *report.TrialBalance
	loading bool
	err     error
	width   int
	height  int
}

func (m *trialBalanceModel) init(c *client.Client, req client.DocumentsRequest) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		tb, err := c.TrialBalance(context.Background(), req)
		return trialBalanceLoadedMsg{tb: tb, err: err}
	}
}

func (m trialBalanceModel) update(msg tea.Msg) (trialBalanceModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trialBalanceLoadedMsg:
		m.loading = false
		m.tb = msg.tb
		m.err = msg.err
	}
	return m, nil
}

func (m *trialBalanceModel) view() string {
	if m.loading {
		return "Loading trial balance..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.tb == nil {
		return dimStyle.Render("No data available.")
	}

	var b strings.Builder
	w := m.width
	if w < 60 {
		w = 80
	}
	// fixed columns: indent(4)+code(8)+3 amounts of 14 and their gaps
	nameW := w - 58
	if nameW < 10 {
		nameW = 10
	}
	if nameW > 40 {
		nameW = 40
	}
	totalLabelW := nameW + 9

	heading := "TRIAL BALANCE"
	if m.tb.Period != "" {
		heading += " " + m.tb.Period
	}
	b.WriteString(titleStyle.Render(centerStr(heading, w)))
	b.WriteString("\n")

	byType := make(map[ledger.AccountType][]report.TrialBalanceLine)
	for _, l := range m.tb.Lines {
		byType[l.Type] = append(byType[l.Type], l)
	}

	for _, t := range ledger.AllTypes {
		lines := byType[t]
		if len(lines) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render(ledger.TypeLabel(t))))
		debit, credit := decimal.Zero, decimal.Zero
		for _, l := range lines {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)
			b.WriteString(fmt.Sprintf("    %-8s %-*s %14s %14s %14s\n",
				l.AccountCode, nameW, truncate(l.AccountLabel, nameW), blankZero(l.Debit), blankZero(l.Credit), money.FormatSigned(l.Balance())))
		}
		b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("─", w-8)))
		b.WriteString(fmt.Sprintf("    %-*s %14s %14s\n\n", totalLabelW, "Total "+ledger.TypeLabel(t), blankZero(debit), blankZero(credit)))
	}

	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("═", w-8)))
	b.WriteString(fmt.Sprintf("    %-*s %14s %14s\n", totalLabelW, "Totals", blankZero(m.tb.TotalDebit), blankZero(m.tb.TotalCredit)))

	b.WriteString("\n")
	if m.tb.Balanced {
		b.WriteString(successStyle.Render("    [BALANCED]"))
	} else {
		b.WriteString(errorStyle.Render("    [UNBALANCED!]"))
	}
	return b.String()
}

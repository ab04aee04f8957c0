package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/money"
)

const cashPageSize = 500

type cashLoadedMsg struct {
	txns []journal.Transaction
	err  error
}

type cashModel struct {
	txns    []journal.Transaction
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *cashModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		txns, err := c.ListCash(context.Background(), client.CashFilter{Limit: cashPageSize})
		return cashLoadedMsg{txns: txns, err: err}
	}
}

func (m cashModel) update(msg tea.Msg) (cashModel, tea.Cmd) {
	switch msg := msg.(type) {
	case cashLoadedMsg:
		m.loading = false
		m.txns = msg.txns
		m.err = msg.err
		if m.cursor >= len(m.txns) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.txns)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *cashModel) view() string {
	if m.loading {
		return "Loading cash journal..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.txns) == 0 {
		return dimStyle.Render("No cash movements recorded.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Cash Journal"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-16s %-7s %14s %-4s %-8s %-10s %s", "DATE", "TYPE", "AMOUNT", "CCY", "SOURCE", "VEHICLE", "DESCRIPTION")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := visibleRange(m.cursor, m.height-6, len(m.txns))
	for i := start; i < end; i++ {
		t := m.txns[i]
		line := fmt.Sprintf("  %-16s %-7s %14s %-4s %-8s %-10s %s",
			t.Timestamp.Local().Format("2006-01-02 15:04"), t.Type,
			money.FormatAmount(t.Amount, t.Currency), t.Currency, t.ReferenceType,
			truncate(t.VehicleID, 10), truncate(t.Description, 30))
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case t.Type == journal.Income:
			b.WriteString(debitStyle.Render(line))
		default:
			b.WriteString(creditStyle.Render(line))
		}
		b.WriteString("\n")
	}

	// Per-currency net: amounts in different currencies are never added.
	net := make(map[string]decimal.Decimal)
	var currencies []string
	for _, t := range m.txns {
		if _, ok := net[t.Currency]; !ok {
			currencies = append(currencies, t.Currency)
		}
		if t.Type == journal.Income {
			net[t.Currency] = net[t.Currency].Add(t.Amount)
		} else {
			net[t.Currency] = net[t.Currency].Sub(t.Amount)
		}
	}
	b.WriteString(fmt.Sprintf("\n  %d movements", len(m.txns)))
	for _, ccy := range currencies {
		b.WriteString(fmt.Sprintf("   net %s %s", money.FormatSigned(net[ccy]), ccy))
	}
	return b.String()
}

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/ledger"
)

type chartLoadedMsg struct {
	accounts []ledger.ChartEntry
	err      error
}

type chartModel struct {
	accounts []ledger.ChartEntry
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func (m *chartModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		accounts, err := c.GetChart(context.Background())
		return chartLoadedMsg{accounts: accounts, err: err}
	}
}

func (m chartModel) update(msg tea.Msg) (chartModel, tea.Cmd) {
	switch msg := msg.(type) {
	case chartLoadedMsg:
		m.loading = false
		m.accounts = msg.accounts
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.accounts)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *chartModel) selected() *ledger.ChartEntry {
	if m.cursor >= 0 && m.cursor < len(m.accounts) {
		return &m.accounts[m.cursor]
	}
	return nil
}

func (m *chartModel) view() string {
	if m.loading {
		return "Loading chart of accounts..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Chart of Accounts"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-8s %-45s %-10s %s", "CODE", "LABEL", "TYPE", "NORMAL")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := visibleRange(m.cursor, m.height-4, len(m.accounts))
	for i := start; i < end; i++ {
		a := m.accounts[i]
		line := fmt.Sprintf("  %-8s %-45s %-10s %s", a.Code, truncate(a.Label, 45), a.Type, ledger.NormalBalance(a.Type))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d accounts", len(m.accounts)))
	return b.String()
}

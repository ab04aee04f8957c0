package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/ledger"
)

type entriesLoadedMsg struct {
	entries []ledger.Entry
	errors  []accounting.RecordError
	err     error
}

// entryListModel is the general journal of the loaded documents, limited to
// the selected period.
type entryListModel struct {
	entries []ledger.Entry
	skipped []accounting.RecordError
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *entryListModel) init(c *client.Client, req client.DocumentsRequest) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		res, err := c.GenerateLedger(context.Background(), req)
		if err != nil {
			return entriesLoadedMsg{err: err}
		}
		entries := res.Entries
		if req.Period != "" {
			if p, err := ledger.ParsePeriod(req.Period); err == nil {
				entries = inPeriod(entries, p)
			}
		}
		return entriesLoadedMsg{entries: entries, errors: res.Errors}
	}
}

func inPeriod(entries []ledger.Entry, p ledger.Period) []ledger.Entry {
	out := make([]ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

func (m entryListModel) update(msg tea.Msg) (entryListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		m.loading = false
		m.entries = msg.entries
		m.skipped = msg.errors
		m.err = msg.err
		if m.cursor >= len(m.entries) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// selectedRef is the document behind the highlighted line.
func (m *entryListModel) selectedRef() string {
	if m.cursor >= 0 && m.cursor < len(m.entries) {
		return m.entries[m.cursor].ReferenceID
	}
	return ""
}

func (m *entryListModel) view() string {
	if m.loading {
		return "Generating journal..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.entries) == 0 && len(m.skipped) == 0 {
		return dimStyle.Render("No journal entries for this period.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("General Journal"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-10s %-4s %-8s %-36s %14s %14s", "DATE", "JNL", "ACCOUNT", "LABEL", "DEBIT", "CREDIT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := visibleRange(m.cursor, m.height-6, len(m.entries))
	for i := start; i < end; i++ {
		e := m.entries[i]
		line := fmt.Sprintf("  %-10s %-4s %-8s %-36s %14s %14s",
			e.Date, e.Journal, e.AccountCode, truncate(e.Label, 36), blankZero(e.Debit), blankZero(e.Credit))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d entries", len(m.entries)))
	if len(m.skipped) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  %d document(s) skipped:", len(m.skipped))))
		for _, r := range m.skipped {
			b.WriteString(warnStyle.Render(fmt.Sprintf("\n    %s %s: %s", r.RefType, r.RefID, r.Message)))
		}
	}
	return b.String()
}

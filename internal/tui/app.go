package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

type mode int

const (
	modeJournal mode = iota
	modeEntryDetail
	modeChart
	modeAccountDetail
	modeTrialBalance
	modeDeclarations
	modeCash
)

var tabModes = []mode{modeJournal, modeChart, modeTrialBalance, modeDeclarations, modeCash}

func tabLabel(m mode) string {
	switch m {
	case modeJournal:
		return "Journal"
	case modeChart:
		return "Chart"
	case modeTrialBalance:
		return "Trial Balance"
	case modeDeclarations:
		return "Declarations"
	case modeCash:
		return "Cash"
	default:
		return ""
	}
}

type App struct {
	client        *client.Client
	req           client.DocumentsRequest
	mode          mode
	tabIndex      int
	width, height int

	journal       entryListModel
	entryDetail   entryDetailModel
	chart         chartModel
	accountDetail accountDetailModel
	trialBalance  trialBalanceModel
	declarations  declarationsModel
	cash          cashModel
}

// NewApp browses the ledger generated from docs. A non-empty period limits
// the journal and the trial balance to it and, for a month, enables the
// declarations tab; payroll entries are then dated at the end of the period.
func NewApp(c *client.Client, docs ledger.Documents, period string) *App {
	req := client.DocumentsRequest{Documents: docs, Period: period}
	if p, err := ledger.ParsePeriod(period); err == nil {
		req.PayrollDate = p.End
	}
	return &App{
		client: c,
		req:    req,
		mode:   modeJournal,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.journal.init(a.client, a.req),
		a.chart.init(a.client),
		a.trialBalance.init(a.client, a.req),
		a.declarations.init(a.client, a.monthRequest()),
		a.cash.init(a.client),
	)
}

// monthRequest is a.req when it names a month, otherwise a request with no
// period, which leaves the declarations tab empty.
func (a *App) monthRequest() client.DocumentsRequest {
	if p, err := ledger.ParsePeriod(a.req.Period); err == nil && p.Kind == ledger.PeriodMonth {
		return a.req
	}
	r := a.req
	r.Period = ""
	return r
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.journal.width, a.journal.height = msg.Width, msg.Height-6
		a.chart.width, a.chart.height = msg.Width, msg.Height-6
		a.trialBalance.width, a.trialBalance.height = msg.Width, msg.Height-6
		a.declarations.width, a.declarations.height = msg.Width, msg.Height-6
		a.cash.width, a.cash.height = msg.Width, msg.Height-6
		a.entryDetail.width = msg.Width
		a.accountDetail.width = msg.Width
		return a, nil
	}

	// Loads are fired together from Init, so results are routed by type
	// rather than to the active tab.
	switch msg.(type) {
	case entriesLoadedMsg:
		var cmd tea.Cmd
		a.journal, cmd = a.journal.update(msg)
		return a, cmd
	case chartLoadedMsg:
		var cmd tea.Cmd
		a.chart, cmd = a.chart.update(msg)
		return a, cmd
	case trialBalanceLoadedMsg:
		var cmd tea.Cmd
		a.trialBalance, cmd = a.trialBalance.update(msg)
		return a, cmd
	case declarationsLoadedMsg:
		var cmd tea.Cmd
		a.declarations, cmd = a.declarations.update(msg)
		return a, cmd
	case cashLoadedMsg:
		var cmd tea.Cmd
		a.cash, cmd = a.cash.update(msg)
		return a, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			a.tabIndex = (a.tabIndex + 1) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			return a, nil

		case key.Matches(msg, keys.ShiftTab):
			a.tabIndex = (a.tabIndex - 1 + len(tabModes)) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			return a, nil

		case key.Matches(msg, keys.Refresh):
			return a, a.refreshTab()

		case key.Matches(msg, keys.Escape):
			switch a.mode {
			case modeEntryDetail:
				a.mode = modeJournal
			case modeAccountDetail:
				a.mode = modeChart
			}
			return a, nil

		case key.Matches(msg, keys.Enter):
			switch a.mode {
			case modeJournal:
				if ref := a.journal.selectedRef(); ref != "" {
					a.entryDetail.show(ref, a.journal.entries)
					a.mode = modeEntryDetail
				}
				return a, nil
			case modeChart:
				if acct := a.chart.selected(); acct != nil {
					a.accountDetail.show(*acct, a.journal.entries)
					a.mode = modeAccountDetail
				}
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.mode {
	case modeJournal:
		a.journal, cmd = a.journal.update(msg)
	case modeChart:
		a.chart, cmd = a.chart.update(msg)
	case modeTrialBalance:
		a.trialBalance, cmd = a.trialBalance.update(msg)
	case modeDeclarations:
		a.declarations, cmd = a.declarations.update(msg)
	case modeCash:
		a.cash, cmd = a.cash.update(msg)
	}
	return a, cmd
}

func (a *App) refreshTab() tea.Cmd {
	switch a.mode {
	case modeJournal:
		return a.journal.init(a.client, a.req)
	case modeChart:
		return a.chart.init(a.client)
	case modeTrialBalance:
		return a.trialBalance.init(a.client, a.req)
	case modeDeclarations:
		return a.declarations.init(a.client, a.monthRequest())
	case modeCash:
		return a.cash.init(a.client)
	}
	return nil
}

func (a *App) View() string {
	tabs := ""
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}
	if a.req.Period != "" {
		tabs += "  " + dimStyle.Render(a.req.Period)
	}

	var content string
	switch a.mode {
	case modeJournal:
		content = a.journal.view()
	case modeEntryDetail:
		content = a.entryDetail.view()
	case modeChart:
		content = a.chart.view()
	case modeAccountDetail:
		content = a.accountDetail.view()
	case modeTrialBalance:
		content = a.trialBalance.view()
	case modeDeclarations:
		content = a.declarations.view()
	case modeCash:
		content = a.cash.view()
	}

	helpText := dimStyle.Render("tab:switch  enter:details  esc:back  r:reload  q:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		content,
		"",
		helpText,
	)
}

// visibleRange is the window of rows around cursor that fits in height.
func visibleRange(cursor, height, n int) (int, int) {
	if height < 1 {
		height = 10
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := start + height
	if end > n {
		end = n
	}
	return start, end
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-2] + ".."
	}
	return s
}

func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money.FormatSigned(d)
}

func centerStr(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

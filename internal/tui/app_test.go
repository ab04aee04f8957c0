package tui

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/server"
	"github.com/simonvc/fiscaledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleDocs() ledger.Documents {
	return ledger.Documents{
		Invoices: []ledger.Invoice{{
			ID:       "i1",
			Number:   "F-1",
			ClientID: "cli-1",
			Status:   ledger.InvoiceValidated,
			Date:     ledger.MustParseDate("2024-05-03"),
			Lines:    []ledger.LineItem{{Description: "transport", Quantity: d("1"), UnitPrice: d("1000")}},
			VATRate:  d("19"),
			Stamp:    d("1"),
		}},
	}
}

func sampleEntries(t *testing.T) []ledger.Entry {
	t.Helper()
	res := accounting.NewGenerator().Generate(accounting.InputFrom(sampleDocs(), ledger.Date{}))
	require.Empty(t, res.Errors)
	return res.Entries
}

func press(a *App, k tea.KeyType) {
	a.Update(tea.KeyMsg{Type: k})
}

func TestApp_JournalToEntryDetail(t *testing.T) {
	app := NewApp(nil, ledger.Documents{}, "2024-05")
	entries := sampleEntries(t)
	app.Update(entriesLoadedMsg{entries: entries})

	assert.Contains(t, app.View(), "General Journal")
	press(app, tea.KeyDown)
	assert.Equal(t, 1, app.journal.cursor)

	press(app, tea.KeyEnter)
	require.Equal(t, modeEntryDetail, app.mode)
	view := app.View()
	assert.Contains(t, view, "Document: i1")
	assert.Contains(t, view, "[BALANCED]")
	assert.Len(t, app.entryDetail.lines, len(entries))

	press(app, tea.KeyEsc)
	assert.Equal(t, modeJournal, app.mode)
}

func TestApp_ChartToAccountDetail(t *testing.T) {
	app := NewApp(nil, ledger.Documents{}, "")
	entries := sampleEntries(t)
	app.Update(entriesLoadedMsg{entries: entries})
	app.Update(chartLoadedMsg{accounts: ledger.AllAccounts()})

	press(app, tea.KeyTab)
	require.Equal(t, modeChart, app.mode)

	target := entries[0].AccountCode
	for i, a := range app.chart.accounts {
		if a.Code == target {
			app.chart.cursor = i
		}
	}
	press(app, tea.KeyEnter)
	require.Equal(t, modeAccountDetail, app.mode)
	assert.Len(t, app.accountDetail.lines, 1)
	assert.Contains(t, app.View(), "Account: "+target)

	press(app, tea.KeyEsc)
	assert.Equal(t, modeChart, app.mode)
}

func TestApp_TabsWrap(t *testing.T) {
	app := NewApp(nil, ledger.Documents{}, "")
	press(app, tea.KeyShiftTab)
	assert.Equal(t, modeCash, app.mode)
	press(app, tea.KeyTab)
	assert.Equal(t, modeJournal, app.mode)
}

func TestApp_DeclarationsNeedMonth(t *testing.T) {
	app := NewApp(nil, ledger.Documents{}, "2024-Q2")
	assert.Empty(t, app.monthRequest().Period)
	assert.Equal(t, "2024-06-30", app.req.PayrollDate.String())
	assert.Nil(t, app.declarations.init(nil, app.monthRequest()))
	assert.Contains(t, app.declarations.view(), "--period YYYY-MM")
}

func TestApp_LoadsFromServer(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ts := httptest.NewServer(server.New(st, "").Handler())
	t.Cleanup(ts.Close)

	c := client.New(ts.URL)
	app := NewApp(c, sampleDocs(), "2024-05")

	app.Update(app.journal.init(c, app.req)())
	app.Update(app.trialBalance.init(c, app.req)())
	app.Update(app.declarations.init(c, app.monthRequest())())
	app.Update(app.cash.init(c)())

	require.NoError(t, app.journal.err)
	assert.Len(t, app.journal.entries, 4)

	require.NoError(t, app.trialBalance.err)
	assert.True(t, app.trialBalance.tb.Balanced)
	assert.Contains(t, app.trialBalance.view(), "[BALANCED]")

	require.NoError(t, app.declarations.err)
	assert.Equal(t, "190.000", app.declarations.vat.Sales.VATCollected.StringFixed(3))
	assert.Contains(t, app.declarations.view(), "VAT Declaration 2024-05")

	require.NoError(t, app.cash.err)
	assert.Contains(t, app.cash.view(), "No cash movements")
}

func TestVisibleRange(t *testing.T) {
	start, end := visibleRange(0, 5, 3)
	assert.Equal(t, [2]int{0, 3}, [2]int{start, end})
	start, end = visibleRange(7, 5, 20)
	assert.Equal(t, [2]int{3, 8}, [2]int{start, end})
	start, end = visibleRange(0, 0, 20)
	assert.Equal(t, [2]int{0, 10}, [2]int{start, end})
}

func TestAmountBar(t *testing.T) {
	assert.Equal(t, "██████████░░░░░░░░░░", amountBar(d("50"), d("100"), 30))
	assert.Equal(t, "░░░░░░░░░░░░░░░░░░░░", amountBar(d("50"), decimal.Zero, 30))
}

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/declaration"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/vat"
)

type declarationsLoadedMsg struct {
	vat         *declaration.VATDeclaration
	withholding *declaration.WithholdingDeclaration
	err         error
}

// declarationsModel shows the monthly VAT and withholding declarations of
// the selected month.
type declarationsModel struct {
	period      string
	vat         *declaration.VATDeclaration
	withholding *declaration.WithholdingDeclaration
	loading     bool
	err         error
	width       int
	height      int
}

func (m *declarationsModel) init(c *client.Client, req client.DocumentsRequest) tea.Cmd {
	m.period = req.Period
	if req.Period == "" {
		return nil
	}
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		v, err := c.DeclareVAT(ctx, req)
		if err != nil {
			return declarationsLoadedMsg{err: err}
		}
		w, err := c.DeclareWithholding(ctx, req)
		return declarationsLoadedMsg{vat: v, withholding: w, err: err}
	}
}

func (m declarationsModel) update(msg tea.Msg) (declarationsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case declarationsLoadedMsg:
		m.loading = false
		m.vat = msg.vat
		m.withholding = msg.withholding
		m.err = msg.err
	}
	return m, nil
}

var (
	barCollected  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	barDeductible = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

func alertStyle(a vat.Alert) lipgloss.Style {
	switch a {
	case vat.AlertHighPayable:
		return errorStyle
	case vat.AlertLargeCredit:
		return warnStyle
	default:
		return successStyle
	}
}

// amountBar draws value as a share of top.
func amountBar(value, top decimal.Decimal, width int) string {
	if width < 10 {
		width = 40
	}
	barWidth := width - 10
	if barWidth > 50 {
		barWidth = 50
	}
	filled := 0
	if top.IsPositive() {
		filled = int(value.Div(top).Mul(decimal.NewFromInt(int64(barWidth))).IntPart())
	}
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func (m *declarationsModel) view() string {
	if m.period == "" {
		return dimStyle.Render("Start with --period YYYY-MM to see the monthly declarations.")
	}
	if m.loading {
		return "Computing declarations..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.vat == nil {
		return dimStyle.Render("No data available.")
	}

	d := m.vat
	var b strings.Builder

	b.WriteString(titleStyle.Render("VAT Declaration " + d.Period))
	b.WriteString("\n")

	top := decimal.Max(d.Sales.VATCollected, d.Purchases.VATDeductible)
	b.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render("Collected")))
	b.WriteString(fmt.Sprintf("  %s %14s   base %s\n",
		barCollected.Render(amountBar(d.Sales.VATCollected, top, m.width-30)),
		money.FormatSigned(d.Sales.VATCollected), money.FormatSigned(d.Sales.BaseHT)))
	b.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render("Deductible")))
	b.WriteString(fmt.Sprintf("  %s %14s   base %s\n\n",
		barDeductible.Render(amountBar(d.Purchases.VATDeductible, top, m.width-30)),
		money.FormatSigned(d.Purchases.VATDeductible), money.FormatSigned(d.Purchases.BaseHT)))

	b.WriteString(fmt.Sprintf("%s %14s\n", labelStyle.Render("Stamp duty:"), money.FormatSigned(d.StampDuty)))
	b.WriteString(fmt.Sprintf("%s %14s\n", labelStyle.Render("Prior credit:"), money.FormatSigned(d.PriorCredit)))
	b.WriteString(fmt.Sprintf("%s %14s\n", labelStyle.Render("VAT payable:"), money.FormatSigned(d.VATPayable)))
	b.WriteString(fmt.Sprintf("%s %14s\n", labelStyle.Render("Credit carried forward:"), money.FormatSigned(d.VATCredit)))

	status := string(d.Alert)
	if d.Message != "" {
		status += "  " + d.Message
	}
	b.WriteString("\n  " + alertStyle(d.Alert).Render("["+status+"]") + "\n")

	if w := m.withholding; w != nil {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Withholding Tax " + w.Period))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %-10s %13s %14s %14s\n", "", "BENEFICIARIES", "BASE", "WITHHELD"))
		b.WriteString(fmt.Sprintf("  %-10s %13d %14s %14s\n", "Salaries", w.Salaries.Beneficiaries, money.FormatSigned(w.Salaries.Base), money.FormatSigned(w.Salaries.Amount)))
		b.WriteString(fmt.Sprintf("  %-10s %13d %14s %14s\n", "Fees", w.Fees.Beneficiaries, money.FormatSigned(w.Fees.Base), money.FormatSigned(w.Fees.Amount)))
		b.WriteString(fmt.Sprintf("  %s\n", strings.Repeat("─", 54)))
		b.WriteString(fmt.Sprintf("  %-39s %14s", "Total to remit", money.FormatSigned(w.Total)))
	}
	return b.String()
}

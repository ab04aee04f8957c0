package declaration

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"go.uber.org/zap"
)

// MiscSupplier collects expenses with neither a supplier id nor a usable
// description.
const MiscSupplier = "Misc"

const supplierSeparator = "-"

type ClientLine struct {
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name"`
	Invoices   int             `json:"invoices"`
	TotalHT    decimal.Decimal `json:"total_ht"`
	VATAmount  decimal.Decimal `json:"vat_amount"`
	TotalTTC   decimal.Decimal `json:"total_ttc"`
}

type ClientStatement struct {
	Clients   []ClientLine             `json:"clients"`
	TotalHT   decimal.Decimal          `json:"total_ht"`
	VATAmount decimal.Decimal          `json:"vat_amount"`
	TotalTTC  decimal.Decimal          `json:"total_ttc"`
	Skipped   []accounting.RecordError `json:"skipped,omitempty"`
}

// Clients groups every postable invoice by client id, sorted by id. Invalid
// invoices are left out and listed in Skipped.
func Clients(invoices []ledger.Invoice) ClientStatement {
	byID := map[string]*ClientLine{}
	out := ClientStatement{Clients: []ClientLine{}, TotalHT: decimal.Zero, VATAmount: decimal.Zero, TotalTTC: decimal.Zero}

	for _, inv := range invoices {
		if !inv.Postable() {
			continue
		}
		if err := inv.Validate(); err != nil {
			out.Skipped = append(out.Skipped, accounting.NewRecordError(ledger.RefInvoice, inv.ID, err))
			continue
		}
		line, ok := byID[inv.ClientID]
		if !ok {
			line = &ClientLine{ClientID: inv.ClientID, TotalHT: decimal.Zero, VATAmount: decimal.Zero, TotalTTC: decimal.Zero}
			byID[inv.ClientID] = line
		}
		if line.ClientName == "" {
			line.ClientName = inv.ClientName
		}
		t := inv.Totals()
		line.Invoices++
		line.TotalHT = line.TotalHT.Add(t.TotalHT)
		line.VATAmount = line.VATAmount.Add(t.VATAmount)
		line.TotalTTC = line.TotalTTC.Add(t.TotalTTC)
	}

	for _, line := range byID {
		out.Clients = append(out.Clients, *line)
		out.TotalHT = out.TotalHT.Add(line.TotalHT)
		out.VATAmount = out.VATAmount.Add(line.VATAmount)
		out.TotalTTC = out.TotalTTC.Add(line.TotalTTC)
	}
	sort.Slice(out.Clients, func(i, j int) bool { return out.Clients[i].ClientID < out.Clients[j].ClientID })
	return out
}

// SupplierLine is one supplier's total. Inferred is set when the key came
// from the description rather than a supplier id.
type SupplierLine struct {
	Supplier  string          `json:"supplier"`
	Inferred  bool            `json:"inferred"`
	Expenses  int             `json:"expenses"`
	AmountHT  decimal.Decimal `json:"amount_ht"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	AmountTTC decimal.Decimal `json:"amount_ttc"`
}

type SupplierStatement struct {
	Suppliers []SupplierLine           `json:"suppliers"`
	AmountHT  decimal.Decimal          `json:"amount_ht"`
	VATAmount decimal.Decimal          `json:"vat_amount"`
	AmountTTC decimal.Decimal          `json:"amount_ttc"`
	Skipped   []accounting.RecordError `json:"skipped,omitempty"`
}

// SupplierKey returns the grouping key of an expense and whether it had to
// be inferred from the free-text description.
func SupplierKey(exp ledger.Expense) (string, bool) {
	if id := strings.TrimSpace(exp.SupplierID); id != "" {
		return id, false
	}
	head, _, _ := strings.Cut(exp.Description, supplierSeparator)
	if head = strings.TrimSpace(head); head != "" {
		return head, true
	}
	return MiscSupplier, true
}

// Suppliers groups every expense by supplier. Each expense without a
// supplier id is logged at warn level; invalid expenses are listed in
// Skipped.
func Suppliers(expenses []ledger.Expense, log *zap.Logger) SupplierStatement {
	if log == nil {
		log = zap.NewNop()
	}
	type key struct {
		name     string
		inferred bool
	}
	byKey := map[key]*SupplierLine{}
	out := SupplierStatement{Suppliers: []SupplierLine{}, AmountHT: decimal.Zero, VATAmount: decimal.Zero, AmountTTC: decimal.Zero}

	for _, exp := range expenses {
		if err := exp.Validate(); err != nil {
			out.Skipped = append(out.Skipped, accounting.NewRecordError(ledger.RefExpense, exp.ID, err))
			continue
		}
		name, inferred := SupplierKey(exp)
		if inferred {
			log.Warn("supplier inferred from description",
				zap.String("expense", exp.ID),
				zap.String("description", exp.Description),
				zap.String("supplier", name),
			)
		}
		k := key{name, inferred}
		line, ok := byKey[k]
		if !ok {
			line = &SupplierLine{Supplier: name, Inferred: inferred, AmountHT: decimal.Zero, VATAmount: decimal.Zero, AmountTTC: decimal.Zero}
			byKey[k] = line
		}
		line.Expenses++
		line.AmountHT = money.Round(line.AmountHT.Add(exp.AmountHT))
		line.VATAmount = money.Round(line.VATAmount.Add(exp.VATAmount))
		line.AmountTTC = money.Round(line.AmountTTC.Add(exp.AmountTTC))
	}

	for _, line := range byKey {
		out.Suppliers = append(out.Suppliers, *line)
		out.AmountHT = out.AmountHT.Add(line.AmountHT)
		out.VATAmount = out.VATAmount.Add(line.VATAmount)
		out.AmountTTC = out.AmountTTC.Add(line.AmountTTC)
	}
	sort.Slice(out.Suppliers, func(i, j int) bool {
		a, b := out.Suppliers[i], out.Suppliers[j]
		if a.Supplier != b.Supplier {
			return a.Supplier < b.Supplier
		}
		return !a.Inferred && b.Inferred
	})
	return out
}

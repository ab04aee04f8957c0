package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

// Unassigned groups cash movements that carry no vehicle.
const Unassigned = "UNASSIGNED"

type CostCenter struct {
	VehicleID    string                     `json:"vehicle_id"`
	Transactions int                        `json:"transactions"`
	Income       decimal.Decimal            `json:"income"`
	Expenses     decimal.Decimal            `json:"expenses"`
	Net          decimal.Decimal            `json:"net"`
	ByCategory   map[string]decimal.Decimal `json:"by_category"`
}

// CostCenters groups the cash ledger by vehicle over p. Unassigned sorts
// last.
func CostCenters(txns []journal.Transaction, p ledger.Period) []CostCenter {
	byVehicle := map[string]*CostCenter{}
	for _, t := range txns {
		if !p.Contains(ledger.DateOf(t.Timestamp)) {
			continue
		}
		id := t.VehicleID
		if id == "" {
			id = Unassigned
		}
		cc, ok := byVehicle[id]
		if !ok {
			cc = &CostCenter{
				VehicleID:  id,
				Income:     decimal.Zero,
				Expenses:   decimal.Zero,
				ByCategory: map[string]decimal.Decimal{},
			}
			byVehicle[id] = cc
		}
		cc.Transactions++
		if t.Type == journal.Income {
			cc.Income = cc.Income.Add(t.Amount)
		} else {
			cc.Expenses = cc.Expenses.Add(t.Amount)
			cc.ByCategory[t.Category] = money.Round(cc.ByCategory[t.Category].Add(t.Amount))
		}
	}

	out := make([]CostCenter, 0, len(byVehicle))
	for _, cc := range byVehicle {
		cc.Income = money.Round(cc.Income)
		cc.Expenses = money.Round(cc.Expenses)
		cc.Net = money.Round(cc.Income.Sub(cc.Expenses))
		out = append(out, *cc)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].VehicleID, out[j].VehicleID
		if (a == Unassigned) != (b == Unassigned) {
			return b == Unassigned
		}
		return a < b
	})
	return out
}

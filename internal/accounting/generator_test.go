package accounting

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoice(id, date, ht, rate, stamp string, status ledger.InvoiceStatus) ledger.Invoice {
	return ledger.Invoice{
		ID:       id,
		Number:   "F-" + id,
		ClientID: "cli-1",
		Status:   status,
		Date:     ledger.MustParseDate(date),
		Lines:    []ledger.LineItem{{Description: "transport", Quantity: d("1"), UnitPrice: d(ht)}},
		VATRate:  d(rate),
		Stamp:    d(stamp),
	}
}

func expense(id, date string, cat ledger.ExpenseCategory, ht, vat string, deductible bool) ledger.Expense {
	return ledger.Expense{
		ID:         id,
		Date:       ledger.MustParseDate(date),
		Category:   cat,
		AmountHT:   d(ht),
		VATAmount:  d(vat),
		AmountTTC:  d(ht).Add(d(vat)),
		Deductible: deductible,
	}
}

func sequentialIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("e%03d", n)
	})
}

func linesFor(entries []ledger.Entry, ref string) []ledger.Entry {
	return ledger.ByReference(entries)[ref]
}

func lineOn(t *testing.T, entries []ledger.Entry, account string) ledger.Entry {
	t.Helper()
	for _, e := range entries {
		if e.AccountCode == account {
			return e
		}
	}
	require.Failf(t, "missing line", "no line on account %s", account)
	return ledger.Entry{}
}

func TestGenerate_InvoiceBalances(t *testing.T) {
	tests := []struct {
		name  string
		ht    string
		rate  string
		stamp string
		lines int
	}{
		{"vat and stamp", "1000", "19", "1", 4},
		{"no stamp", "2000", "7", "0", 3},
		{"no vat", "850.250", "0", "1", 3},
		{"no vat no stamp", "100", "0", "0", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := invoice("i1", "2024-05-10", tt.ht, tt.rate, tt.stamp, ledger.InvoiceValidated)
			res := NewGenerator().Generate(Input{Invoices: []ledger.Invoice{inv}})
			require.Empty(t, res.Errors)

			lines := linesFor(res.Entries, "i1")
			require.Len(t, lines, tt.lines)

			tot := inv.Totals()
			want := tot.TotalHT.Add(tot.VATAmount).Add(tot.Stamp)
			ar := lineOn(t, lines, ledger.AccountClients)
			assert.True(t, ar.Debit.Equal(want), "AR debit %s want %s", ar.Debit, want)

			debit, credit := ledger.Totals(lines)
			assert.True(t, debit.Equal(want))
			assert.True(t, credit.Equal(want))

			for _, e := range lines {
				assert.Equal(t, ledger.JournalSales, e.Journal)
				assert.Equal(t, ledger.RefInvoice, e.ReferenceType)
				assert.True(t, e.Debit.IsZero() != e.Credit.IsZero(), "exactly one side set on %s", e.AccountCode)
			}
		})
	}
}

func TestGenerate_InvoiceLines(t *testing.T) {
	inv := invoice("i1", "2024-05-10", "1000", "19", "1", ledger.InvoicePaid)
	inv.ClientName = "Transmed"
	res := NewGenerator().Generate(Input{Invoices: []ledger.Invoice{inv}})

	assert.Equal(t, "1191", lineOn(t, res.Entries, ledger.AccountClients).Debit.String())
	assert.Equal(t, "1000", lineOn(t, res.Entries, ledger.AccountTransportRevenue).Credit.String())
	assert.Equal(t, "190", lineOn(t, res.Entries, ledger.AccountVATCollected).Credit.String())
	stamp := lineOn(t, res.Entries, ledger.AccountStampDuty)
	assert.Equal(t, "1", stamp.Credit.String())
	assert.Equal(t, "Facture F-i1 - Transmed", stamp.Label)
	assert.Equal(t, "État, droit de timbre", stamp.AccountLabel)
}

func TestGenerate_ExpenseBalances(t *testing.T) {
	tests := []struct {
		name       string
		cat        ledger.ExpenseCategory
		ht         string
		vat        string
		deductible bool
		account    string
		cost       string
		lines      int
	}{
		{"deductible fuel", ledger.CategoryFuel, "500", "35", true, ledger.AccountFuel, "500", 3},
		{"non deductible fuel", ledger.CategoryFuel, "500", "35", false, ledger.AccountFuel, "535", 2},
		{"deductible without vat", ledger.CategoryTolls, "12.500", "0", true, ledger.AccountTolls, "12.5", 2},
		{"unknown category", ledger.ExpenseCategory("CATERING"), "80", "15.2", true, ledger.AccountOtherPurchases, "80", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := expense("x1", "2024-05-12", tt.cat, tt.ht, tt.vat, tt.deductible)
			res := NewGenerator().Generate(Input{Expenses: []ledger.Expense{exp}})
			require.Empty(t, res.Errors)

			lines := linesFor(res.Entries, "x1")
			require.Len(t, lines, tt.lines)

			cost := lineOn(t, lines, tt.account)
			assert.Equal(t, tt.cost, cost.Debit.String())

			ap := lineOn(t, lines, ledger.AccountSuppliers)
			assert.True(t, ap.Credit.Equal(exp.AmountTTC), "AP credit %s want %s", ap.Credit, exp.AmountTTC)

			debit, credit := ledger.Totals(lines)
			assert.True(t, debit.Equal(exp.AmountTTC))
			assert.True(t, credit.Equal(exp.AmountTTC))

			for _, e := range lines {
				assert.Equal(t, ledger.JournalPurchases, e.Journal)
				if !tt.deductible {
					assert.NotEqual(t, ledger.AccountVATDeductible, e.AccountCode)
				}
			}
		})
	}
}

func TestGenerate_Payroll(t *testing.T) {
	emp := ledger.Employee{ID: "emp-1", Name: "Sami", BaseSalary: d("600"), MaritalStatus: tax.Single}
	date := ledger.MustParseDate("2024-05-31")
	res := NewGenerator().Generate(Input{Employees: []ledger.Employee{emp}, PayrollDate: date})
	require.Empty(t, res.Errors)

	lines := linesFor(res.Entries, "PAY-2024-05-emp-1")
	require.Len(t, lines, 5)

	assert.Equal(t, "600", lineOn(t, lines, ledger.AccountSalaries).Debit.String())
	assert.Equal(t, "114.42", lineOn(t, lines, ledger.AccountEmployerCharges).Debit.String())
	assert.Equal(t, "169.5", lineOn(t, lines, ledger.AccountSocialSecurity).Credit.String())
	assert.Equal(t, "19.178", lineOn(t, lines, ledger.AccountIncomeTaxWithheld).Credit.String())
	assert.Equal(t, "525.742", lineOn(t, lines, ledger.AccountNetSalaryPayable).Credit.String())
	assert.True(t, ledger.Balanced(lines))

	assert.Equal(t, ledger.RefSocialSecurity, lineOn(t, lines, ledger.AccountSocialSecurity).ReferenceType)
	assert.Equal(t, ledger.RefPayroll, lineOn(t, lines, ledger.AccountSalaries).ReferenceType)
	for _, e := range lines {
		assert.Equal(t, ledger.JournalMiscellaneous, e.Journal)
		assert.Equal(t, "2024-05-31", e.Date.String())
	}
}

func TestGenerate_PayrollWithoutTaxOmitsLine(t *testing.T) {
	emp := ledger.Employee{ID: "emp-2", BaseSalary: d("600"), MaritalStatus: tax.Married, Children: 2}
	res := NewGenerator().Generate(Input{Employees: []ledger.Employee{emp}, PayrollDate: ledger.MustParseDate("2024-05-31")})

	for _, e := range res.Entries {
		assert.NotEqual(t, ledger.AccountIncomeTaxWithheld, e.AccountCode)
		assert.True(t, e.Amount().IsPositive())
	}
	assert.Len(t, res.Entries, 4)
}

func TestGenerate_PayrollRequiresDate(t *testing.T) {
	emp := ledger.Employee{ID: "emp-1", BaseSalary: d("600"), MaritalStatus: tax.Single}
	res := NewGenerator().Generate(Input{
		Invoices:  []ledger.Invoice{invoice("i1", "2024-05-10", "100", "7", "0", ledger.InvoiceValidated)},
		Employees: []ledger.Employee{emp},
	})

	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], ledger.ErrMissingPayrollDate))
	assert.Len(t, res.Entries, 3)
}

func TestGenerate_DraftAndCancelledExcluded(t *testing.T) {
	for _, status := range []ledger.InvoiceStatus{ledger.InvoiceDraft, ledger.InvoiceCancelled} {
		t.Run(string(status), func(t *testing.T) {
			inv := invoice("i1", "2024-05-10", "1000", "7", "1", status)
			res := NewGenerator().Generate(Input{Invoices: []ledger.Invoice{inv}})
			assert.Empty(t, res.Entries)
			assert.Empty(t, res.Errors)
		})
	}

	inv := invoice("i1", "2024-05-10", "1000", "7", "1", ledger.InvoiceValidated)
	res := NewGenerator().Generate(Input{Invoices: []ledger.Invoice{inv}})
	debit, _ := ledger.Totals(res.Entries)
	assert.Equal(t, "1071.000", debit.StringFixed(3))
}

func TestGenerate_DraftIsNotValidated(t *testing.T) {
	// drafts are skipped before validation, so an incomplete draft is not an error
	inv := ledger.Invoice{ID: "draft", Status: ledger.InvoiceDraft}
	res := NewGenerator().Generate(Input{Invoices: []ledger.Invoice{inv}})
	assert.Empty(t, res.Errors)
}

func TestGenerate_SortedByDate(t *testing.T) {
	in := Input{
		Invoices: []ledger.Invoice{
			invoice("late", "2024-06-02", "100", "7", "0", ledger.InvoiceValidated),
			invoice("early", "2024-04-15", "100", "7", "0", ledger.InvoiceValidated),
		},
		Expenses: []ledger.Expense{
			expense("mid", "2024-05-01", ledger.CategoryOffice, "40", "7.6", true),
		},
	}
	res := NewGenerator().Generate(in)
	require.Len(t, res.Entries, 9)
	for i := 1; i < len(res.Entries); i++ {
		assert.False(t, res.Entries[i].Date.Before(res.Entries[i-1].Date))
	}
	assert.Equal(t, "early", res.Entries[0].ReferenceID)
	assert.Equal(t, "mid", res.Entries[3].ReferenceID)
	assert.Equal(t, "late", res.Entries[8].ReferenceID)

	// lines of one document keep their template order
	assert.Equal(t, ledger.AccountClients, res.Entries[0].AccountCode)
}

func TestGenerate_PartialResultOnInvalidRecords(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	bad := expense("bad", "2024-05-12", ledger.CategoryFuel, "500", "35", true)
	bad.AmountTTC = d("100")
	noDate := expense("nodate", "2024-05-12", ledger.CategoryFuel, "10", "0", true)
	noDate.Date = ledger.Date{}

	res := NewGenerator(WithLogger(zap.New(core))).Generate(Input{
		Invoices: []ledger.Invoice{invoice("i1", "2024-05-10", "1000", "7", "0", ledger.InvoiceValidated)},
		Expenses: []ledger.Expense{bad, expense("good", "2024-05-13", ledger.CategoryTolls, "5", "0", true), noDate},
	})

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "bad", res.Errors[0].RefID)
	assert.Equal(t, "nodate", res.Errors[1].RefID)
	assert.True(t, errors.Is(res.Err(), ledger.ErrInvalidDocument))

	assert.Len(t, linesFor(res.Entries, "i1"), 3)
	assert.Len(t, linesFor(res.Entries, "good"), 2)
	assert.Empty(t, linesFor(res.Entries, "bad"))
	assert.Equal(t, 2, logs.FilterMessage("document not posted").Len())
}

func TestGenerate_MissingAmountsAreRecordErrors(t *testing.T) {
	var docs ledger.Documents
	require.NoError(t, json.Unmarshal([]byte(`{
		"expenses": [{"id": "x1", "date": "2024-05-01", "category": "FUEL", "deductible": true}],
		"invoices": [{"id": "i1", "client_id": "c", "status": "VALIDATED", "date": "2024-05-01", "vat_rate": 7, "lines": [{"quantity": 1}]}]
	}`), &docs))

	res := NewGenerator().Generate(Input{Invoices: docs.Invoices, Expenses: docs.Expenses})

	assert.Empty(t, res.Entries)
	require.Len(t, res.Errors, 2)
	refs := []string{res.Errors[0].RefID, res.Errors[1].RefID}
	assert.ElementsMatch(t, []string{"i1", "x1"}, refs)
	for _, e := range res.Errors {
		assert.ErrorIs(t, e, ledger.ErrInvalidDocument)
	}
}

func TestGenerate_ExpenseCreditsDocumentTTC(t *testing.T) {
	exp := expense("x1", "2024-05-12", ledger.CategoryFuel, "100.0004", "7.0004", true)
	exp.AmountTTC = d("107")

	res := NewGenerator().Generate(Input{Expenses: []ledger.Expense{exp}})
	require.Empty(t, res.Errors)

	lines := linesFor(res.Entries, "x1")
	assert.True(t, d("107").Equal(lineOn(t, lines, ledger.AccountSuppliers).Credit))
	assert.True(t, ledger.Balanced(lines))
}

func TestGenerate_EmptyInput(t *testing.T) {
	res := NewGenerator().Generate(Input{})
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
	assert.NoError(t, res.Err())
}

func TestGenerate_Idempotent(t *testing.T) {
	in := Input{
		Invoices: []ledger.Invoice{
			invoice("i1", "2024-05-10", "1000", "7", "1", ledger.InvoiceValidated),
			invoice("i2", "2024-05-20", "2000", "7", "0", ledger.InvoicePaid),
		},
		Expenses: []ledger.Expense{
			expense("x1", "2024-05-12", ledger.CategoryFuel, "500", "35", true),
		},
		Employees:   []ledger.Employee{{ID: "emp-1", BaseSalary: d("1200"), MaritalStatus: tax.Married, Children: 1}},
		PayrollDate: ledger.MustParseDate("2024-05-31"),
	}
	g := NewGenerator()
	first := g.Generate(in)
	second := g.Generate(in)

	require.Equal(t, len(first.Entries), len(second.Entries))
	for i := range first.Entries {
		a, b := first.Entries[i], second.Entries[i]
		assert.NotEqual(t, a.ID, b.ID)
		a.ID, b.ID = "", ""
		assert.Equal(t, a, b)
	}
}

func TestGenerate_InjectedIDs(t *testing.T) {
	res := NewGenerator(sequentialIDs()).Generate(Input{
		Invoices: []ledger.Invoice{invoice("i1", "2024-05-10", "1000", "7", "0", ledger.InvoiceValidated)},
	})
	require.Len(t, res.Entries, 3)
	assert.Equal(t, "e001", res.Entries[0].ID)
	assert.Equal(t, "e003", res.Entries[2].ID)
}

func TestGenerate_CustomSchedule(t *testing.T) {
	s := tax.DefaultSchedule()
	s.WorkAccidentRate = d("2")
	emp := ledger.Employee{ID: "emp-1", BaseSalary: d("1000"), MaritalStatus: tax.Single}

	res := NewGenerator(WithSchedule(s)).Generate(Input{Employees: []ledger.Employee{emp}, PayrollDate: ledger.MustParseDate("2024-05-31")})
	charges := lineOn(t, res.Entries, ledger.AccountEmployerCharges)
	// 16.57 + 1 + 1 + 2 percent of 1000
	assert.Equal(t, "205.7", charges.Debit.String())
}

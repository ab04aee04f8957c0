package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/declaration"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/store"
	"github.com/simonvc/fiscaledger/internal/vat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, d(want).StringFixed(3), got.StringFixed(3))
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, "").Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func invoice(id, date, ht, rate string) ledger.Invoice {
	return ledger.Invoice{
		ID:       id,
		Number:   "F-" + id,
		ClientID: "cli-" + id,
		Status:   ledger.InvoiceValidated,
		Date:     ledger.MustParseDate(date),
		Lines:    []ledger.LineItem{{Description: "transport", Quantity: d("1"), UnitPrice: d(ht)}},
		VATRate:  d(rate),
	}
}

func mayDocuments() ledger.Documents {
	return ledger.Documents{
		Invoices: []ledger.Invoice{
			invoice("i1", "2024-05-03", "1000", "7"),
			invoice("i2", "2024-05-21", "2000", "7"),
		},
		Expenses: []ledger.Expense{{
			ID:         "x1",
			Date:       ledger.MustParseDate("2024-05-12"),
			Category:   ledger.CategoryFuel,
			SupplierID: "sup-1",
			AmountHT:   d("500"),
			VATRate:    d("7"),
			VATAmount:  d("35"),
			AmountTTC:  d("535"),
			Deductible: true,
		}},
	}
}

func TestPing(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChart(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[[]ledger.ChartEntry](t, rec)
	assert.NotEmpty(t, chart)

	rec = do(t, h, http.MethodGet, "/chart/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[[]ledger.CategoryMapping](t, rec))
}

func TestGenerateLedger(t *testing.T) {
	h := newTestServer(t)

	t.Run("balanced entries", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/ledger/generate", mayDocuments())
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[accounting.Result](t, rec)
		assert.Empty(t, res.Errors)
		require.NotEmpty(t, res.Entries)

		debit, credit := decimal.Zero, decimal.Zero
		for _, e := range res.Entries {
			debit = debit.Add(e.Debit)
			credit = credit.Add(e.Credit)
		}
		assertAmount(t, debit.String(), credit)
	})

	t.Run("partial result", func(t *testing.T) {
		docs := mayDocuments()
		docs.Invoices = append(docs.Invoices, ledger.Invoice{ID: "bad", Status: ledger.InvoiceValidated})
		rec := do(t, h, http.MethodPost, "/ledger/generate", docs)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[accounting.Result](t, rec)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "bad", res.Errors[0].RefID)
		assert.NotEmpty(t, res.Entries)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/generate", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTrialBalance(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/ledger/trial-balance", documentsRequest{Documents: mayDocuments(), Period: "2024-05"})
	require.Equal(t, http.StatusOK, rec.Code)

	var tb struct {
		TotalDebit  decimal.Decimal `json:"total_debit"`
		TotalCredit decimal.Decimal `json:"total_credit"`
		Balanced    bool            `json:"balanced"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tb))
	assert.True(t, tb.Balanced)
	assertAmount(t, tb.TotalDebit.String(), tb.TotalCredit)
}

func TestDeclareVAT(t *testing.T) {
	h := newTestServer(t)

	t.Run("may", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/declarations/vat", documentsRequest{Documents: mayDocuments(), Period: "2024-05"})
		require.Equal(t, http.StatusOK, rec.Code)
		decl := decode[declaration.VATDeclaration](t, rec)
		assertAmount(t, "3000", decl.Sales.BaseHT)
		assertAmount(t, "210", decl.Sales.VATCollected)
		assertAmount(t, "35", decl.Purchases.VATDeductible)
		assertAmount(t, "175", decl.VATPayable)
		assert.Equal(t, vat.AlertNone, decl.Alert)
	})

	t.Run("bad period", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/declarations/vat", documentsRequest{Documents: mayDocuments(), Period: "May"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("needs a month", func(t *testing.T) {
		for _, period := range []string{"2024-Q2", "2024"} {
			rec := do(t, h, http.MethodPost, "/declarations/vat", documentsRequest{Documents: mayDocuments(), Period: period})
			assert.Equal(t, http.StatusBadRequest, rec.Code, period)
		}
	})

	t.Run("invalid document is skipped", func(t *testing.T) {
		docs := mayDocuments()
		docs.Expenses[0].Category = ""
		rec := do(t, h, http.MethodPost, "/declarations/vat", documentsRequest{Documents: docs, Period: "2024-05"})
		require.Equal(t, http.StatusOK, rec.Code)
		decl := decode[declaration.VATDeclaration](t, rec)
		assertAmount(t, "210", decl.Sales.VATCollected)
		assertAmount(t, "0", decl.Purchases.VATDeductible)
		require.Len(t, decl.Skipped, 1)
		assert.Equal(t, "x1", decl.Skipped[0].RefID)
	})
}

func TestReconcileVAT(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/vat/reconcile", documentsRequest{
		Documents:   mayDocuments(),
		From:        ledger.MustParseDate("2024-05-01"),
		To:          ledger.MustParseDate("2024-05-15"),
		PriorCredit: d("10"),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	r := decode[vat.Reconciliation](t, rec)
	assertAmount(t, "70", r.Collected)
	assertAmount(t, "35", r.Deductible)
	assertAmount(t, "25", r.Payable)

	rec = do(t, h, http.MethodPost, "/vat/reconcile", documentsRequest{
		Documents: mayDocuments(),
		From:      ledger.MustParseDate("2024-05-15"),
		To:        ledger.MustParseDate("2024-05-01"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeclarations(t *testing.T) {
	h := newTestServer(t)
	docs := mayDocuments()
	docs.Employees = []ledger.Employee{{ID: "e1", BaseSalary: d("600"), MaritalStatus: "SINGLE"}}

	t.Run("corporate tax needs a year", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/declarations/corporate-tax", documentsRequest{Documents: mayDocuments(), Period: "2024-05"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("corporate tax", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/declarations/corporate-tax", documentsRequest{Documents: mayDocuments(), Period: "2024"})
		require.Equal(t, http.StatusOK, rec.Code)
		decl := decode[declaration.CorporateTaxDeclaration](t, rec)
		assert.Equal(t, 2024, decl.Year)
		assertAmount(t, "375", decl.Tax)
	})

	t.Run("withholding", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/declarations/withholding", documentsRequest{Documents: docs, Period: "2024-05"})
		require.Equal(t, http.StatusOK, rec.Code)
		decl := decode[declaration.WithholdingDeclaration](t, rec)
		assertAmount(t, "600", decl.Salaries.Base)
		assert.Empty(t, decl.Skipped)

		rec = do(t, h, http.MethodPost, "/declarations/withholding", documentsRequest{Documents: docs, Period: "2024-Q2"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("social security needs a quarter", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/declarations/social-security", documentsRequest{Documents: docs, Period: "2024-05"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, h, http.MethodPost, "/declarations/social-security", documentsRequest{Documents: docs, Period: "2024-Q2"})
		require.Equal(t, http.StatusOK, rec.Code)
		decl := decode[declaration.SocialSecurityDeclaration](t, rec)
		assertAmount(t, "1800", decl.GrossSalary)
	})

	t.Run("statements", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/declarations/clients", documentsRequest{Documents: docs})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, h, http.MethodPost, "/declarations/suppliers", documentsRequest{Documents: docs})
		require.Equal(t, http.StatusOK, rec.Code)
		st := decode[declaration.SupplierStatement](t, rec)
		require.Len(t, st.Suppliers, 1)
		assert.Equal(t, "sup-1", st.Suppliers[0].Supplier)
	})
}

func TestProfitAndLoss(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/reports/profit-and-loss", documentsRequest{Documents: mayDocuments(), Period: "2024-05"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "basis is mandatory")

	rec = do(t, h, http.MethodPost, "/reports/profit-and-loss", documentsRequest{Documents: mayDocuments(), Period: "2024-05", Basis: "ht"})
	require.Equal(t, http.StatusOK, rec.Code)
	var pl struct {
		Turnover decimal.Decimal `json:"turnover"`
		Result   decimal.Decimal `json:"result"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pl))
	assertAmount(t, "3000", pl.Turnover)
	assertAmount(t, "2500", pl.Result)
}

func TestCashAndCostCenters(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/cash", journal.TransactionInput{Type: journal.Income})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[errorResponse](t, rec).Fields)

	for _, in := range []journal.TransactionInput{
		{Type: journal.Income, Amount: d("1000"), ReferenceType: journal.SourceMission, VehicleID: "veh-1", Category: "MISSION"},
		{Type: journal.Outflow, Amount: d("200"), ReferenceType: journal.SourceExpense, VehicleID: "veh-1", Category: "FUEL"},
		{Type: journal.Outflow, Amount: d("50"), ReferenceType: journal.SourceExpense, Category: "OFFICE"},
	} {
		rec = do(t, h, http.MethodPost, "/cash", in)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/cash?vehicle_id=veh-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]journal.Transaction](t, rec), 2)

	rec = do(t, h, http.MethodGet, "/cash?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/reports/cost-centers", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/reports/cost-centers?period="+time.Now().UTC().Format("2006"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var centers []struct {
		VehicleID string          `json:"vehicle_id"`
		Net       decimal.Decimal `json:"net"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&centers))
	require.Len(t, centers, 2)
	assert.Equal(t, "veh-1", centers[0].VehicleID)
	assertAmount(t, "800", centers[0].Net)

	rec = do(t, h, http.MethodDelete, "/accounting-data", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/cash", nil)
	assert.Empty(t, decode[[]journal.Transaction](t, rec))
}

func TestEventsAndVATJournal(t *testing.T) {
	h := newTestServer(t)
	inv := invoice("i1", "2024-05-03", "1000", "19")

	rec := do(t, h, http.MethodPost, "/events/invoices/validated", invoiceEvent{Invoice: inv})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	recorded := decode[journal.Recorded](t, rec)
	require.NotNil(t, recorded.VAT)
	assertAmount(t, "190", recorded.VAT.Amount)

	rec = do(t, h, http.MethodPost, "/events/invoices/paid", invoiceEvent{Invoice: inv, PaidOn: ledger.MustParseDate("2024-05-30")})
	require.Equal(t, http.StatusCreated, rec.Code)

	draft := inv
	draft.Status = ledger.InvoiceDraft
	rec = do(t, h, http.MethodPost, "/events/invoices/validated", invoiceEvent{Invoice: draft})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/events/salaries/paid", salaryEvent{
		Employee: ledger.Employee{ID: "e1", BaseSalary: d("600"), MaritalStatus: "SINGLE"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "paid_on is required")

	rec = do(t, h, http.MethodGet, "/vat/journal?period=2024-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]journal.VATEntry](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/vat/journal?period=2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/vat/journal/2024-05/reconcile?prior_credit=40", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	r := decode[vat.Reconciliation](t, rec)
	assertAmount(t, "150", r.Payable)

	rec = do(t, h, http.MethodPost, "/vat/journal/2024-05/declare", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var declared struct {
		Declared int `json:"declared"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&declared))
	assert.Equal(t, 1, declared.Declared)
}

func TestPeriods(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/periods/2023", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.PeriodOpen, decode[ledger.FiscalPeriod](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/periods/2023/close", map[string]string{"closed_by": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	fp := decode[ledger.FiscalPeriod](t, rec)
	assert.True(t, fp.IsClosed())
	assert.Equal(t, "alice", fp.ClosedBy)

	rec = do(t, h, http.MethodPost, "/periods/2023/close", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/periods/abc/close", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/vat/journal", journal.VATInput{
		Period: "2023-11", Type: journal.VATDeductible, Base: d("100"), Rate: d("19"), Reference: "late",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/events/invoices/validated", invoiceEvent{Invoice: invoice("old", "2023-12-28", "100", "19")})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/periods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ledger.FiscalPeriod](t, rec), 1)
}

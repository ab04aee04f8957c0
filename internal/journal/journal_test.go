package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var fixedNow = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

func fixedClock() Option {
	return WithClock(func() time.Time { return fixedNow })
}

func counterIDs(prefix string) Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	})
}

func TestCashLedger_Record(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryCashLedger(fixedClock(), counterIDs("tx"))

	txn, err := l.Record(ctx, TransactionInput{
		Type:          Income,
		Amount:        d("1070.0004"),
		ReferenceType: SourceInvoice,
		ReferenceID:   "inv-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", txn.ID)
	assert.Equal(t, fixedNow, txn.Timestamp)
	assert.Equal(t, "TND", txn.Currency)
	assert.Equal(t, "1070.000", txn.Amount.StringFixed(3))

	paid := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	txn, err = l.Record(ctx, TransactionInput{
		Timestamp:     paid,
		Type:          Outflow,
		Amount:        d("50"),
		Currency:      "EUR",
		ReferenceType: SourceMission,
	})
	require.NoError(t, err)
	assert.Equal(t, paid, txn.Timestamp)
	assert.Equal(t, "-50", txn.Signed().String())

	all, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "tx-1", all[0].ID)

	// List hands out a copy
	all[0].Amount = d("1")
	again, _ := l.List(ctx)
	assert.Equal(t, "1070", again[0].Amount.String())
}

func TestCashLedger_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryCashLedger()

	tests := []struct {
		name string
		in   TransactionInput
	}{
		{"zero amount", TransactionInput{Type: Income, ReferenceType: SourceCapital}},
		{"negative amount", TransactionInput{Type: Income, Amount: d("-5"), ReferenceType: SourceCapital}},
		{"unknown type", TransactionInput{Type: "TRANSFER", Amount: d("5"), ReferenceType: SourceCapital}},
		{"unknown source", TransactionInput{Type: Income, Amount: d("5"), ReferenceType: "GIFT"}},
		{"unknown currency", TransactionInput{Type: Income, Amount: d("5"), ReferenceType: SourceCapital, Currency: "XXX"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Record(ctx, tt.in)
			assert.True(t, errors.Is(err, ledger.ErrInvalidDocument), "got %v", err)
		})
	}
	all, _ := l.List(ctx)
	assert.Empty(t, all)
}

func TestCashLedger_Clear(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryCashLedger()
	_, err := l.Record(ctx, TransactionInput{Type: Income, Amount: d("5"), ReferenceType: SourceCapital})
	require.NoError(t, err)

	require.NoError(t, l.Clear(ctx))
	all, err := l.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCashLedger_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryCashLedger()

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := l.Record(ctx, TransactionInput{Type: Income, Amount: d("1"), ReferenceType: SourceCapital})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	all, err := l.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers*perWriter)

	seen := map[string]bool{}
	for _, txn := range all {
		assert.False(t, seen[txn.ID])
		seen[txn.ID] = true
	}
}

func TestVATJournal_LogOperation(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryVATJournal(fixedClock(), counterIDs("vat"))

	e, err := j.LogOperation(ctx, VATInput{Type: VATCollected, Base: d("1000"), Rate: d("19"), Reference: "F-1"})
	require.NoError(t, err)
	assert.Equal(t, "vat-1", e.ID)
	assert.Equal(t, "2024-05", e.Period)
	assert.Equal(t, "190.000", e.Amount.StringFixed(3))
	assert.False(t, e.Declared)

	e, err = j.LogOperation(ctx, VATInput{
		Timestamp: time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC),
		Type:      VATDeductible,
		Base:      d("333.333"),
		Rate:      d("7"),
		Reference: "exp-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-04", e.Period)
	assert.Equal(t, "23.333", e.Amount.StringFixed(3))

	e, err = j.LogOperation(ctx, VATInput{Period: "2024-03", Type: VATDeductible, Base: d("10"), Rate: d("19"), Reference: "exp-2"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03", e.Period)

	may, err := j.ListByPeriod(ctx, "2024-05")
	require.NoError(t, err)
	assert.Len(t, may, 1)

	none, err := j.ListByPeriod(ctx, "2023-01")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestVATJournal_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryVATJournal()

	tests := []struct {
		name string
		in   VATInput
	}{
		{"unknown type", VATInput{Type: "REFUND", Base: d("1"), Rate: d("7"), Reference: "r"}},
		{"missing reference", VATInput{Type: VATCollected, Base: d("1"), Rate: d("7")}},
		{"rate above 100", VATInput{Type: VATCollected, Base: d("1"), Rate: d("107"), Reference: "r"}},
		{"quarter period", VATInput{Type: VATCollected, Base: d("1"), Rate: d("7"), Reference: "r", Period: "2024-Q2"}},
		{"garbage period", VATInput{Type: VATCollected, Base: d("1"), Rate: d("7"), Reference: "r", Period: "May"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.LogOperation(ctx, tt.in)
			assert.ErrorIs(t, err, ledger.ErrInvalidDocument)
		})
	}
}

func TestVATJournal_MarkDeclared(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryVATJournal(fixedClock())
	for _, p := range []string{"2024-04", "2024-05", "2024-05"} {
		_, err := j.LogOperation(ctx, VATInput{Period: p, Type: VATCollected, Base: d("100"), Rate: d("19"), Reference: "r"})
		require.NoError(t, err)
	}

	n, err := j.MarkDeclared(ctx, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = j.MarkDeclared(ctx, "2024-05")
	require.NoError(t, err)
	assert.Zero(t, n)

	all, _ := j.List(ctx)
	assert.False(t, all[0].Declared)
	assert.True(t, all[1].Declared)
	assert.True(t, all[2].Declared)

	require.NoError(t, j.Clear(ctx))
	all, _ = j.List(ctx)
	assert.Empty(t, all)
}

type closedYears map[int]bool

func (c closedYears) IsClosed(_ context.Context, year int) (bool, error) {
	return c[year], nil
}

type brokenPeriods struct{}

func (brokenPeriods) IsClosed(context.Context, int) (bool, error) {
	return false, errors.New("database is locked")
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(closedYears{2023: true}, fixedClock())
	cash := g.Cash(NewMemoryCashLedger(fixedClock()))
	vat := g.VAT(NewMemoryVATJournal(fixedClock()))

	_, err := cash.Record(ctx, TransactionInput{
		Timestamp:     time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		Type:          Income,
		Amount:        d("10"),
		ReferenceType: SourceCapital,
	})
	assert.ErrorIs(t, err, ledger.ErrPeriodClosed)

	// zero timestamp books into the clock's year
	_, err = cash.Record(ctx, TransactionInput{Type: Income, Amount: d("10"), ReferenceType: SourceCapital})
	assert.NoError(t, err)

	_, err = vat.LogOperation(ctx, VATInput{Period: "2023-11", Type: VATCollected, Base: d("1"), Rate: d("7"), Reference: "r"})
	assert.ErrorIs(t, err, ledger.ErrPeriodClosed)

	_, err = vat.LogOperation(ctx, VATInput{Period: "2024-01", Type: VATCollected, Base: d("1"), Rate: d("7"), Reference: "r"})
	assert.NoError(t, err)

	txns, _ := cash.List(ctx)
	assert.Len(t, txns, 1)
	entries, _ := vat.List(ctx)
	assert.Len(t, entries, 1)
}

func TestGuard_CheckerFailure(t *testing.T) {
	g := NewGuard(brokenPeriods{})
	_, err := g.Cash(NewMemoryCashLedger()).Record(context.Background(), TransactionInput{Type: Income, Amount: d("1"), ReferenceType: SourceCapital})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ledger.ErrPeriodClosed)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	cash := NewMemoryCashLedger(fixedClock())
	vatj := NewMemoryVATJournal(fixedClock())
	r := NewRecorder(cash, vatj, tax.DefaultSchedule(), nil)

	inv := ledger.Invoice{
		ID:              "inv-1",
		Number:          "F-2024-001",
		ClientID:        "cli-1",
		ClientName:      "Transmed",
		Status:          ledger.InvoiceValidated,
		Date:            ledger.MustParseDate("2024-05-10"),
		Lines:           []ledger.LineItem{{Description: "Tunis - Sfax", Quantity: d("1"), UnitPrice: d("1000")}},
		VATRate:         d("19"),
		Stamp:           d("1"),
		Withholding:     true,
		WithholdingRate: d("1"),
	}

	t.Run("invoice validated", func(t *testing.T) {
		rec, err := r.InvoiceValidated(ctx, inv)
		require.NoError(t, err)
		require.NotNil(t, rec.VAT)
		assert.Nil(t, rec.Cash)
		assert.Equal(t, VATCollected, rec.VAT.Type)
		assert.Equal(t, "2024-05", rec.VAT.Period)
		assert.Equal(t, "190.000", rec.VAT.Amount.StringFixed(3))
		assert.Equal(t, "F-2024-001", rec.VAT.Reference)
	})

	t.Run("invoice paid", func(t *testing.T) {
		rec, err := r.InvoicePaid(ctx, inv, ledger.MustParseDate("2024-06-03"))
		require.NoError(t, err)
		require.NotNil(t, rec.Cash)
		// 1191 TTC less 1% withholding
		assert.Equal(t, "1179.090", rec.Cash.Amount.StringFixed(3))
		assert.Equal(t, Income, rec.Cash.Type)
		assert.Equal(t, "2024-06-03", rec.Cash.Timestamp.Format("2006-01-02"))
	})

	t.Run("draft invoice", func(t *testing.T) {
		draft := inv
		draft.Status = ledger.InvoiceDraft
		_, err := r.InvoiceValidated(ctx, draft)
		assert.ErrorIs(t, err, ledger.ErrNotPostable)
	})

	exp := ledger.Expense{
		ID:         "exp-1",
		Date:       ledger.MustParseDate("2024-05-12"),
		Category:   ledger.CategoryFuel,
		VehicleID:  "veh-1",
		AmountHT:   d("500"),
		VATAmount:  d("35"),
		AmountTTC:  d("535"),
		Deductible: true,
	}

	t.Run("expense validated derives the rate", func(t *testing.T) {
		rec, err := r.ExpenseValidated(ctx, exp)
		require.NoError(t, err)
		require.NotNil(t, rec.VAT)
		assert.Equal(t, VATDeductible, rec.VAT.Type)
		assert.Equal(t, "7", rec.VAT.Rate.String())
		assert.Equal(t, "35.000", rec.VAT.Amount.StringFixed(3))
	})

	t.Run("non deductible expense logs nothing", func(t *testing.T) {
		nd := exp
		nd.Deductible = false
		rec, err := r.ExpenseValidated(ctx, nd)
		require.NoError(t, err)
		assert.Nil(t, rec.VAT)
	})

	t.Run("expense paid", func(t *testing.T) {
		rec, err := r.ExpensePaid(ctx, exp, ledger.Date{})
		require.NoError(t, err)
		require.NotNil(t, rec.Cash)
		assert.Equal(t, Outflow, rec.Cash.Type)
		assert.Equal(t, "535", rec.Cash.Amount.String())
		assert.Equal(t, "veh-1", rec.Cash.VehicleID)
		assert.Equal(t, fixedNow, rec.Cash.Timestamp)
	})

	t.Run("salary paid", func(t *testing.T) {
		emp := ledger.Employee{ID: "emp-1", Name: "Sami", BaseSalary: d("600"), MaritalStatus: tax.Single}
		rec, err := r.SalaryPaid(ctx, emp, ledger.MustParseDate("2024-05-31"))
		require.NoError(t, err)
		assert.Equal(t, "525.742", rec.Cash.Amount.StringFixed(3))
		assert.Equal(t, SourceSalary, rec.Cash.ReferenceType)
		assert.Equal(t, "PAY-2024-05-emp-1", rec.Cash.ReferenceID)

		_, err = r.SalaryPaid(ctx, emp, ledger.Date{})
		assert.ErrorIs(t, err, ledger.ErrMissingPayrollDate)
	})

	txns, _ := cash.List(ctx)
	assert.Len(t, txns, 3)
	entries, _ := vatj.List(ctx)
	assert.Len(t, entries, 2)
}

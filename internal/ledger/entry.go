package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/money"
)

type JournalCode string

const (
	JournalSales         JournalCode = "VT"
	JournalPurchases     JournalCode = "AC"
	JournalMiscellaneous JournalCode = "OD"
	JournalBank          JournalCode = "BQ"
)

func JournalLabel(j JournalCode) string {
	switch j {
	case JournalSales:
		return "Ventes"
	case JournalPurchases:
		return "Achats"
	case JournalMiscellaneous:
		return "Opérations diverses"
	case JournalBank:
		return "Banque"
	default:
		return string(j)
	}
}

// Entry is one journal line. Exactly one of Debit and Credit is non-zero;
// the lines sharing a ReferenceID balance as a set.
type Entry struct {
	ID            string          `json:"id"`
	Date          Date            `json:"date"`
	Journal       JournalCode     `json:"journal"`
	AccountCode   string          `json:"account_code"`
	AccountLabel  string          `json:"account_label"`
	Label         string          `json:"label"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	ReferenceID   string          `json:"reference_id"`
	ReferenceType RefType         `json:"reference_type"`
}

func (e Entry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// Amount is the non-zero side of the line.
func (e Entry) Amount() decimal.Decimal {
	if e.IsDebit() {
		return e.Debit
	}
	return e.Credit
}

// Signed is debit minus credit.
func (e Entry) Signed() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// Totals sums the debit and credit sides of a set of lines.
func Totals(entries []Entry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return money.Round(debit), money.Round(credit)
}

// Balanced reports whether total debits equal total credits.
func Balanced(entries []Entry) bool {
	d, c := Totals(entries)
	return d.Equal(c)
}

// ByReference groups lines by the document that produced them, keeping order.
func ByReference(entries []Entry) map[string][]Entry {
	out := make(map[string][]Entry)
	for _, e := range entries {
		out[e.ReferenceID] = append(out[e.ReferenceID], e)
	}
	return out
}

// Filter keeps the lines matching keep.
func Filter(entries []Entry, keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// InPeriod keeps the lines dated within p.
func InPeriod(entries []Entry, p Period) []Entry {
	return Filter(entries, func(e Entry) bool { return p.Contains(e.Date) })
}

// SumDebits totals debits on lines whose account matches.
func SumDebits(entries []Entry, match func(code string) bool) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if match(e.AccountCode) {
			total = total.Add(e.Debit)
		}
	}
	return money.Round(total)
}

// SumCredits totals credits on lines whose account matches.
func SumCredits(entries []Entry, match func(code string) bool) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if match(e.AccountCode) {
			total = total.Add(e.Credit)
		}
	}
	return money.Round(total)
}

// IsAccount matches a single account code.
func IsAccount(code string) func(string) bool {
	return func(c string) bool { return c == code }
}

// IsType matches every account of the given type.
func IsType(t AccountType) func(string) bool {
	return func(c string) bool {
		got, err := TypeForCode(c)
		return err == nil && got == t
	}
}

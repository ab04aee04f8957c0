package money

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits every computed amount keeps.
// The dinar has 1000 millimes, so all arithmetic settles on 3 places.
const Places = 3

// DefaultCurrency is the bookkeeping currency.
const DefaultCurrency = "TND"

type CurrencyDef struct {
	Code     string
	Name     string
	Exponent int32 // 3 for TND (1000 millimes), 2 for EUR
}

var Currencies = map[string]CurrencyDef{
	"TND": {Code: "TND", Name: "Tunisian Dinar", Exponent: 3},
	"EUR": {Code: "EUR", Name: "Euro", Exponent: 2},
	"USD": {Code: "USD", Name: "US Dollar", Exponent: 2},
	"LYD": {Code: "LYD", Name: "Libyan Dinar", Exponent: 3},
	"DZD": {Code: "DZD", Name: "Algerian Dinar", Exponent: 2},
}

var Zero = decimal.Zero

func ValidCurrency(code string) bool {
	_, ok := Currencies[code]
	return ok
}

// Round rounds half away from zero to Places digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent returns round(base × rate / 100).
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(rate).Div(decimal.NewFromInt(100)))
}

// Sum adds already-rounded amounts and rounds the result.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round(total)
}

// Max0 clamps negative amounts to zero.
func Max0(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Parse reads a user-supplied amount like "1234.5" and rounds it.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Round(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatAmount renders an amount with the currency's exponent. E.g. 1050.5 TND -> "1050.500".
func FormatAmount(d decimal.Decimal, currency string) string {
	cur, ok := Currencies[currency]
	if !ok {
		return fmt.Sprintf("%s %s", d.StringFixed(Places), currency)
	}
	return d.StringFixed(cur.Exponent)
}

// Format renders a bookkeeping amount with 3 decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// FormatSigned renders a thousands-grouped amount, e.g. "-12 345.678".
func FormatSigned(d decimal.Decimal) string {
	s := d.Abs().StringFixed(Places)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

// CurrencyCodes returns a sorted list of supported currency codes.
func CurrencyCodes() []string {
	codes := make([]string, 0, len(Currencies))
	for code := range Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

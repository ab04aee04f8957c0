package ledger

import (
	"fmt"
	"strings"
)

type AccountType string

const (
	TypeAsset     AccountType = "ASSET"
	TypeLiability AccountType = "LIABILITY"
	TypeEquity    AccountType = "EQUITY"
	TypeRevenue   AccountType = "REVENUE"
	TypeExpense   AccountType = "EXPENSE"
)

var AllTypes = []AccountType{
	TypeAsset,
	TypeLiability,
	TypeEquity,
	TypeRevenue,
	TypeExpense,
}

// TypeForClass derives the account type from the leading digit of a
// system-of-accounts code. Class 4 (third parties) holds both receivables
// and payables; codes missing from the chart default to liabilities there.
func TypeForClass(code string) (AccountType, error) {
	code = strings.TrimSpace(code)
	if code == "" || code[0] < '1' || code[0] > '7' {
		return "", fmt.Errorf("%w: %q (class must be 1-7)", ErrUnknownAccount, code)
	}
	switch code[0] {
	case '1':
		return TypeEquity, nil
	case '2', '3', '5':
		return TypeAsset, nil
	case '4':
		return TypeLiability, nil
	case '6':
		return TypeExpense, nil
	default:
		return TypeRevenue, nil
	}
}

// TypeForCode looks the code up in the chart first and falls back to its class.
func TypeForCode(code string) (AccountType, error) {
	if e := LookupAccount(code); e != nil {
		return e.Type, nil
	}
	return TypeForClass(code)
}

// TypeLabel returns a human-readable label for an account type.
func TypeLabel(t AccountType) string {
	switch t {
	case TypeAsset:
		return "Assets"
	case TypeLiability:
		return "Liabilities"
	case TypeEquity:
		return "Equity"
	case TypeRevenue:
		return "Revenue"
	case TypeExpense:
		return "Expenses"
	default:
		return string(t)
	}
}

// NormalBalance returns "debit" or "credit" for the account type.
func NormalBalance(t AccountType) string {
	switch t {
	case TypeAsset, TypeExpense:
		return "debit"
	default:
		return "credit"
	}
}

func ValidType(t AccountType) bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

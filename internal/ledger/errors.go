package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDocument      = errors.New("invalid document")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidCurrency      = errors.New("invalid or unsupported currency code")
	ErrInvalidTurnoverBasis = errors.New("invalid turnover basis")
	ErrUnknownAccount       = errors.New("unknown account code")
	ErrNotPostable          = errors.New("document status does not allow posting")
	ErrPeriodClosed         = errors.New("fiscal period is closed")
	ErrPeriodAlreadyClosed  = errors.New("fiscal period already closed")
	ErrMissingPayrollDate   = errors.New("payroll date is required when employees are supplied")
)

type RefType string

const (
	RefInvoice        RefType = "INVOICE"
	RefExpense        RefType = "EXPENSE"
	RefPayroll        RefType = "PAYROLL"
	RefSocialSecurity RefType = "SOCIAL_SECURITY"
	RefEmployee       RefType = "EMPLOYEE"
	RefCash           RefType = "CASH_TRANSACTION"
	RefVATJournal     RefType = "VAT_JOURNAL"
)

// FieldError is one failed constraint on a document field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Value string `json:"value,omitempty"`
}

func (f FieldError) String() string {
	if f.Value != "" {
		return fmt.Sprintf("%s failed %s (%s)", f.Field, f.Rule, f.Value)
	}
	return fmt.Sprintf("%s failed %s", f.Field, f.Rule)
}

// ValidationError identifies the offending document. It unwraps to
// ErrInvalidDocument.
type ValidationError struct {
	RefType RefType      `json:"ref_type"`
	RefID   string       `json:"ref_id"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	id := e.RefID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("%s %s: %s", strings.ToLower(string(e.RefType)), id, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

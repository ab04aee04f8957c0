package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/money"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with decimal and Date support.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(Date); ok {
				return d.Time
			}
			return nil
		}, Date{})
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// check runs the struct tags and converts failures into a ValidationError.
func check(refType RefType, refID string, doc any, extra ...FieldError) error {
	var fields []FieldError
	if err := Validator().Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate %s %s: %w", refType, refID, err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field: fieldPath(fe.Namespace()),
				Rule:  ruleName(fe),
			})
		}
	}
	fields = append(fields, extra...)
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{RefType: refType, RefID: refID, Fields: fields}
}

// ValidateStruct runs the struct tags of any input outside the document set,
// such as cash ledger and VAT journal inputs.
func ValidateStruct(refType RefType, refID string, v any, extra ...FieldError) error {
	return check(refType, refID, v, extra...)
}

func fieldPath(ns string) string {
	// drop the struct name prefix: "Invoice.lines[0].quantity" -> "lines[0].quantity"
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func ruleName(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

func (inv Invoice) Validate() error {
	return check(RefInvoice, inv.ID, inv)
}

func (e Expense) Validate() error {
	// Unknown categories are accepted: they post to the generic account.
	var extra []FieldError
	// TTC must match to the millime so the supplier credit equals the debits.
	sum := money.Round(e.AmountHT).Add(money.Round(e.VATAmount))
	if !sum.Equal(money.Round(e.AmountTTC)) {
		extra = append(extra, FieldError{
			Field: "amount_ttc",
			Rule:  "eq amount_ht+vat_amount",
			Value: fmt.Sprintf("%s != %s", e.AmountTTC.StringFixed(3), sum.StringFixed(3)),
		})
	}
	return check(RefExpense, e.ID, e, extra...)
}

func (e Employee) Validate() error {
	return check(RefEmployee, e.ID, e)
}

// Package accounting derives journal lines from business documents.
//
// Generate is a full recompute: it has no memory of earlier calls and the
// caller replaces any previously generated set with its result.
package accounting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/tax"
	"go.uber.org/zap"
)

type Input struct {
	Invoices  []ledger.Invoice  `json:"invoices"`
	Expenses  []ledger.Expense  `json:"expenses"`
	Employees []ledger.Employee `json:"employees"`
	// PayrollDate dates the payroll run. Required when Employees is not empty.
	PayrollDate ledger.Date `json:"payroll_date"`
}

// InputFrom wraps a document set.
func InputFrom(docs ledger.Documents, payrollDate ledger.Date) Input {
	return Input{
		Invoices:    docs.Invoices,
		Expenses:    docs.Expenses,
		Employees:   docs.Employees,
		PayrollDate: payrollDate,
	}
}

// RecordError is a document that could not be posted.
type RecordError struct {
	RefType ledger.RefType `json:"ref_type"`
	RefID   string         `json:"ref_id"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
}

func (e RecordError) Error() string {
	return e.Message
}

func (e RecordError) Unwrap() error {
	return e.Err
}

func NewRecordError(refType ledger.RefType, refID string, err error) RecordError {
	return RecordError{RefType: refType, RefID: refID, Message: err.Error(), Err: err}
}

type Result struct {
	Entries []ledger.Entry `json:"entries"`
	Errors  []RecordError  `json:"errors"`
}

// Err joins the per-record errors, or returns nil when every document posted.
func (r Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

type Generator struct {
	schedule tax.Schedule
	log      *zap.Logger
	newID    func() string
}

type Option func(*Generator)

func WithSchedule(s tax.Schedule) Option {
	return func(g *Generator) { g.schedule = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithIDFunc replaces the UUIDv7 line id source.
func WithIDFunc(f func() string) Option {
	return func(g *Generator) { g.newID = f }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		schedule: tax.DefaultSchedule(),
		log:      zap.NewNop(),
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate posts every postable invoice, every expense and one payroll run,
// and returns the lines sorted by date. Invalid documents are skipped and
// reported in Result.Errors; the rest of the batch still posts.
func (g *Generator) Generate(in Input) Result {
	res := Result{Entries: []ledger.Entry{}, Errors: []RecordError{}}

	for _, inv := range in.Invoices {
		if !inv.Postable() {
			continue
		}
		if err := inv.Validate(); err != nil {
			res.reject(g.log, ledger.RefInvoice, inv.ID, err)
			continue
		}
		res.Entries = append(res.Entries, g.postInvoice(inv)...)
	}

	for _, exp := range in.Expenses {
		if err := exp.Validate(); err != nil {
			res.reject(g.log, ledger.RefExpense, exp.ID, err)
			continue
		}
		res.Entries = append(res.Entries, g.postExpense(exp)...)
	}

	if len(in.Employees) > 0 {
		if in.PayrollDate.IsZero() {
			res.reject(g.log, ledger.RefPayroll, "", ledger.ErrMissingPayrollDate)
		} else {
			for _, emp := range in.Employees {
				if err := emp.Validate(); err != nil {
					res.reject(g.log, ledger.RefPayroll, emp.ID, err)
					continue
				}
				res.Entries = append(res.Entries, g.postPayroll(emp, in.PayrollDate)...)
			}
		}
	}

	sort.SliceStable(res.Entries, func(i, j int) bool {
		return res.Entries[i].Date.Before(res.Entries[j].Date)
	})

	g.log.Debug("ledger generated",
		zap.Int("invoices", len(in.Invoices)),
		zap.Int("expenses", len(in.Expenses)),
		zap.Int("employees", len(in.Employees)),
		zap.Int("entries", len(res.Entries)),
		zap.Int("rejected", len(res.Errors)),
	)
	return res
}

func (r *Result) reject(log *zap.Logger, refType ledger.RefType, refID string, err error) {
	log.Warn("document not posted",
		zap.String("ref_type", string(refType)),
		zap.String("ref_id", refID),
		zap.Error(err),
	)
	r.Errors = append(r.Errors, NewRecordError(refType, refID, err))
}

func (g *Generator) postInvoice(inv ledger.Invoice) []ledger.Entry {
	t := inv.Totals()
	number := inv.Number
	if number == "" {
		number = inv.ID
	}
	label := fmt.Sprintf("Facture %s", number)
	if inv.ClientName != "" {
		label += " - " + inv.ClientName
	}
	return g.apply(ledger.InvoiceTemplate, inv.Date, inv.ID, label, "", map[ledger.Role]decimal.Decimal{
		ledger.RoleTotalTTC: t.TotalTTC,
		ledger.RoleTotalHT:  t.TotalHT,
		ledger.RoleVAT:      t.VATAmount,
		ledger.RoleStamp:    t.Stamp,
	})
}

func (g *Generator) postExpense(exp ledger.Expense) []ledger.Entry {
	label := exp.Description
	if label == "" {
		label = string(exp.Category)
	}
	return g.apply(ledger.ExpenseTemplate, exp.Date, exp.ID, label, ledger.AccountForCategory(exp.Category), map[ledger.Role]decimal.Decimal{
		ledger.RoleCost:           exp.Cost(),
		ledger.RoleRecoverableVAT: exp.RecoverableVAT(),
		ledger.RoleTotalTTC:       money.Round(exp.AmountTTC),
	})
}

// PayrollReference is the reference id shared by one employee's payroll lines.
func PayrollReference(employeeID string, date ledger.Date) string {
	return fmt.Sprintf("PAY-%s-%s", date.MonthKey(), employeeID)
}

func (g *Generator) postPayroll(emp ledger.Employee, date ledger.Date) []ledger.Entry {
	p := g.schedule.ComputePayroll(emp.PayrollInput())
	label := fmt.Sprintf("Paie %s", date.MonthKey())
	if emp.Name != "" {
		label += " - " + emp.Name
	}
	return g.apply(ledger.PayrollTemplate, date, PayrollReference(emp.ID, date), label, "", map[ledger.Role]decimal.Decimal{
		ledger.RoleGross:           p.Gross,
		ledger.RoleEmployerCharges: p.Employer.Total,
		ledger.RoleSocialCharges:   p.SocialContributions(),
		ledger.RoleIncomeTax:       p.MonthlyTax,
		ledger.RoleNetSalary:       p.Net,
	})
}

// apply expands a posting template. Legs whose amount is zero are skipped.
func (g *Generator) apply(tpl ledger.Template, date ledger.Date, refID, label, categoryAccount string, amounts map[ledger.Role]decimal.Decimal) []ledger.Entry {
	out := make([]ledger.Entry, 0, len(tpl.Legs))
	for _, leg := range tpl.Legs {
		amount := money.Round(amounts[leg.Role])
		if !amount.IsPositive() {
			continue
		}
		code := leg.Account
		if code == ledger.CategoryAccount {
			code = categoryAccount
		}
		refType := tpl.RefType
		if leg.RefType != "" {
			refType = leg.RefType
		}
		e := ledger.Entry{
			ID:            g.newID(),
			Date:          date,
			Journal:       tpl.Journal,
			AccountCode:   code,
			AccountLabel:  ledger.Label(code),
			Label:         label,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
			ReferenceID:   refID,
			ReferenceType: refType,
		}
		if leg.IsDebit {
			e.Debit = amount
		} else {
			e.Credit = amount
		}
		out = append(out, e)
	}
	return out
}

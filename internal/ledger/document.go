package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/tax"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceValidated InvoiceStatus = "VALIDATED"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gt=0"`
}

// Amount is quantity × unit price, rounded.
func (l LineItem) Amount() decimal.Decimal {
	return money.Round(l.Quantity.Mul(l.UnitPrice))
}

type Invoice struct {
	ID              string          `json:"id" validate:"required"`
	Number          string          `json:"number,omitempty"`
	ClientID        string          `json:"client_id" validate:"required"`
	ClientName      string          `json:"client_name,omitempty"`
	Status          InvoiceStatus   `json:"status" validate:"required,oneof=DRAFT VALIDATED PAID CANCELLED"`
	Date            Date            `json:"date" validate:"required"`
	Lines           []LineItem      `json:"lines" validate:"required,min=1,dive"`
	VATRate         decimal.Decimal `json:"vat_rate" validate:"gte=0,lte=100"`
	Stamp           decimal.Decimal `json:"stamp" validate:"gte=0"`
	Withholding     bool            `json:"withholding"`
	WithholdingRate decimal.Decimal `json:"withholding_rate" validate:"gte=0,lte=100"`
}

// InvoiceTotals are always derived from the line items.
type InvoiceTotals struct {
	TotalHT     decimal.Decimal `json:"total_ht"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	Stamp       decimal.Decimal `json:"stamp"`
	TotalTTC    decimal.Decimal `json:"total_ttc"`
	Withholding decimal.Decimal `json:"withholding"`
	NetToPay    decimal.Decimal `json:"net_to_pay"`
}

func (inv Invoice) Totals() InvoiceTotals {
	ht := decimal.Zero
	for _, l := range inv.Lines {
		ht = ht.Add(l.Amount())
	}
	ht = money.Round(ht)
	stamp := money.Round(inv.Stamp)

	t := InvoiceTotals{
		TotalHT:   ht,
		VATAmount: tax.VATAmount(ht, inv.VATRate),
		Stamp:     stamp,
	}
	t.TotalTTC = tax.TTCFromHT(ht, inv.VATRate, stamp)
	t.Withholding = tax.WithholdingAmount(t.TotalTTC, inv.WithholdingRate, inv.Withholding)
	t.NetToPay = money.Round(t.TotalTTC.Sub(t.Withholding))
	return t
}

// Postable reports whether the invoice participates in ledger and VAT
// derivation. Drafts and cancelled invoices never do.
func (inv Invoice) Postable() bool {
	return inv.Status == InvoiceValidated || inv.Status == InvoicePaid
}

type ExpenseCategory string

const (
	CategoryFuel        ExpenseCategory = "FUEL"
	CategoryMaintenance ExpenseCategory = "MAINTENANCE"
	CategorySpareParts  ExpenseCategory = "SPARE_PARTS"
	CategoryTolls       ExpenseCategory = "TOLLS"
	CategoryInsurance   ExpenseCategory = "INSURANCE"
	CategoryTaxes       ExpenseCategory = "TAXES"
	CategorySalary      ExpenseCategory = "SALARY"
	CategoryOffice      ExpenseCategory = "OFFICE"
	CategoryPersonal    ExpenseCategory = "PERSONAL"
	CategoryOther       ExpenseCategory = "OTHER"
)

var AllExpenseCategories = []ExpenseCategory{
	CategoryFuel,
	CategoryMaintenance,
	CategorySpareParts,
	CategoryTolls,
	CategoryInsurance,
	CategoryTaxes,
	CategorySalary,
	CategoryOffice,
	CategoryPersonal,
	CategoryOther,
}

func ValidExpenseCategory(c ExpenseCategory) bool {
	for _, v := range AllExpenseCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Expense amounts are required: an absent amount decodes to zero and is
// rejected rather than posted. VATAmount may be zero for exempt purchases.
type Expense struct {
	ID              string          `json:"id" validate:"required"`
	Date            Date            `json:"date" validate:"required"`
	Category        ExpenseCategory `json:"category" validate:"required"`
	Description     string          `json:"description"`
	SupplierID      string          `json:"supplier_id,omitempty"`
	VehicleID       string          `json:"vehicle_id,omitempty"`
	AmountHT        decimal.Decimal `json:"amount_ht" validate:"gt=0"`
	VATRate         decimal.Decimal `json:"vat_rate" validate:"gte=0,lte=100"`
	VATAmount       decimal.Decimal `json:"vat_amount" validate:"gte=0"`
	AmountTTC       decimal.Decimal `json:"amount_ttc" validate:"gt=0"`
	Deductible      bool            `json:"deductible"`
	WithholdingRate decimal.Decimal `json:"withholding_rate" validate:"gte=0,lte=100"`
}

// Cost is what the expense account carries: HT when the VAT is recovered,
// HT plus VAT when it is not.
func (e Expense) Cost() decimal.Decimal {
	if e.Deductible {
		return money.Round(e.AmountHT)
	}
	return money.Round(e.AmountHT.Add(e.VATAmount))
}

// RecoverableVAT is the VAT that goes to the deductible account.
func (e Expense) RecoverableVAT() decimal.Decimal {
	if !e.Deductible {
		return decimal.Zero
	}
	return money.Round(e.VATAmount)
}

// WithholdingAmount is the retention applied when paying the supplier.
func (e Expense) WithholdingAmount() decimal.Decimal {
	return tax.WithholdingAmount(e.AmountTTC, e.WithholdingRate, e.WithholdingRate.IsPositive())
}

type Employee struct {
	ID            string            `json:"id" validate:"required"`
	Name          string            `json:"name"`
	BaseSalary    decimal.Decimal   `json:"base_salary" validate:"gt=0"`
	MaritalStatus tax.MaritalStatus `json:"marital_status" validate:"required,oneof=SINGLE MARRIED"`
	Children      int               `json:"children" validate:"gte=0"`
	Bonus         decimal.Decimal   `json:"bonus" validate:"gte=0"`
}

func (e Employee) PayrollInput() tax.PayrollInput {
	return tax.PayrollInput{
		BaseSalary:    e.BaseSalary,
		MaritalStatus: e.MaritalStatus,
		Children:      e.Children,
		Bonus:         e.Bonus,
	}
}

// Documents is the full document set a recompute runs over.
type Documents struct {
	Invoices  []Invoice  `json:"invoices"`
	Expenses  []Expense  `json:"expenses"`
	Employees []Employee `json:"employees"`
}

// Package export writes the journal, the trial balance and the fiscal
// declarations to an XLSX workbook, one sheet each.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/declaration"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/report"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet names, in French like the chart labels.
const (
	SheetJournal        = "Journal"
	SheetTrialBalance   = "Balance"
	SheetVAT            = "TVA"
	SheetWithholding    = "Retenues"
	SheetSocialSecurity = "CNSS"
	SheetCorporateTax   = "IS"
	SheetClients        = "Clients"
	SheetSuppliers      = "Fournisseurs"
)

const amountFormat = "#,##0.000"

type Workbook struct {
	f      *excelize.File
	log    *zap.Logger
	sheets int

	header int
	amount int
	total  int
}

func New(log *zap.Logger) (*Workbook, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f := excelize.NewFile()
	wb := &Workbook{f: f, log: log}

	numFmt := amountFormat
	var err error
	if wb.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if wb.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create amount style: %w", err)
	}
	if wb.total, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &numFmt,
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create total style: %w", err)
	}
	return wb, nil
}

func (wb *Workbook) Close() error {
	return wb.f.Close()
}

func (wb *Workbook) WriteTo(w io.Writer) (int64, error) {
	return wb.f.WriteTo(w)
}

func (wb *Workbook) SaveAs(path string) error {
	if err := wb.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	wb.log.Info("workbook saved", zap.String("path", path), zap.Int("sheets", wb.sheets))
	return nil
}

// Sheets lists the sheets written so far.
func (wb *Workbook) Sheets() []string {
	if wb.sheets == 0 {
		return nil
	}
	return wb.f.GetSheetList()
}

// addSheet reuses the default sheet for the first call.
func (wb *Workbook) addSheet(name string) error {
	if wb.sheets == 0 {
		if err := wb.f.SetSheetName(wb.f.GetSheetName(0), name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else if _, err := wb.f.NewSheet(name); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	wb.sheets++
	return nil
}

// row writes values from column A of row r. Decimals are stored as numbers
// with three decimals.
func (wb *Workbook) row(sheet string, r int, style int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, r)
		if err != nil {
			return err
		}
		cellStyle := style
		switch x := v.(type) {
		case decimal.Decimal:
			v = x.InexactFloat64()
			if cellStyle == 0 {
				cellStyle = wb.amount
			}
		case ledger.Date:
			v = x.String()
		}
		if err := wb.f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
		if cellStyle != 0 {
			if err := wb.f.SetCellStyle(sheet, cell, cell, cellStyle); err != nil {
				return fmt.Errorf("%s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func (wb *Workbook) headerRow(sheet string, headers ...string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := wb.row(sheet, 1, wb.header, values...); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	return wb.f.SetColWidth(sheet, "A", last, 18)
}

type field struct {
	label string
	value any
}

// form writes a two-column label/value sheet.
func (wb *Workbook) form(sheet string, fields []field) error {
	if err := wb.addSheet(sheet); err != nil {
		return err
	}
	if err := wb.headerRow(sheet, "Rubrique", "Montant"); err != nil {
		return err
	}
	for i, f := range fields {
		if err := wb.row(sheet, i+2, 0, f.label, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (wb *Workbook) Journal(entries []ledger.Entry) error {
	if err := wb.addSheet(SheetJournal); err != nil {
		return err
	}
	if err := wb.headerRow(SheetJournal, "Date", "Journal", "Compte", "Intitulé", "Libellé", "Référence", "Débit", "Crédit"); err != nil {
		return err
	}
	debit, credit := decimal.Zero, decimal.Zero
	for i, e := range entries {
		if err := wb.row(SheetJournal, i+2, 0,
			e.Date, string(e.Journal), e.AccountCode, e.AccountLabel, e.Label, e.ReferenceID, e.Debit, e.Credit,
		); err != nil {
			return err
		}
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return wb.row(SheetJournal, len(entries)+2, wb.total, "Total", "", "", "", "", "", debit, credit)
}

func (wb *Workbook) TrialBalance(tb report.TrialBalance) error {
	if err := wb.addSheet(SheetTrialBalance); err != nil {
		return err
	}
	if err := wb.headerRow(SheetTrialBalance, "Compte", "Intitulé", "Type", "Débit", "Crédit", "Solde"); err != nil {
		return err
	}
	for i, l := range tb.Lines {
		if err := wb.row(SheetTrialBalance, i+2, 0,
			l.AccountCode, l.AccountLabel, string(l.Type), l.Debit, l.Credit, l.Balance(),
		); err != nil {
			return err
		}
	}
	return wb.row(SheetTrialBalance, len(tb.Lines)+2, wb.total, "Total", "", "", tb.TotalDebit, tb.TotalCredit)
}

func (wb *Workbook) VAT(decl declaration.VATDeclaration) error {
	return wb.form(SheetVAT, []field{
		{"Période", decl.Period},
		{"Chiffre d'affaires HT", decl.Sales.BaseHT},
		{"TVA collectée", decl.Sales.VATCollected},
		{"Achats HT", decl.Purchases.BaseHT},
		{"TVA déductible", decl.Purchases.VATDeductible},
		{"Droit de timbre", decl.StampDuty},
		{"Crédit reporté", decl.PriorCredit},
		{"Solde", decl.Net},
		{"TVA à payer", decl.VATPayable},
		{"Crédit de TVA", decl.VATCredit},
		{"Alerte", string(decl.Alert)},
	})
}

func (wb *Workbook) Withholding(decl declaration.WithholdingDeclaration) error {
	return wb.form(SheetWithholding, []field{
		{"Période", decl.Period},
		{"Salaires: bénéficiaires", decl.Salaries.Beneficiaries},
		{"Salaires: assiette", decl.Salaries.Base},
		{"Salaires: retenue", decl.Salaries.Amount},
		{"Honoraires: bénéficiaires", decl.Fees.Beneficiaries},
		{"Honoraires: assiette", decl.Fees.Base},
		{"Honoraires: retenue", decl.Fees.Amount},
		{"Total à reverser", decl.Total},
	})
}

func (wb *Workbook) SocialSecurity(decl declaration.SocialSecurityDeclaration) error {
	sheet := SheetSocialSecurity
	if err := wb.addSheet(sheet); err != nil {
		return err
	}
	if err := wb.headerRow(sheet, "Matricule", "Nom", "Salaire brut", "Part salariale", "Part patronale", "Total"); err != nil {
		return err
	}
	for i, l := range decl.Employees {
		if err := wb.row(sheet, i+2, 0, l.EmployeeID, l.Name, l.GrossSalary, l.EmployeePart, l.EmployerPart, l.Total); err != nil {
			return err
		}
	}
	return wb.row(sheet, len(decl.Employees)+2, wb.total,
		"Total "+decl.Period, "", decl.GrossSalary, decl.EmployeePart, decl.EmployerPart, decl.TotalDue)
}

func (wb *Workbook) CorporateTax(decl declaration.CorporateTaxDeclaration) error {
	return wb.form(SheetCorporateTax, []field{
		{"Exercice", decl.Year},
		{"Produits", decl.Revenue},
		{"Charges déductibles", decl.DeductibleExpenses},
		{"Réintégrations", decl.NonDeductible},
		{"Résultat fiscal", decl.TaxableProfit},
		{"Taux", decl.Rate},
		{"Impôt sur les sociétés", decl.Tax},
	})
}

func (wb *Workbook) Clients(st declaration.ClientStatement) error {
	sheet := SheetClients
	if err := wb.addSheet(sheet); err != nil {
		return err
	}
	if err := wb.headerRow(sheet, "Client", "Nom", "Factures", "Total HT", "TVA", "Total TTC"); err != nil {
		return err
	}
	for i, l := range st.Clients {
		if err := wb.row(sheet, i+2, 0, l.ClientID, l.ClientName, l.Invoices, l.TotalHT, l.VATAmount, l.TotalTTC); err != nil {
			return err
		}
	}
	return wb.row(sheet, len(st.Clients)+2, wb.total, "Total", "", "", st.TotalHT, st.VATAmount, st.TotalTTC)
}

func (wb *Workbook) Suppliers(st declaration.SupplierStatement) error {
	sheet := SheetSuppliers
	if err := wb.addSheet(sheet); err != nil {
		return err
	}
	if err := wb.headerRow(sheet, "Fournisseur", "Estimé", "Dépenses", "Montant HT", "TVA", "Montant TTC"); err != nil {
		return err
	}
	for i, l := range st.Suppliers {
		inferred := ""
		if l.Inferred {
			inferred = "oui"
		}
		if err := wb.row(sheet, i+2, 0, l.Supplier, inferred, l.Expenses, l.AmountHT, l.VATAmount, l.AmountTTC); err != nil {
			return err
		}
	}
	return wb.row(sheet, len(st.Suppliers)+2, wb.total, "Total", "", "", st.AmountHT, st.VATAmount, st.AmountTTC)
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/declaration"
	"github.com/simonvc/fiscaledger/internal/export"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/spf13/cobra"
)

var (
	declareDocs        string
	declarePeriod      string
	declarePayrollDate string
	declarePriorCredit string
	declareXLSX        string
)

var declareCmd = &cobra.Command{
	Use:   "declare",
	Short: "Compute the fiscal declarations of a period",
}

var declareVATCmd = &cobra.Command{
	Use:   "vat",
	Short: "Monthly VAT declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := declareRequest()
		if err != nil {
			return err
		}
		decl, err := newClient().DeclareVAT(context.Background(), req)
		if err != nil {
			return explain(err)
		}

		title("DECLARATION DE TVA "+decl.Period, 60)
		printForm([][2]string{
			{"Chiffre d'affaires HT", amount(decl.Sales.BaseHT)},
			{"TVA collectée", amount(decl.Sales.VATCollected)},
			{"Achats HT", amount(decl.Purchases.BaseHT)},
			{"TVA déductible", amount(decl.Purchases.VATDeductible)},
			{"Droit de timbre", amount(decl.StampDuty)},
			{"Crédit reporté", amount(decl.PriorCredit)},
			{"", ""},
			{"TVA à payer", amount(decl.VATPayable)},
			{"Crédit de TVA", amount(decl.VATCredit)},
		})
		printAlert(string(decl.Alert), decl.Message)
		printSkipped(decl.Skipped)
		return exportDeclaration(func(wb *export.Workbook) error { return wb.VAT(*decl) })
	},
}

var declareWithholdingCmd = &cobra.Command{
	Use:   "withholding",
	Short: "Monthly withholding tax declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := declareRequest()
		if err != nil {
			return err
		}
		decl, err := newClient().DeclareWithholding(context.Background(), req)
		if err != nil {
			return explain(err)
		}

		title("RETENUES A LA SOURCE "+decl.Period, 60)
		fmt.Printf("  %-15s %13s %15s %15s\n", "", "BENEFICIARIES", "BASE", "WITHHELD")
		fmt.Printf("  %-15s %13s %15s %15s\n", "", "-------------", "----", "--------")
		for _, b := range []struct {
			name string
			declaration.WithholdingBucket
		}{{"Salaries", decl.Salaries}, {"Fees", decl.Fees}} {
			fmt.Printf("  %-15s %13d %15s %15s\n", b.name, b.Beneficiaries, amount(b.Base), amount(b.Amount))
		}
		fmt.Printf("  %s\n", strings.Repeat("─", 60))
		fmt.Printf("  %-45s %15s\n", "Total", amount(decl.Total))
		printSkipped(decl.Skipped)
		return exportDeclaration(func(wb *export.Workbook) error { return wb.Withholding(*decl) })
	},
}

var declareCNSSCmd = &cobra.Command{
	Use:   "cnss",
	Short: "Quarterly social security declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := declareRequest()
		if err != nil {
			return err
		}
		decl, err := newClient().DeclareSocialSecurity(context.Background(), req)
		if err != nil {
			return explain(err)
		}

		w := 90
		title("DECLARATION CNSS "+decl.Period, w)
		fmt.Printf("  %-10s %-20s %13s %13s %13s %13s\n", "ID", "NAME", "GROSS", "EMPLOYEE", "EMPLOYER", "TOTAL")
		fmt.Printf("  %-10s %-20s %13s %13s %13s %13s\n", "--", "----", "-----", "--------", "--------", "-----")
		for _, l := range decl.Employees {
			fmt.Printf("  %-10s %-20s %13s %13s %13s %13s\n",
				truncate(l.EmployeeID, 10), truncate(l.Name, 20), amount(l.GrossSalary), amount(l.EmployeePart), amount(l.EmployerPart), amount(l.Total))
		}
		fmt.Printf("  %s\n", strings.Repeat("─", w-4))
		fmt.Printf("  %-31s %13s %13s %13s %13s\n", "TOTALS",
			amount(decl.GrossSalary), amount(decl.EmployeePart), amount(decl.EmployerPart), amount(decl.TotalDue))
		printSkipped(decl.Skipped)
		return exportDeclaration(func(wb *export.Workbook) error { return wb.SocialSecurity(*decl) })
	},
}

var declareCorporateCmd = &cobra.Command{
	Use:   "corporate",
	Short: "Yearly corporate tax declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := declareRequest()
		if err != nil {
			return err
		}
		decl, err := newClient().DeclareCorporateTax(context.Background(), req)
		if err != nil {
			return explain(err)
		}

		title(fmt.Sprintf("IMPOT SUR LES SOCIETES %d", decl.Year), 60)
		printForm([][2]string{
			{"Produits", amount(decl.Revenue)},
			{"Charges déductibles", amount(decl.DeductibleExpenses)},
			{"Réintégrations", amount(decl.NonDeductible)},
			{"Résultat fiscal", money.FormatSigned(decl.TaxableProfit)},
			{"Taux (%)", decl.Rate.String()},
			{"", ""},
			{"Impôt dû", money.FormatSigned(decl.Tax)},
		})
		printSkipped(decl.Skipped)
		return exportDeclaration(func(wb *export.Workbook) error { return wb.CorporateTax(*decl) })
	},
}

var declareClientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Client statement",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := declareRequest()
		if err != nil {
			return err
		}
		st, err := newClient().ClientStatement(context.Background(), req)
		if err != nil {
			return explain(err)
		}

		w := 90
		title("ETAT CLIENTS "+req.Period, w)
		fmt.Printf("  %-12s %-25s %5s %13s %13s %13s\n", "CLIENT", "NAME", "INV", "TOTAL HT", "VAT", "TOTAL TTC")
		fmt.Printf("  %-12s %-25s %5s %13s %13s %13s\n", "------", "----", "---", "--------", "---", "---------")
		for _, l := range st.Clients {
			fmt.Printf("  %-12s %-25s %5d %13s %13s %13s\n",
				truncate(l.ClientID, 12), truncate(l.ClientName, 25), l.Invoices, amount(l.TotalHT), amount(l.VATAmount), amount(l.TotalTTC))
		}
		fmt.Printf("  %s\n", strings.Repeat("─", w-4))
		fmt.Printf("  %-44s %13s %13s %13s\n", "TOTALS", amount(st.TotalHT), amount(st.VATAmount), amount(st.TotalTTC))
		printSkipped(st.Skipped)
		return exportDeclaration(func(wb *export.Workbook) error { return wb.Clients(*st) })
	},
}

var declareSuppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Supplier statement",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := declareRequest()
		if err != nil {
			return err
		}
		st, err := newClient().SupplierStatement(context.Background(), req)
		if err != nil {
			return explain(err)
		}

		w := 90
		title("ETAT FOURNISSEURS "+req.Period, w)
		fmt.Printf("  %-30s %5s %13s %13s %13s\n", "SUPPLIER", "EXP", "AMOUNT HT", "VAT", "AMOUNT TTC")
		fmt.Printf("  %-30s %5s %13s %13s %13s\n", "--------", "---", "---------", "---", "----------")
		for _, l := range st.Suppliers {
			name := truncate(l.Supplier, 28)
			if l.Inferred {
				name += " *"
			}
			fmt.Printf("  %-30s %5d %13s %13s %13s\n", name, l.Expenses, amount(l.AmountHT), amount(l.VATAmount), amount(l.AmountTTC))
		}
		fmt.Printf("  %s\n", strings.Repeat("─", w-4))
		fmt.Printf("  %-36s %13s %13s %13s\n", "TOTALS", amount(st.AmountHT), amount(st.VATAmount), amount(st.AmountTTC))
		fmt.Println("\n  * supplier inferred from the expense category")
		printSkipped(st.Skipped)
		return exportDeclaration(func(wb *export.Workbook) error { return wb.Suppliers(*st) })
	},
}

func declareRequest() (client.DocumentsRequest, error) {
	docs, err := readDocuments(declareDocs)
	if err != nil {
		return client.DocumentsRequest{}, err
	}
	if declarePeriod == "" {
		return client.DocumentsRequest{}, fmt.Errorf("--period is required")
	}
	payrollDate, err := parseDate("payroll-date", declarePayrollDate)
	if err != nil {
		return client.DocumentsRequest{}, err
	}
	prior, err := parseAmount("prior-credit", declarePriorCredit)
	if err != nil {
		return client.DocumentsRequest{}, err
	}
	return client.DocumentsRequest{
		Documents:   docs,
		Period:      declarePeriod,
		PayrollDate: payrollDate,
		PriorCredit: prior,
	}, nil
}

func exportDeclaration(fill func(*export.Workbook) error) error {
	if declareXLSX == "" {
		return nil
	}
	return saveWorkbook(declareXLSX, fill)
}

func printForm(rows [][2]string) {
	for _, r := range rows {
		if r[0] == "" {
			fmt.Printf("  %s\n", strings.Repeat("─", 56))
			continue
		}
		fmt.Printf("  %-40s %15s\n", r[0], r[1])
	}
}

func printAlert(alert, msg string) {
	if alert == "" || alert == "NONE" {
		return
	}
	fmt.Printf("\n  [%s] %s\n", alert, msg)
}

func init() {
	for _, c := range []*cobra.Command{
		declareVATCmd, declareWithholdingCmd, declareCNSSCmd,
		declareCorporateCmd, declareClientsCmd, declareSuppliersCmd,
	} {
		c.Flags().StringVar(&declareDocs, "docs", "", "Documents JSON file")
		c.Flags().StringVar(&declarePeriod, "period", "", "Declared period (YYYY-MM, YYYY-Qn or YYYY)")
		c.Flags().StringVar(&declarePayrollDate, "payroll-date", "", "Date of the payroll entries (defaults to the end of the period)")
		c.Flags().StringVar(&declareXLSX, "xlsx", "", "Also write an XLSX workbook")
		declareCmd.AddCommand(c)
	}
	declareVATCmd.Flags().StringVar(&declarePriorCredit, "prior-credit", "", "VAT credit carried from the previous month")
	rootCmd.AddCommand(declareCmd)
}

package cmd

import (
	"fmt"

	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/tax"
	"github.com/spf13/cobra"
)

var (
	payrollBase     string
	payrollNet      string
	payrollBonus    string
	payrollMarried  bool
	payrollChildren int
)

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Compute a monthly payslip",
}

var payrollComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Payslip from a gross base salary",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := parseAmount("base", payrollBase)
		if err != nil {
			return err
		}
		bonus, err := parseAmount("bonus", payrollBonus)
		if err != nil {
			return err
		}
		p := cfg.Tax.Payroll.ComputePayroll(tax.PayrollInput{
			BaseSalary:    base,
			MaritalStatus: payrollStatus(),
			Children:      payrollChildren,
			Bonus:         bonus,
		})
		printPayslip(p)
		return nil
	},
}

var payrollFromNetCmd = &cobra.Command{
	Use:   "from-net",
	Short: "Gross salary needed for a target net salary",
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := parseAmount("net", payrollNet)
		if err != nil {
			return err
		}
		bonus, err := parseAmount("bonus", payrollBonus)
		if err != nil {
			return err
		}
		res := cfg.Tax.Payroll.ComputePayrollFromTargetNet(net, payrollStatus(), payrollChildren, bonus)
		printPayslip(res.Payroll)
		if !res.Converged {
			fmt.Printf("\n  [APPROXIMATE] no exact solution after %d iterations, target %s\n",
				res.Iterations, money.FormatSigned(res.TargetNet))
		}
		return nil
	},
}

func payrollStatus() tax.MaritalStatus {
	if payrollMarried {
		return tax.Married
	}
	return tax.Single
}

func printPayslip(p tax.Payroll) {
	title("BULLETIN DE PAIE", 60)
	printForm([][2]string{
		{"Salaire de base", money.FormatSigned(p.BaseSalary)},
		{"Prime", amount(p.Bonus)},
		{"Salaire brut", money.FormatSigned(p.Gross)},
		{"CNSS salariale", money.FormatSigned(p.EmployeeContribution)},
		{"IRPP", money.FormatSigned(p.MonthlyTax)},
		{"", ""},
		{"Net à payer", money.FormatSigned(p.Net)},
	})
	fmt.Println()
	printForm([][2]string{
		{"Revenu annuel imposable", money.FormatSigned(p.AnnualTaxableBase)},
		{"Abattement frais professionnels", money.FormatSigned(p.ProfessionalDeduction)},
		{"Déductions familiales", amount(p.FamilyDeductions)},
		{"IRPP annuel", money.FormatSigned(p.AnnualTax)},
	})
	fmt.Println()
	printForm([][2]string{
		{"CNSS patronale", money.FormatSigned(p.Employer.Base)},
		{"TFP", money.FormatSigned(p.Employer.TrainingLevy)},
		{"FOPROLOS", money.FormatSigned(p.Employer.HousingFund)},
		{"Accidents du travail", money.FormatSigned(p.Employer.WorkAccident)},
		{"", ""},
		{"Coût employeur", money.FormatSigned(p.TotalEmployerCost)},
	})
}

func init() {
	for _, c := range []*cobra.Command{payrollComputeCmd, payrollFromNetCmd} {
		c.Flags().StringVar(&payrollBonus, "bonus", "", "Monthly bonus")
		c.Flags().BoolVar(&payrollMarried, "married", false, "Employee is head of household")
		c.Flags().IntVar(&payrollChildren, "children", 0, "Dependent children")
	}
	payrollComputeCmd.Flags().StringVar(&payrollBase, "base", "", "Gross base salary")
	payrollComputeCmd.MarkFlagRequired("base")
	payrollFromNetCmd.Flags().StringVar(&payrollNet, "net", "", "Target net salary")
	payrollFromNetCmd.MarkFlagRequired("net")

	payrollCmd.AddCommand(payrollComputeCmd)
	payrollCmd.AddCommand(payrollFromNetCmd)
	rootCmd.AddCommand(payrollCmd)
}

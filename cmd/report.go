package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportDocs        string
	reportPeriod      string
	reportPayrollDate string
	reportBasis       string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Management reports",
}

var reportPnLCmd = &cobra.Command{
	Use:   "pnl",
	Short: "Profit and loss of a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := readDocuments(reportDocs)
		if err != nil {
			return err
		}
		payrollDate, err := parseDate("payroll-date", reportPayrollDate)
		if err != nil {
			return err
		}
		pl, err := newClient().ProfitAndLoss(context.Background(), client.DocumentsRequest{
			Documents:   docs,
			Period:      reportPeriod,
			PayrollDate: payrollDate,
			Basis:       reportBasis,
		})
		if err != nil {
			return explain(err)
		}

		w := 70
		title("PROFIT AND LOSS "+pl.Period, w)
		fmt.Printf("  %-50s %15s\n", fmt.Sprintf("Turnover (%s)", pl.Basis), money.FormatSigned(pl.Turnover))
		fmt.Println()
		printPLSection("REVENUE", pl.Revenue, w)
		printPLSection("EXPENSES", pl.Expenses, w)
		fmt.Printf("  %-50s %15s\n", "Total expenses", money.FormatSigned(pl.TotalExpenses))
		fmt.Printf("  %s\n", strings.Repeat("═", w-4))
		fmt.Printf("  %-50s %15s\n", "RESULT", money.FormatSigned(pl.Result))
		return nil
	},
}

func printPLSection(name string, lines []report.PLLine, w int) {
	fmt.Printf("  %s\n", name)
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	for _, l := range lines {
		fmt.Printf("  %-8s %-41s %15s\n", l.AccountCode, truncate(l.AccountLabel, 41), money.FormatSigned(l.Amount))
	}
	fmt.Println()
}

var reportCostCentersCmd = &cobra.Command{
	Use:   "cost-centers",
	Short: "Income and expenses per vehicle",
	RunE: func(cmd *cobra.Command, args []string) error {
		centers, err := newClient().CostCenters(context.Background(), reportPeriod)
		if err != nil {
			return explain(err)
		}
		if len(centers) == 0 {
			fmt.Println("No vehicle movements.")
			return nil
		}

		w := 75
		title("COST CENTERS "+reportPeriod, w)
		fmt.Printf("  %-12s %5s %15s %15s %15s\n", "VEHICLE", "TXNS", "INCOME", "EXPENSES", "NET")
		fmt.Printf("  %-12s %5s %15s %15s %15s\n", "-------", "----", "------", "--------", "---")
		for _, c := range centers {
			fmt.Printf("  %-12s %5d %15s %15s %15s\n",
				truncate(c.VehicleID, 12), c.Transactions, amount(c.Income), amount(c.Expenses), money.FormatSigned(c.Net))
			cats := make([]string, 0, len(c.ByCategory))
			for cat := range c.ByCategory {
				cats = append(cats, cat)
			}
			sort.Strings(cats)
			for _, cat := range cats {
				fmt.Printf("    %-48s %15s\n", cat, money.FormatSigned(c.ByCategory[cat]))
			}
		}
		return nil
	},
}

func init() {
	reportPnLCmd.Flags().StringVar(&reportDocs, "docs", "", "Documents JSON file")
	reportPnLCmd.Flags().StringVar(&reportPeriod, "period", "", "Period (YYYY-MM, YYYY-Qn or YYYY)")
	reportPnLCmd.Flags().StringVar(&reportPayrollDate, "payroll-date", "", "Date of the payroll entries")
	reportPnLCmd.Flags().StringVar(&reportBasis, "basis", "HT", "Turnover basis (HT or TTC)")
	reportPnLCmd.MarkFlagRequired("period")

	reportCostCentersCmd.Flags().StringVar(&reportPeriod, "period", "", "Period (YYYY-MM, YYYY-Qn or YYYY)")
	reportCostCentersCmd.MarkFlagRequired("period")

	reportCmd.AddCommand(reportPnLCmd)
	reportCmd.AddCommand(reportCostCentersCmd)
	rootCmd.AddCommand(reportCmd)
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/export"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/report"
	"github.com/spf13/cobra"
)

var (
	ledgerDocs        string
	ledgerPayrollDate string
	ledgerPeriod      string
	ledgerXLSX        string
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Generate the journal and the trial balance",
}

var ledgerGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate journal entries from a documents file",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := ledgerRequest()
		if err != nil {
			return err
		}
		res, err := newClient().GenerateLedger(context.Background(), req)
		if err != nil {
			return explain(err)
		}

		printJournal(res.Entries)
		printSkipped(res.Errors)
		if ledgerXLSX == "" {
			return nil
		}
		return saveWorkbook(ledgerXLSX, func(wb *export.Workbook) error {
			if err := wb.Journal(res.Entries); err != nil {
				return err
			}
			return wb.TrialBalance(report.BuildTrialBalance(res.Entries))
		})
	},
}

var ledgerTrialBalanceCmd = &cobra.Command{
	Use:   "trial-balance",
	Short: "Show the trial balance of a documents file",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := ledgerRequest()
		if err != nil {
			return err
		}
		tb, err := newClient().TrialBalance(context.Background(), req)
		if err != nil {
			return explain(err)
		}
		printTrialBalance(tb)
		if ledgerXLSX == "" {
			return nil
		}
		return saveWorkbook(ledgerXLSX, func(wb *export.Workbook) error {
			return wb.TrialBalance(*tb)
		})
	},
}

var ledgerChartCmd = &cobra.Command{
	Use:   "chart",
	Short: "List the chart of accounts and the expense category mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		ctx := context.Background()
		chart, err := c.GetChart(ctx)
		if err != nil {
			return err
		}
		mappings, err := c.GetCategoryMappings(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%-8s %-45s %-10s\n", "CODE", "LABEL", "TYPE")
		fmt.Printf("%-8s %-45s %-10s\n", "----", "-----", "----")
		for _, a := range chart {
			fmt.Printf("%-8s %-45s %-10s\n", a.Code, truncate(a.Label, 45), a.Type)
		}
		fmt.Println()
		fmt.Printf("%-15s %-8s %s\n", "CATEGORY", "ACCOUNT", "LABEL")
		fmt.Printf("%-15s %-8s %s\n", "--------", "-------", "-----")
		for _, m := range mappings {
			fmt.Printf("%-15s %-8s %s\n", m.Category, m.Account, m.Label)
		}
		return nil
	},
}

func ledgerRequest() (client.DocumentsRequest, error) {
	docs, err := readDocuments(ledgerDocs)
	if err != nil {
		return client.DocumentsRequest{}, err
	}
	payrollDate, err := parseDate("payroll-date", ledgerPayrollDate)
	if err != nil {
		return client.DocumentsRequest{}, err
	}
	return client.DocumentsRequest{Documents: docs, PayrollDate: payrollDate, Period: ledgerPeriod}, nil
}

func printJournal(entries []ledger.Entry) {
	w := 110
	title("GENERAL JOURNAL", w)

	fmt.Printf("  %-10s %-4s %-8s %-40s %15s %15s\n", "DATE", "JNL", "ACCOUNT", "LABEL", "DEBIT", "CREDIT")
	fmt.Printf("  %-10s %-4s %-8s %-40s %15s %15s\n", "----", "---", "-------", "-----", "-----", "------")

	var ref string
	for _, e := range entries {
		if ref != "" && e.ReferenceID != ref {
			fmt.Println()
		}
		ref = e.ReferenceID
		fmt.Printf("  %-10s %-4s %-8s %-40s %15s %15s\n",
			e.Date, e.Journal, e.AccountCode, truncate(e.Label, 40), amount(e.Debit), amount(e.Credit))
	}

	tb := report.BuildTrialBalance(entries)
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-65s %15s %15s\n", fmt.Sprintf("%d entries", len(entries)), amount(tb.TotalDebit), amount(tb.TotalCredit))
}

func printTrialBalance(tb *report.TrialBalance) {
	w := 90
	title("TRIAL BALANCE "+tb.Period, w)

	fmt.Printf("  %-8s %-40s %15s %15s\n", "ACCOUNT", "LABEL", "DEBIT", "CREDIT")
	fmt.Printf("  %-8s %-40s %15s %15s\n", "-------", "-----", "-----", "------")
	for _, l := range tb.Lines {
		fmt.Printf("  %-8s %-40s %15s %15s\n", l.AccountCode, truncate(l.AccountLabel, 40), amount(l.Debit), amount(l.Credit))
	}
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-49s %15s %15s\n", "TOTALS", amount(tb.TotalDebit), amount(tb.TotalCredit))

	if tb.Balanced {
		fmt.Println("\n  [BALANCED]")
	} else {
		fmt.Println("\n  [UNBALANCED!]")
	}
}

func init() {
	for _, c := range []*cobra.Command{ledgerGenerateCmd, ledgerTrialBalanceCmd} {
		c.Flags().StringVar(&ledgerDocs, "docs", "", "Documents JSON file")
		c.Flags().StringVar(&ledgerPayrollDate, "payroll-date", "", "Date of the monthly payroll entries (YYYY-MM-DD)")
		c.Flags().StringVar(&ledgerXLSX, "xlsx", "", "Also write an XLSX workbook")
	}
	ledgerTrialBalanceCmd.Flags().StringVar(&ledgerPeriod, "period", "", "Restrict to a period (YYYY-MM, YYYY-Qn or YYYY)")
	ledgerCmd.AddCommand(ledgerGenerateCmd)
	ledgerCmd.AddCommand(ledgerTrialBalanceCmd)
	ledgerCmd.AddCommand(ledgerChartCmd)
	rootCmd.AddCommand(ledgerCmd)
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/spf13/cobra"
)

var (
	vatPeriod      string
	vatPriorCredit string
	vatLogType     string
	vatLogBase     string
	vatLogRate     string
	vatLogRef      string
)

var vatCmd = &cobra.Command{
	Use:   "vat",
	Short: "VAT journal operations",
}

var vatReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the VAT journal of a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		prior, err := parseAmount("prior-credit", vatPriorCredit)
		if err != nil {
			return err
		}
		r, err := newClient().ReconcileVATJournal(context.Background(), vatPeriod, prior)
		if err != nil {
			return explain(err)
		}

		title("VAT RECONCILIATION "+r.Period, 60)
		printForm([][2]string{
			{"Collected", amount(r.Collected)},
			{"Deductible", amount(r.Deductible)},
			{"Prior credit", amount(r.PriorCredit)},
			{"", ""},
			{"Net", amount(r.Net)},
			{"Payable", amount(r.Payable)},
			{"Credit carried forward", amount(r.Credit)},
		})
		printAlert(string(r.Alert), r.Message)
		return nil
	},
}

var vatJournalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List VAT journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := newClient().ListVATJournal(context.Background(), vatPeriod)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No VAT entries.")
			return nil
		}

		fmt.Printf("%-8s %-11s %-20s %13s %6s %13s %s\n", "PERIOD", "TYPE", "REFERENCE", "BASE", "RATE", "AMOUNT", "DECLARED")
		fmt.Printf("%-8s %-11s %-20s %13s %6s %13s %s\n", "------", "----", "---------", "----", "----", "------", "--------")
		for _, e := range entries {
			declared := ""
			if e.Declared {
				declared = "yes"
			}
			fmt.Printf("%-8s %-11s %-20s %13s %6s %13s %s\n",
				e.Period, e.Type, truncate(e.Reference, 20), amount(e.Base), e.Rate.String(), amount(e.Amount), declared)
		}
		return nil
	},
}

var vatLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a VAT operation by hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := parseAmount("base", vatLogBase)
		if err != nil {
			return err
		}
		rate, err := parseAmount("rate", vatLogRate)
		if err != nil {
			return err
		}
		e, err := newClient().LogVAT(context.Background(), journal.VATInput{
			Timestamp: time.Now().UTC(),
			Period:    vatPeriod,
			Type:      journal.VATType(strings.ToUpper(vatLogType)),
			Base:      base,
			Rate:      rate,
			Reference: vatLogRef,
		})
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Logged %s %s VAT %s on %s\n", e.ID, e.Type, amount(e.Amount), e.Period)
		return nil
	},
}

var vatDeclareCmd = &cobra.Command{
	Use:   "declare",
	Short: "Mark the VAT entries of a month as declared",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newClient().DeclareVATJournal(context.Background(), vatPeriod)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Marked %d entries of %s as declared\n", n, vatPeriod)
		return nil
	},
}

func init() {
	vatReconcileCmd.Flags().StringVar(&vatPeriod, "period", "", "Month (YYYY-MM)")
	vatReconcileCmd.Flags().StringVar(&vatPriorCredit, "prior-credit", "", "VAT credit carried from the previous month")
	vatReconcileCmd.MarkFlagRequired("period")

	vatJournalCmd.Flags().StringVar(&vatPeriod, "period", "", "Filter by month (YYYY-MM)")

	vatLogCmd.Flags().StringVar(&vatPeriod, "period", "", "Month (defaults to the current month)")
	vatLogCmd.Flags().StringVar(&vatLogType, "type", "", "COLLECTED or DEDUCTIBLE")
	vatLogCmd.Flags().StringVar(&vatLogBase, "base", "", "Taxable base")
	vatLogCmd.Flags().StringVar(&vatLogRate, "rate", "19", "VAT rate in percent")
	vatLogCmd.Flags().StringVar(&vatLogRef, "ref", "", "Reference of the underlying document")
	vatLogCmd.MarkFlagRequired("type")
	vatLogCmd.MarkFlagRequired("base")
	vatLogCmd.MarkFlagRequired("ref")

	vatDeclareCmd.Flags().StringVar(&vatPeriod, "period", "", "Month (YYYY-MM)")
	vatDeclareCmd.MarkFlagRequired("period")

	vatCmd.AddCommand(vatReconcileCmd)
	vatCmd.AddCommand(vatJournalCmd)
	vatCmd.AddCommand(vatLogCmd)
	vatCmd.AddCommand(vatDeclareCmd)
	rootCmd.AddCommand(vatCmd)
}

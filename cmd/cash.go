package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/spf13/cobra"
)

var cashCmd = &cobra.Command{
	Use:   "cash",
	Short: "Cash journal",
}

// cash list
var (
	cashListVehicle string
	cashListRefType string
	cashListLimit   int
	cashListOffset  int
)

var cashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cash movements",
	RunE: func(cmd *cobra.Command, args []string) error {
		txns, err := newClient().ListCash(context.Background(), client.CashFilter{
			VehicleID:     cashListVehicle,
			ReferenceType: strings.ToUpper(cashListRefType),
			Limit:         cashListLimit,
			Offset:        cashListOffset,
		})
		if err != nil {
			return err
		}
		if len(txns) == 0 {
			fmt.Println("No cash movements.")
			return nil
		}

		fmt.Printf("%-16s %-7s %15s %-4s %-8s %-14s %-10s %s\n", "DATE", "TYPE", "AMOUNT", "CCY", "SOURCE", "REFERENCE", "VEHICLE", "DESCRIPTION")
		fmt.Printf("%-16s %-7s %15s %-4s %-8s %-14s %-10s %s\n", "----", "----", "------", "---", "------", "---------", "-------", "-----------")
		for _, t := range txns {
			fmt.Printf("%-16s %-7s %15s %-4s %-8s %-14s %-10s %s\n",
				t.Timestamp.Local().Format("2006-01-02 15:04"), t.Type,
				money.FormatAmount(t.Amount, t.Currency), t.Currency, t.ReferenceType,
				truncate(t.ReferenceID, 14), truncate(t.VehicleID, 10), truncate(t.Description, 40))
		}
		return nil
	},
}

// cash record
var (
	cashRecType     string
	cashRecAmount   string
	cashRecCurrency string
	cashRecRefType  string
	cashRecRefID    string
	cashRecCategory string
	cashRecDesc     string
	cashRecVehicle  string
	cashRecDate     string
)

var cashRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a cash movement",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := parseAmount("amount", cashRecAmount)
		if err != nil {
			return err
		}
		ts := time.Now().UTC()
		if cashRecDate != "" {
			d, err := parseDate("date", cashRecDate)
			if err != nil {
				return err
			}
			ts = d.Time
		}

		t, err := newClient().RecordCash(context.Background(), journal.TransactionInput{
			Timestamp:     ts,
			Type:          journal.TransactionType(strings.ToUpper(cashRecType)),
			Amount:        amt,
			Currency:      strings.ToUpper(cashRecCurrency),
			ReferenceType: journal.SourceType(strings.ToUpper(cashRecRefType)),
			ReferenceID:   cashRecRefID,
			Category:      cashRecCategory,
			Description:   cashRecDesc,
			VehicleID:     cashRecVehicle,
		})
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Recorded %s: %s %s %s\n", t.ID, t.Type, money.FormatAmount(t.Amount, t.Currency), t.Currency)
		return nil
	},
}

var cashClearYes bool

var cashClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cash movement and VAT journal entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cashClearYes {
			return fmt.Errorf("refusing to clear the journals without --yes")
		}
		if err := newClient().ResetAccountingData(context.Background()); err != nil {
			return err
		}
		fmt.Println("Cash and VAT journals cleared.")
		return nil
	},
}

func init() {
	cashListCmd.Flags().StringVar(&cashListVehicle, "vehicle", "", "Filter by vehicle")
	cashListCmd.Flags().StringVar(&cashListRefType, "source", "", "Filter by source (INVOICE, EXPENSE, SALARY, CAPITAL, MISSION)")
	cashListCmd.Flags().IntVar(&cashListLimit, "limit", 0, "Maximum number of movements")
	cashListCmd.Flags().IntVar(&cashListOffset, "offset", 0, "Skip the first movements")

	cashRecordCmd.Flags().StringVar(&cashRecType, "type", "", "INCOME or EXPENSE")
	cashRecordCmd.Flags().StringVar(&cashRecAmount, "amount", "", "Amount")
	cashRecordCmd.Flags().StringVar(&cashRecCurrency, "currency", "TND", "Currency")
	cashRecordCmd.Flags().StringVar(&cashRecRefType, "source", "CAPITAL", "Source (INVOICE, EXPENSE, SALARY, CAPITAL, MISSION)")
	cashRecordCmd.Flags().StringVar(&cashRecRefID, "ref", "", "Reference of the source document")
	cashRecordCmd.Flags().StringVar(&cashRecCategory, "category", "", "Category")
	cashRecordCmd.Flags().StringVar(&cashRecDesc, "desc", "", "Description")
	cashRecordCmd.Flags().StringVar(&cashRecVehicle, "vehicle", "", "Vehicle cost center")
	cashRecordCmd.Flags().StringVar(&cashRecDate, "date", "", "Value date (YYYY-MM-DD, defaults to now)")
	cashRecordCmd.MarkFlagRequired("type")
	cashRecordCmd.MarkFlagRequired("amount")

	cashClearCmd.Flags().BoolVar(&cashClearYes, "yes", false, "Confirm")

	cashCmd.AddCommand(cashListCmd)
	cashCmd.AddCommand(cashRecordCmd)
	cashCmd.AddCommand(cashClearCmd)
	rootCmd.AddCommand(cashCmd)
}

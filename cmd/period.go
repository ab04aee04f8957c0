package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Fiscal years",
}

var periodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List fiscal years",
	RunE: func(cmd *cobra.Command, args []string) error {
		periods, err := newClient().ListPeriods(context.Background())
		if err != nil {
			return err
		}
		if len(periods) == 0 {
			fmt.Println("No fiscal years recorded. Every year is open.")
			return nil
		}

		fmt.Printf("%-6s %-8s %-20s %s\n", "YEAR", "STATUS", "CLOSED AT", "CLOSED BY")
		fmt.Printf("%-6s %-8s %-20s %s\n", "----", "------", "---------", "---------")
		for _, p := range periods {
			closedAt := ""
			if p.ClosedAt != nil {
				closedAt = p.ClosedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Printf("%-6d %-8s %-20s %s\n", p.Year, p.Status, closedAt, p.ClosedBy)
		}
		return nil
	},
}

var periodCloseBy string

var periodCloseCmd = &cobra.Command{
	Use:   "close YEAR",
	Short: "Close a fiscal year; its journals become read-only",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}
		p, err := newClient().ClosePeriod(context.Background(), year, periodCloseBy)
		if err != nil {
			return err
		}
		fmt.Printf("Fiscal year %d closed by %s\n", p.Year, p.ClosedBy)
		return nil
	},
}

func init() {
	periodCloseCmd.Flags().StringVar(&periodCloseBy, "by", "", "Who closes the year")
	periodCloseCmd.MarkFlagRequired("by")

	periodCmd.AddCommand(periodListCmd)
	periodCmd.AddCommand(periodCloseCmd)
	rootCmd.AddCommand(periodCmd)
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/spf13/cobra"
)

var (
	eventDocs   string
	eventID     string
	eventPaidOn string
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Record a document event in the cash and VAT journals",
	Long: "Looks up a document by id in a documents file and sends the matching lifecycle event " +
		"to the server, which records the resulting cash movement and VAT operation.",
}

func newEventCmd(use, short string, send func(*client.Client, ledger.Documents, ledger.Date) (*journal.Recorded, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(eventDocs)
			if err != nil {
				return err
			}
			paidOn := ledger.DateOf(time.Now())
			if eventPaidOn != "" {
				if paidOn, err = parseDate("paid-on", eventPaidOn); err != nil {
					return err
				}
			}
			rec, err := send(newClient(), docs, paidOn)
			if err != nil {
				return explain(err)
			}
			printRecorded(rec)
			return nil
		},
	}
}

func printRecorded(rec *journal.Recorded) {
	if rec.Cash == nil && rec.VAT == nil {
		fmt.Println("Nothing to record.")
		return
	}
	if t := rec.Cash; t != nil {
		fmt.Printf("Cash  %s %-7s %15s %s\n", t.ID, t.Type, money.FormatAmount(t.Amount, t.Currency), t.Description)
	}
	if e := rec.VAT; e != nil {
		fmt.Printf("VAT   %s %-10s %15s %s\n", e.ID, e.Type, money.Format(e.Amount), e.Period)
	}
}

func findInvoice(docs ledger.Documents) (ledger.Invoice, error) {
	for _, inv := range docs.Invoices {
		if inv.ID == eventID {
			return inv, nil
		}
	}
	return ledger.Invoice{}, fmt.Errorf("invoice %q not found", eventID)
}

func findExpense(docs ledger.Documents) (ledger.Expense, error) {
	for _, exp := range docs.Expenses {
		if exp.ID == eventID {
			return exp, nil
		}
	}
	return ledger.Expense{}, fmt.Errorf("expense %q not found", eventID)
}

func findEmployee(docs ledger.Documents) (ledger.Employee, error) {
	for _, emp := range docs.Employees {
		if emp.ID == eventID {
			return emp, nil
		}
	}
	return ledger.Employee{}, fmt.Errorf("employee %q not found", eventID)
}

var eventCmds = []*cobra.Command{
	newEventCmd("invoice-validated", "Invoice validated: log its collected VAT",
		func(c *client.Client, docs ledger.Documents, _ ledger.Date) (*journal.Recorded, error) {
			inv, err := findInvoice(docs)
			if err != nil {
				return nil, err
			}
			return c.InvoiceValidated(context.Background(), inv)
		}),
	newEventCmd("invoice-paid", "Invoice paid: record the cash receipt",
		func(c *client.Client, docs ledger.Documents, paidOn ledger.Date) (*journal.Recorded, error) {
			inv, err := findInvoice(docs)
			if err != nil {
				return nil, err
			}
			return c.InvoicePaid(context.Background(), inv, paidOn)
		}),
	newEventCmd("expense-validated", "Expense validated: log its deductible VAT",
		func(c *client.Client, docs ledger.Documents, _ ledger.Date) (*journal.Recorded, error) {
			exp, err := findExpense(docs)
			if err != nil {
				return nil, err
			}
			return c.ExpenseValidated(context.Background(), exp)
		}),
	newEventCmd("expense-paid", "Expense paid: record the cash payment",
		func(c *client.Client, docs ledger.Documents, paidOn ledger.Date) (*journal.Recorded, error) {
			exp, err := findExpense(docs)
			if err != nil {
				return nil, err
			}
			return c.ExpensePaid(context.Background(), exp, paidOn)
		}),
	newEventCmd("salary-paid", "Salary paid: record the net salary payment",
		func(c *client.Client, docs ledger.Documents, paidOn ledger.Date) (*journal.Recorded, error) {
			emp, err := findEmployee(docs)
			if err != nil {
				return nil, err
			}
			return c.SalaryPaid(context.Background(), emp, paidOn)
		}),
}

func init() {
	for _, c := range eventCmds {
		c.Flags().StringVar(&eventDocs, "docs", "", "Documents JSON file")
		c.Flags().StringVar(&eventID, "id", "", "Document id")
		c.Flags().StringVar(&eventPaidOn, "paid-on", "", "Payment date (YYYY-MM-DD, defaults to today)")
		c.MarkFlagRequired("id")
		eventCmd.AddCommand(c)
	}
	rootCmd.AddCommand(eventCmd)
}

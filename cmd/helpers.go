package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/export"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/server"
	"github.com/simonvc/fiscaledger/internal/store"
)

func newClient() *client.Client {
	return client.New(cfg.Server.URL)
}

func newServer(st *store.Store, addr string) *server.Server {
	return server.New(st, addr,
		server.WithLogger(log),
		server.WithSchedule(cfg.Tax.Payroll),
		server.WithVATPolicy(cfg.Tax.VAT),
		server.WithCorporatePolicy(cfg.Tax.Corporate),
	)
}

// readDocuments loads {"invoices":[],"expenses":[],"employees":[]}.
func readDocuments(path string) (ledger.Documents, error) {
	var docs ledger.Documents
	if path == "" {
		return docs, errors.New("--docs is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return docs, fmt.Errorf("read documents: %w", err)
	}
	if err := json.Unmarshal(b, &docs); err != nil {
		return docs, fmt.Errorf("parse %s: %w", path, err)
	}
	return docs, nil
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := money.Parse(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func parseDate(name, s string) (ledger.Date, error) {
	if s == "" {
		return ledger.Date{}, nil
	}
	d, err := ledger.ParseDate(s)
	if err != nil {
		return ledger.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// explain prints the per-record and per-field details carried by an API
// error before returning it.
func explain(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	for _, r := range apiErr.Records {
		fmt.Printf("  %-8s %-20s %s\n", r.RefType, r.RefID, r.Message)
	}
	for _, f := range apiErr.Fields {
		fmt.Printf("  %s\n", f)
	}
	return err
}

// saveWorkbook creates a workbook, lets fill add its sheets and saves it.
func saveWorkbook(path string, fill func(*export.Workbook) error) error {
	wb, err := export.New(log)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := fill(wb); err != nil {
		return err
	}
	if err := wb.SaveAs(path); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func title(s string, w int) {
	fmt.Println()
	fmt.Println(center(s, w))
	fmt.Println(center(strings.Repeat("=", 20), w))
	fmt.Println()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-2] + ".."
	}
	return s
}

// amount renders zero as blank, like a paper ledger.
func amount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money.FormatSigned(d)
}

func printSkipped(errs []accounting.RecordError) {
	if len(errs) == 0 {
		return
	}
	fmt.Printf("\n  %d document(s) skipped:\n", len(errs))
	for _, e := range errs {
		fmt.Printf("  %-8s %-20s %s\n", e.RefType, e.RefID, e.Message)
	}
}

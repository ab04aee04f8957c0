package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fiscaledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Database, cfg.Database)
	assert.Equal(t, def.Log, cfg.Log)
	assert.Equal(t, "9.18", cfg.Tax.Payroll.EmployeeRate.String())
	assert.Equal(t, 4, cfg.Tax.Payroll.MaxChildren)
	require.Len(t, cfg.Tax.Payroll.Brackets, 5)
	assert.Equal(t, "20000", cfg.Tax.Payroll.Brackets[1].UpTo.String())
	assert.Equal(t, "26", cfg.Tax.Payroll.Brackets[1].Rate.String())
	assert.True(t, cfg.Tax.Payroll.Brackets[4].UpTo.IsZero())
	assert.Equal(t, "5000", cfg.Tax.VAT.HighPayableThreshold.String())
	assert.Equal(t, "-2000", cfg.Tax.VAT.LargeCreditThreshold.String())
	assert.Equal(t, "15", cfg.Tax.Corporate.Rate.String())
	assert.Empty(t, cfg.Tax.Corporate.NonDeductibleCategories)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
database:
  path: books.db
log:
  level: debug
  format: json
tax:
  payroll:
    work_accident_rate: 2
  vat:
    high_payable_threshold: "8000.5"
  corporate:
    rate: 25
    non_deductible_categories: [FUEL, PERSONAL]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8888", cfg.Server.URL)
	assert.Equal(t, "books.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "2", cfg.Tax.Payroll.WorkAccidentRate.String())
	assert.Equal(t, "9.18", cfg.Tax.Payroll.EmployeeRate.String())
	assert.Equal(t, "8000.5", cfg.Tax.VAT.HighPayableThreshold.String())
	assert.Equal(t, "25", cfg.Tax.Corporate.Rate.String())
	assert.Equal(t, []ledger.ExpenseCategory{ledger.CategoryFuel, ledger.CategoryPersonal}, cfg.Tax.Corporate.NonDeductibleCategories)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("FISCALEDGER_DATABASE_PATH", "env.db")
	t.Setenv("FISCALEDGER_TAX_CORPORATE_RATE", "10")
	t.Setenv("FISCALEDGER_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Database.Path)
	assert.Equal(t, "10", cfg.Tax.Corporate.Rate.String())
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("FISCALEDGER_DATABASE_PATH", "env.db")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "ledger.db", "")
	fs.String("server", "http://localhost:8888", "")
	require.NoError(t, fs.Parse([]string{"--db", "flag.db"}))

	cfg, err := Load("",
		BindFlag("database.path", fs.Lookup("db")),
		BindFlag("server.url", fs.Lookup("server")),
		BindFlag("log.level", fs.Lookup("missing")),
	)
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.Database.Path)
	assert.Equal(t, "http://localhost:8888", cfg.Server.URL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown log level", "log:\n  level: loud\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"bad decimal", "tax:\n  corporate:\n    rate: abc\n"},
		{"rate out of range", "tax:\n  corporate:\n    rate: 150\n"},
		{"positive credit threshold", "tax:\n  vat:\n    large_credit_threshold: 10\n"},
		{"empty database path", "database:\n  path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

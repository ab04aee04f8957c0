package cmd

import (
	"fmt"

	"github.com/simonvc/fiscaledger/internal/config"
	"github.com/simonvc/fiscaledger/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig   string
	flagServer   string
	flagDB       string
	flagLogLevel string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fiscaledger",
	Short: "Tunisian bookkeeping and fiscal declarations",
	Long: "Generates the double-entry journal of a small Tunisian company from its invoices, " +
		"expenses and payroll, and derives the monthly VAT, withholding, CNSS and yearly corporate tax declarations.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		c, err := config.Load(flagConfig,
			config.BindFlag("server.url", flags.Lookup("server")),
			config.BindFlag("database.path", flags.Lookup("db")),
			config.BindFlag("log.level", flags.Lookup("log-level")),
			config.BindFlag("server.addr", flags.Lookup("addr")),
		)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		l, err := logger.New(c.Log)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		cfg, log = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./fiscaledger.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "ledger.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func Execute() error {
	return rootCmd.Execute()
}

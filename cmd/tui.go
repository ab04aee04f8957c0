package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/fiscaledger/internal/client"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/store"
	"github.com/simonvc/fiscaledger/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const embeddedAddr = "127.0.0.1:8888"

var (
	tuiDocs   string
	tuiPeriod string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		var docs ledger.Documents
		if tuiDocs != "" {
			var err error
			if docs, err = readDocuments(tuiDocs); err != nil {
				return err
			}
		}
		if tuiPeriod != "" {
			if _, err := ledger.ParsePeriod(tuiPeriod); err != nil {
				return fmt.Errorf("--period: %w", err)
			}
		}

		serverAddr := cfg.Server.URL
		if !cmd.Flags().Changed("server") {
			// Start embedded server in background
			st, err := store.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			// The alternate screen owns the terminal.
			if cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout" {
				log = zap.NewNop()
			}
			srv := newServer(st, embeddedAddr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Error("embedded server stopped", zap.Error(err))
				}
			}()
			serverAddr = "http://" + embeddedAddr

			// Wait for server to be ready
			c := client.New(serverAddr)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for {
				if err := c.Ping(ctx); err == nil {
					break
				}
				if ctx.Err() != nil {
					return fmt.Errorf("timeout waiting for embedded server")
				}
				time.Sleep(50 * time.Millisecond)
			}
		}

		app := tui.NewApp(client.New(serverAddr), docs, tuiPeriod)
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiDocs, "docs", "", "Documents JSON file")
	tuiCmd.Flags().StringVar(&tuiPeriod, "period", "", "Period to browse (YYYY-MM, YYYY-Qn or YYYY)")
	rootCmd.AddCommand(tuiCmd)
}

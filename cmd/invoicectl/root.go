package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extract/internal/app"
	"github.com/joseph-ayodele/invoice-extract/internal/common"
)

var (
	cfgFile  string
	logLevel string
	dbURL    string

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "Extract and validate invoice fields from OCR output",
	Long: `invoicectl turns OCR fragment dumps into structured invoice records.

Commands:
  - extract   run extraction on one document and print the result
  - batch     ingest every fragment dump under a directory
  - export    write stored invoices to CSV or XLSX
  - dbhealth  check database connectivity`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		if dbURL != "" {
			c.Database.DSN = dbURL
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logger = common.NewLogger(c.Log, cmd.ErrOrStderr())
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug | info | warn | error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database DSN (overrides DB_URL)")

	rootCmd.AddCommand(extractCmd, batchCmd, exportCmd, dbhealthCmd)
}

// openApp builds the database-backed components for a command.
func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

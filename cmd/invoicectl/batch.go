package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extract/internal/repository"
)

var (
	batchOut        string
	batchShowHidden bool
)

var batchCmd = &cobra.Command{
	Use:   "batch DIR",
	Short: "Ingest every document under DIR and optionally export the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Info("starting ingestion", "dir", args[0])
		results, stats, err := a.Ingestor.IngestDirectory(ctx, args[0], !batchShowHidden)
		if err != nil {
			return err
		}

		if batchOut != "" {
			xlsx, err := a.Exports.ExportXLSX(ctx, repository.ListFilter{})
			if err != nil {
				return err
			}
			if err := os.WriteFile(batchOut, xlsx, 0o644); err != nil {
				return err
			}
			logger.Info("export written", "output", batchOut)
		}

		return printJSON(cmd.OutOrStdout(), map[string]any{
			"stats":   stats,
			"results": results,
		})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write all stored invoices to this XLSX file afterwards")
	batchCmd.Flags().BoolVar(&batchShowHidden, "hidden", false, "include hidden files and directories")
}

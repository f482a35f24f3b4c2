package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/repository"
)

var (
	exportFormat string
	exportOut    string
	exportStatus string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored invoices as CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := repository.ListFilter{Status: constants.ValidationStatus(strings.ToUpper(exportStatus))}
		switch filter.Status {
		case "", constants.ValidationStatusValid, constants.ValidationStatusInvalid:
		default:
			return fmt.Errorf("--status must be VALID or INVALID")
		}
		format := strings.ToLower(exportFormat)
		if format != "csv" && format != "xlsx" {
			return fmt.Errorf("--format must be csv or xlsx")
		}
		if format == "xlsx" && exportOut == "" {
			return fmt.Errorf("--out is required for xlsx")
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if format == "xlsx" {
			xlsx, err := a.Exports.ExportXLSX(ctx, filter)
			if err != nil {
				return err
			}
			return os.WriteFile(exportOut, xlsx, 0o644)
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return a.Exports.ExportCSV(ctx, w, filter)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv | xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (csv defaults to stdout)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only VALID or INVALID invoices")
}

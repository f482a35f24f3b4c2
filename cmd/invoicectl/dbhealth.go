package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extract/internal/repository"
	svc "github.com/joseph-ayodele/invoice-extract/internal/server"
)

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Check the database connection and count stored invoices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := svc.PingDB(ctx, a.DB, logger, time.Second); err != nil {
			return fmt.Errorf("DB health: FAIL (%w)", err)
		}
		invs, err := a.Invoices.List(ctx, repository.ListFilter{})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (%s)\n", a.DB.Dialect())
		fmt.Fprintf(cmd.OutOrStdout(), "invoices stored: %d\n", len(invs))
		return nil
	},
}

package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/joseph-ayodele/invoice-extract/internal/app"
	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
	svc "github.com/joseph-ayodele/invoice-extract/internal/server"
	"github.com/joseph-ayodele/invoice-extract/internal/utils"
)

var (
	extractSave   bool
	extractLines  bool
	extractServer string
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract fields from one document and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		src, _ := app.NewSource(cfg.Extraction, logger)
		frags, err := src.Fragments(ctx, path)
		if err != nil {
			return err
		}

		if extractServer != "" {
			return extractRemote(ctx, cmd, path, frags)
		}

		p, err := app.NewPipeline(cfg.Extraction, logger)
		if err != nil {
			return err
		}
		if extractLines {
			return printJSON(cmd.OutOrStdout(), ocr.Texts(p.Lines(frags)))
		}
		if !extractSave {
			return printJSON(cmd.OutOrStdout(), p.Run(frags))
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		inv, err := a.Processor.ProcessDocument(ctx, filepath.Base(path), frags)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), utils.ToInvoiceView(inv))
	},
}

func extractRemote(ctx context.Context, cmd *cobra.Command, path string, frags []ocr.Fragment) error {
	conn, err := grpc.NewClient(extractServer, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer conn.Close()

	st, err := utils.ToStruct(svc.ScanRequest{Filename: filepath.Base(path), Fragments: frags, Persist: extractSave})
	if err != nil {
		return err
	}
	req := st.AsMap()

	ctx, cancel := common.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	out, err := svc.NewExtractionClient(conn).Call(ctx, "Extract", req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func init() {
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "store the invoice in the database")
	extractCmd.Flags().BoolVar(&extractLines, "lines", false, "print the reconstructed lines only")
	extractCmd.Flags().StringVar(&extractServer, "server", "", "send the document to a running invoiced (gRPC address)")
}

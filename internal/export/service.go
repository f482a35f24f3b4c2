package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extract/internal/entity"
	"github.com/joseph-ayodele/invoice-extract/internal/repository"
	"github.com/joseph-ayodele/invoice-extract/internal/utils"
)

const sheet = "Invoices"

// Columns shared by both formats; the workbook adds Status.
var headers = []string{"ID", "Vendor", "Date", "Invoice #", "Total", "Currency", "Filename", "Confidence"}

// Service is a tiny façade over the invoice repository that renders exports.
type Service struct {
	invoicesRepo repository.InvoiceRepository
	logger       *slog.Logger
}

func NewService(repo repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoicesRepo: repo, logger: logger}
}

func row(inv *entity.Invoice) []string {
	return []string{
		inv.ID.String(),
		utils.StrOrEmpty(inv.VendorName),
		utils.StrOrEmpty(inv.InvoiceDate),
		utils.StrOrEmpty(inv.InvoiceNumber),
		utils.AmountOrEmpty(inv.Total),
		utils.StrOrEmpty(inv.Currency),
		inv.Filename,
		strconv.FormatFloat(inv.ConfidenceScore, 'f', 2, 64),
	}
}

// ExportCSV writes every stored invoice, newest first, as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, filter repository.ListFilter) error {
	start := time.Now()
	invs, err := s.invoicesRepo.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("query invoices: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, inv := range invs {
		if err := cw.Write(row(inv)); err != nil {
			return fmt.Errorf("csv row %s: %w", inv.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}

	s.logger.Info("export.csv.ok", "rows", len(invs), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// ExportXLSX returns a workbook (as bytes) with one row per stored invoice.
func (s *Service) ExportXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()
	invs, err := s.invoicesRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	write := func(col, r int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, r)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, h := range append(append([]string{}, headers...), "Status") {
		write(i+1, 1, h)
	}

	for i, inv := range invs {
		r := i + 2
		for c, v := range row(inv) {
			write(c+1, r, v)
		}
		// keep numbers numeric in the sheet
		if inv.Total != nil {
			total, _ := inv.Total.Float64()
			write(5, r, total)
		}
		write(8, r, inv.ConfidenceScore)
		write(9, r, string(inv.ValidationStatus))
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // id
	_ = f.SetColWidth(sheet, "B", "B", 28) // vendor
	_ = f.SetColWidth(sheet, "C", "D", 16)
	_ = f.SetColWidth(sheet, "G", "G", 40) // filename

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok", "rows", len(invs), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

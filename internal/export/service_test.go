package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/entity"
	"github.com/joseph-ayodele/invoice-extract/internal/repository"
)

type listRepo struct {
	repository.InvoiceRepository
	invs []*entity.Invoice
}

func (r listRepo) List(context.Context, repository.ListFilter) ([]*entity.Invoice, error) {
	return r.invs, nil
}

func str(s string) *string { return &s }

var (
	id1 = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	id2 = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func fixtures() listRepo {
	total := decimal.RequireFromString("110.00")
	return listRepo{invs: []*entity.Invoice{
		{
			ID:               id1,
			Filename:         "acme.json",
			VendorName:       str("ACME CORP"),
			InvoiceNumber:    str("INV-2023-001"),
			InvoiceDate:      str("2023-10-25"),
			Currency:         str("USD"),
			Total:            &total,
			ConfidenceScore:  1,
			ValidationStatus: constants.ValidationStatusValid,
			CreatedAt:        time.Now(),
		},
		{
			ID:               id2,
			Filename:         "blank.json",
			Currency:         str("USD"),
			ConfidenceScore:  0,
			ValidationStatus: constants.ValidationStatusInvalid,
			CreatedAt:        time.Now(),
		},
	}}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewService(fixtures(), nil).ExportCSV(context.Background(), &buf, repository.ListFilter{}); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	got, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"ID", "Vendor", "Date", "Invoice #", "Total", "Currency", "Filename", "Confidence"},
		{id1.String(), "ACME CORP", "2023-10-25", "INV-2023-001", "110.00", "USD", "acme.json", "1.00"},
		{id2.String(), "", "", "", "", "USD", "blank.json", "0.00"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestExportXLSX(t *testing.T) {
	data, err := NewService(fixtures(), nil).ExportXLSX(context.Background(), repository.ListFilter{})
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if diff := cmp.Diff(append(append([]string{}, headers...), "Status"), rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if rows[1][1] != "ACME CORP" || rows[1][8] != "VALID" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][8] != "INVALID" {
		t.Errorf("second row status = %q, want INVALID", rows[2][8])
	}
}

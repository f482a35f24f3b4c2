package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func str(s string) *string { return &s }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleInvoice(hash string) *entity.Invoice {
	return &entity.Invoice{
		Filename:         "acme.json",
		VendorName:       str("ACME CORP"),
		InvoiceNumber:    str("INV-2023-001"),
		InvoiceDate:      str("2023-10-25"),
		Currency:         str("USD"),
		Subtotal:         dec("100.00"),
		Tax:              dec("10.00"),
		Total:            dec("110.00"),
		ConfidenceScore:  1,
		ValidationStatus: constants.ValidationStatusValid,
		ContentHash:      hash,
		Items: []entity.InvoiceItem{
			{Description: "Widget", Quantity: dec("2"), UnitPrice: dec("50.00"), Amount: dec("100.00")},
			{Description: "Setup fee"},
		},
	}
}

var invoiceOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
}

func TestInvoiceRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t), nil)

	created, err := repo.Create(ctx, sampleInvoice("hash-1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("Create did not assign an id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("Create did not stamp created_at")
	}
	for i, it := range created.Items {
		if it.InvoiceID != created.ID || it.Position != i {
			t.Errorf("item %d = %+v, want invoice %s position %d", i, it, created.ID, i)
		}
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if diff := cmp.Diff(created, got, invoiceOpts); diff != "" {
		t.Errorf("GetByID mismatch (-want +got):\n%s", diff)
	}

	byHash, err := repo.GetByContentHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetByContentHash: %v", err)
	}
	if byHash.ID != created.ID {
		t.Errorf("GetByContentHash id = %s, want %s", byHash.ID, created.ID)
	}
}

func TestInvoiceRepositoryNullFields(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t), nil)

	in := &entity.Invoice{
		Filename:         "blank.json",
		Currency:         str("USD"),
		ValidationStatus: constants.ValidationStatusInvalid,
		ValidationErrors: []string{"Missing invoice number", "Missing required field: vendor_name"},
		NeedsReview:      true,
		ContentHash:      "hash-blank",
	}
	created, err := repo.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.VendorName != nil || got.Total != nil || got.Subtotal != nil {
		t.Errorf("absent fields came back non-nil: %+v", got)
	}
	if !got.NeedsReview {
		t.Error("NeedsReview lost")
	}
	if diff := cmp.Diff(in.ValidationErrors, got.ValidationErrors); diff != "" {
		t.Errorf("ValidationErrors mismatch (-want +got):\n%s", diff)
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Errorf("Items = %#v, want empty", got.Items)
	}
}

func TestInvoiceRepositoryDuplicateHash(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t), nil)

	if _, err := repo.Create(ctx, sampleInvoice("same")); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := repo.Create(ctx, sampleInvoice("same"))
	if !errors.Is(err, common.ErrDuplicate) {
		t.Fatalf("second Create error = %v, want ErrDuplicate", err)
	}

	all, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List returned %d invoices, want 1", len(all))
	}
}

func TestInvoiceRepositoryNotFound(t *testing.T) {
	repo := NewInvoiceRepository(openTestDB(t), nil)
	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("GetByID error = %v, want ErrNotFound", err)
	}
}

func TestInvoiceRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t), nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []constants.ValidationStatus{constants.ValidationStatusValid, constants.ValidationStatusInvalid, constants.ValidationStatusValid} {
		inv := sampleInvoice(uuid.NewString())
		inv.ValidationStatus = status
		inv.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if _, err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   []time.Time
	}{
		{"all newest first", ListFilter{}, []time.Time{base.Add(2 * time.Hour), base.Add(time.Hour), base}},
		{"valid only", ListFilter{Status: constants.ValidationStatusValid}, []time.Time{base.Add(2 * time.Hour), base}},
		{"paged", ListFilter{Limit: 1, Offset: 1}, []time.Time{base.Add(time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var stamps []time.Time
			for _, inv := range got {
				stamps = append(stamps, inv.CreatedAt)
				if len(inv.Items) != 2 {
					t.Errorf("invoice %s has %d items, want 2", inv.ID, len(inv.Items))
				}
			}
			if diff := cmp.Diff(tt.want, stamps, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("List order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

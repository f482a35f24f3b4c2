package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/entity"
)

const (
	invoicesTable = "invoices"
	itemsTable    = "invoice_items"
)

var invoiceColumns = []string{
	"id", "filename", "vendor_name", "invoice_number", "invoice_date", "currency",
	"subtotal", "tax", "total", "confidence_score", "validation_status",
	"validation_errors", "needs_review", "content_hash", "created_at",
}

var itemColumns = []string{
	"id", "invoice_id", "position", "description", "quantity", "unit_price", "amount",
}

// ListFilter narrows List. Zero values mean no limit and any status.
type ListFilter struct {
	Status constants.ValidationStatus
	Limit  int
	Offset int
}

type InvoiceRepository interface {
	// Create stores an invoice and its items in one transaction. A second
	// invoice with the same content hash fails with common.ErrDuplicate.
	Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByContentHash(ctx context.Context, hash string) (*entity.Invoice, error)
	// List returns invoices newest first.
	List(ctx context.Context, filter ListFilter) ([]*entity.Invoice, error)
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.dialect)
}

func (r *invoiceRepository) Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	row := *inv
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	row.CreatedAt = time.UnixMilli(row.CreatedAt.UnixMilli()).UTC()
	if row.ValidationErrors == nil {
		row.ValidationErrors = []string{}
	}
	errs, err := json.Marshal(row.ValidationErrors)
	if err != nil {
		return nil, fmt.Errorf("encode validation errors: %w", err)
	}

	row.Items = make([]entity.InvoiceItem, len(inv.Items))
	for i, it := range inv.Items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.InvoiceID = row.ID
		it.Position = i
		row.Items[i] = it
	}

	tx, err := r.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "begin tx", errors.Join(common.ErrDatabase, err))
	}
	defer func() { _ = tx.Rollback() }()

	q, args := r.builder().Insert(invoicesTable).
		Columns(invoiceColumns...).
		Values(
			row.ID.String(), row.Filename, nullString(row.VendorName), nullString(row.InvoiceNumber),
			nullString(row.InvoiceDate), nullString(row.Currency),
			nullDecimal(row.Subtotal), nullDecimal(row.Tax), nullDecimal(row.Total),
			row.ConfidenceScore, string(row.ValidationStatus), string(errs), row.NeedsReview,
			row.ContentHash, row.CreatedAt.UnixMilli(),
		).Query()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		if isUniqueViolation(err) {
			r.logger.Info("invoice.create.duplicate", "content_hash", row.ContentHash, "filename", row.Filename)
			return nil, common.NewAppError(common.CodeDuplicate, "invoice already processed", common.ErrDuplicate)
		}
		r.logger.Error("invoice.create.failed", "filename", row.Filename, "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "insert invoice", errors.Join(common.ErrDatabase, err))
	}

	if len(row.Items) > 0 {
		ins := r.builder().Insert(itemsTable).Columns(itemColumns...)
		for _, it := range row.Items {
			ins.Values(it.ID.String(), it.InvoiceID.String(), it.Position, it.Description,
				nullDecimal(it.Quantity), nullDecimal(it.UnitPrice), nullDecimal(it.Amount))
		}
		q, args := ins.Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			r.logger.Error("invoice.items.create.failed", "invoice_id", row.ID, "error", err)
			return nil, common.NewAppError(common.CodeDatabase, "insert invoice items", errors.Join(common.ErrDatabase, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "commit", errors.Join(common.ErrDatabase, err))
	}
	r.logger.Debug("invoice.create.ok", "id", row.ID, "items", len(row.Items))
	return &row, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.getOne(ctx, entsql.EQ("id", id.String()))
}

func (r *invoiceRepository) GetByContentHash(ctx context.Context, hash string) (*entity.Invoice, error) {
	return r.getOne(ctx, entsql.EQ("content_hash", hash))
}

func (r *invoiceRepository) getOne(ctx context.Context, where *entsql.Predicate) (*entity.Invoice, error) {
	b := r.builder()
	q, args := b.Select(invoiceColumns...).From(b.Table(invoicesTable)).Where(where).Limit(1).Query()
	invs, err := r.queryInvoices(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, common.NewAppError(common.CodeNotFound, "invoice not found", common.ErrNotFound)
	}
	if err := r.attachItems(ctx, invs); err != nil {
		return nil, err
	}
	return invs[0], nil
}

func (r *invoiceRepository) List(ctx context.Context, filter ListFilter) ([]*entity.Invoice, error) {
	b := r.builder()
	sel := b.Select(invoiceColumns...).From(b.Table(invoicesTable))
	if filter.Status != "" {
		sel.Where(entsql.EQ("validation_status", string(filter.Status)))
	}
	sel.OrderBy(entsql.Desc("created_at"), entsql.Asc("id"))
	switch {
	case filter.Limit > 0:
		sel.Limit(filter.Limit)
	case filter.Offset > 0:
		// sqlite rejects OFFSET without LIMIT
		sel.Limit(math.MaxInt32)
	}
	if filter.Offset > 0 {
		sel.Offset(filter.Offset)
	}
	q, args := sel.Query()

	invs, err := r.queryInvoices(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, invs); err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *invoiceRepository) queryInvoices(ctx context.Context, q string, args []any) ([]*entity.Invoice, error) {
	rows, err := r.db.SQL().QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("invoice.query.failed", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "query invoices", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, common.NewAppError(common.CodeDatabase, "scan invoice", errors.Join(common.ErrDatabase, err))
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "iterate invoices", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

// attachItems loads the items of every invoice with one query.
func (r *invoiceRepository) attachItems(ctx context.Context, invs []*entity.Invoice) error {
	if len(invs) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*entity.Invoice, len(invs))
	ids := make([]any, 0, len(invs))
	for _, inv := range invs {
		inv.Items = []entity.InvoiceItem{}
		byID[inv.ID] = inv
		ids = append(ids, inv.ID.String())
	}

	b := r.builder()
	q, args := b.Select(itemColumns...).From(b.Table(itemsTable)).
		Where(entsql.In("invoice_id", ids...)).
		OrderBy(entsql.Asc("invoice_id"), entsql.Asc("position")).
		Query()
	rows, err := r.db.SQL().QueryContext(ctx, q, args...)
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "query invoice items", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, invoiceID, desc    string
			pos                    int
			qty, unitPrice, amount decimal.NullDecimal
		)
		if err := rows.Scan(&id, &invoiceID, &pos, &desc, &qty, &unitPrice, &amount); err != nil {
			return common.NewAppError(common.CodeDatabase, "scan invoice item", errors.Join(common.ErrDatabase, err))
		}
		item := entity.InvoiceItem{
			ID:          uuid.MustParse(id),
			InvoiceID:   uuid.MustParse(invoiceID),
			Position:    pos,
			Description: desc,
			Quantity:    decimalPtr(qty),
			UnitPrice:   decimalPtr(unitPrice),
			Amount:      decimalPtr(amount),
		}
		if inv, ok := byID[item.InvoiceID]; ok {
			inv.Items = append(inv.Items, item)
		}
	}
	return rows.Err()
}

func scanInvoice(rows *sql.Rows) (*entity.Invoice, error) {
	var (
		id, filename, status, errs, hash string
		vendor, number, date, currency   sql.NullString
		subtotal, tax, total             decimal.NullDecimal
		score                            float64
		needsReview                      bool
		createdAt                        int64
	)
	if err := rows.Scan(&id, &filename, &vendor, &number, &date, &currency,
		&subtotal, &tax, &total, &score, &status, &errs, &needsReview, &hash, &createdAt); err != nil {
		return nil, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invoice id %q: %w", id, err)
	}
	inv := &entity.Invoice{
		ID:               parsedID,
		Filename:         filename,
		VendorName:       stringPtr(vendor),
		InvoiceNumber:    stringPtr(number),
		InvoiceDate:      stringPtr(date),
		Currency:         stringPtr(currency),
		Subtotal:         decimalPtr(subtotal),
		Tax:              decimalPtr(tax),
		Total:            decimalPtr(total),
		ConfidenceScore:  score,
		ValidationStatus: constants.ValidationStatus(status),
		NeedsReview:      needsReview,
		ContentHash:      hash,
		CreatedAt:        time.UnixMilli(createdAt).UTC(),
	}
	if err := json.Unmarshal([]byte(errs), &inv.ValidationErrors); err != nil {
		return nil, fmt.Errorf("decode validation errors: %w", err)
	}
	if inv.ValidationErrors == nil {
		inv.ValidationErrors = []string{}
	}
	return inv, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

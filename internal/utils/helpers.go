package utils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/entity"
	"github.com/joseph-ayodele/invoice-extract/internal/extract"
	"github.com/joseph-ayodele/invoice-extract/internal/pipeline"
)

func StrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func AmountOrEmpty(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return extract.FormatAmount(*d)
}

func amountPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := extract.FormatAmount(*d)
	return &s
}

// ToInvoice builds the row to store for a pipeline result. ID and CreatedAt
// are left for the repository to assign.
func ToInvoice(res pipeline.Result, filename, contentHash string) *entity.Invoice {
	f := res.Fields
	inv := &entity.Invoice{
		Filename:         filename,
		VendorName:       f.VendorName,
		InvoiceNumber:    f.InvoiceNumber,
		InvoiceDate:      f.InvoiceDate,
		Currency:         f.Currency,
		Subtotal:         f.Subtotal,
		Tax:              f.Tax,
		Total:            f.Total,
		ConfidenceScore:  res.Confidence,
		ValidationStatus: constants.StatusFor(res.Validation.IsValid),
		ValidationErrors: append([]string{}, res.Validation.Errors...),
		ContentHash:      contentHash,
		Items:            make([]entity.InvoiceItem, 0, len(f.LineItems)),
	}
	for i, li := range f.LineItems {
		inv.Items = append(inv.Items, entity.InvoiceItem{
			Position:    i,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      li.Amount,
		})
	}
	return inv
}

type InvoiceItemView struct {
	Description string  `json:"description"`
	Quantity    *string `json:"quantity"`
	UnitPrice   *string `json:"unit_price"`
	Amount      *string `json:"amount"`
}

// InvoiceView is the wire shape of a stored invoice on the HTTP and gRPC
// surfaces. Amounts are decimal strings and absent fields are null.
type InvoiceView struct {
	ID               string            `json:"id"`
	Filename         string            `json:"filename"`
	VendorName       *string           `json:"vendor_name"`
	InvoiceNumber    *string           `json:"invoice_number"`
	InvoiceDate      *string           `json:"invoice_date"`
	Currency         *string           `json:"currency"`
	Subtotal         *string           `json:"subtotal"`
	Tax              *string           `json:"tax"`
	Total            *string           `json:"total"`
	LineItems        []InvoiceItemView `json:"line_items"`
	ConfidenceScore  float64           `json:"confidence_score"`
	ValidationStatus string            `json:"validation_status"`
	ValidationErrors []string          `json:"validation_errors"`
	NeedsReview      bool              `json:"needs_review"`
	CreatedAt        string            `json:"created_at"`
}

func ToInvoiceView(inv *entity.Invoice) InvoiceView {
	v := InvoiceView{
		ID:               inv.ID.String(),
		Filename:         inv.Filename,
		VendorName:       inv.VendorName,
		InvoiceNumber:    inv.InvoiceNumber,
		InvoiceDate:      inv.InvoiceDate,
		Currency:         inv.Currency,
		Subtotal:         amountPtr(inv.Subtotal),
		Tax:              amountPtr(inv.Tax),
		Total:            amountPtr(inv.Total),
		LineItems:        make([]InvoiceItemView, 0, len(inv.Items)),
		ConfidenceScore:  inv.ConfidenceScore,
		ValidationStatus: string(inv.ValidationStatus),
		ValidationErrors: inv.ValidationErrors,
		NeedsReview:      inv.NeedsReview,
		CreatedAt:        inv.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.ValidationErrors == nil {
		v.ValidationErrors = []string{}
	}
	for _, it := range inv.Items {
		v.LineItems = append(v.LineItems, InvoiceItemView{
			Description: it.Description,
			Quantity:    amountPtr(it.Quantity),
			UnitPrice:   amountPtr(it.UnitPrice),
			Amount:      amountPtr(it.Amount),
		})
	}
	return v
}

func ToInvoiceViews(invs []*entity.Invoice) []InvoiceView {
	out := make([]InvoiceView, 0, len(invs))
	for _, inv := range invs {
		out = append(out, ToInvoiceView(inv))
	}
	return out
}

// ToStruct converts any JSON-marshalable value into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes a protobuf Struct into dst through its JSON form.
func FromStruct(s *structpb.Struct, dst any) error {
	b, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	return json.Unmarshal(b, dst)
}

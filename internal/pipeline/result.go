package pipeline

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extract/internal/extract"
	"github.com/joseph-ayodele/invoice-extract/internal/validate"
)

// Result is the outcome for one document. It is built once by the
// pipeline and not modified afterwards.
type Result struct {
	Fields     extract.Fields
	Validation validate.Result
	Confidence float64
}

type lineItemJSON struct {
	Description string  `json:"description"`
	Quantity    *string `json:"quantity"`
	UnitPrice   *string `json:"unit_price"`
	Amount      *string `json:"amount"`
}

type resultJSON struct {
	VendorName      *string         `json:"vendor_name"`
	InvoiceNumber   *string         `json:"invoice_number"`
	InvoiceDate     *string         `json:"invoice_date"`
	Currency        *string         `json:"currency"`
	Subtotal        *string         `json:"subtotal"`
	Tax             *string         `json:"tax"`
	Total           *string         `json:"total"`
	LineItems       []lineItemJSON  `json:"line_items"`
	Validation      validate.Result `json:"validation"`
	ConfidenceScore float64         `json:"confidence_score"`
}

// MarshalJSON writes the flat wire form: absent fields are null and amounts
// are decimal strings.
func (r Result) MarshalJSON() ([]byte, error) {
	f := r.Fields
	out := resultJSON{
		VendorName:      f.VendorName,
		InvoiceNumber:   f.InvoiceNumber,
		InvoiceDate:     f.InvoiceDate,
		Currency:        f.Currency,
		Subtotal:        amountString(f.Subtotal),
		Tax:             amountString(f.Tax),
		Total:           amountString(f.Total),
		LineItems:       make([]lineItemJSON, 0, len(f.LineItems)),
		Validation:      r.Validation,
		ConfidenceScore: r.Confidence,
	}
	if out.Validation.Errors == nil {
		out.Validation.Errors = []string{}
	}
	for _, li := range f.LineItems {
		out.LineItems = append(out.LineItems, lineItemJSON{
			Description: li.Description,
			Quantity:    amountString(li.Quantity),
			UnitPrice:   amountString(li.UnitPrice),
			Amount:      amountString(li.Amount),
		})
	}
	return json.Marshal(out)
}

func amountString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := extract.FormatAmount(*d)
	return &s
}

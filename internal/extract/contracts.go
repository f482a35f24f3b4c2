package extract

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

// Extractor is one field extraction strategy. Implementations are pure
// functions of the lines: they hold only read-only configuration, set only
// the fields they own and are safe to run concurrently on shared lines.
type Extractor interface {
	Name() string
	Extract(lines []ocr.Line) Fields
}

// Fields carries every extracted value. A nil pointer means the field was not
// found on the document.
type Fields struct {
	VendorName    *string
	InvoiceNumber *string
	InvoiceDate   *string // ISO 8601, YYYY-MM-DD
	Currency      *string // ISO 4217
	Subtotal      *decimal.Decimal
	Tax           *decimal.Decimal
	Total         *decimal.Decimal
	LineItems     []LineItem
}

// LineItem is one row of an item table.
type LineItem struct {
	Description string
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
	Amount      *decimal.Decimal
}

// Merge overlays the present values of each part, in order.
func Merge(parts ...Fields) Fields {
	var out Fields
	for _, p := range parts {
		if p.VendorName != nil {
			out.VendorName = p.VendorName
		}
		if p.InvoiceNumber != nil {
			out.InvoiceNumber = p.InvoiceNumber
		}
		if p.InvoiceDate != nil {
			out.InvoiceDate = p.InvoiceDate
		}
		if p.Currency != nil {
			out.Currency = p.Currency
		}
		if p.Subtotal != nil {
			out.Subtotal = p.Subtotal
		}
		if p.Tax != nil {
			out.Tax = p.Tax
		}
		if p.Total != nil {
			out.Total = p.Total
		}
		if p.LineItems != nil {
			out.LineItems = p.LineItems
		}
	}
	if out.LineItems == nil {
		out.LineItems = []LineItem{}
	}
	return out
}

// Config is the read-only rule set the extractors are built from.
type Config struct {
	KnownVendors    []string
	Currencies      []constants.CurrencyMarker
	DefaultCurrency string
}

// DefaultConfig returns the built-in rules.
func DefaultConfig() Config {
	return Config{
		Currencies:      append([]constants.CurrencyMarker(nil), constants.DefaultCurrencyMarkers...),
		DefaultCurrency: constants.DefaultCurrency,
	}
}

// Extractors returns the standard extractor set in merge order.
func Extractors(cfg Config) []Extractor {
	return []Extractor{
		NewVendorExtractor(cfg.KnownVendors),
		InvoiceNumberExtractor{},
		DateExtractor{},
		NewCurrencyExtractor(cfg.Currencies, cfg.DefaultCurrency),
		TotalsExtractor{},
		LineItemExtractor{},
	}
}

func ptr[T any](v T) *T { return &v }

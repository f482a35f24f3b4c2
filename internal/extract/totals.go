package extract

import (
	"regexp"

	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

var (
	reSubtotalLine = regexp.MustCompile(`(?i)sub[\s-]?total|net\s*total`)
	reTotalLine    = regexp.MustCompile(`(?i)total|amount\s+due`)
	reTaxLine      = regexp.MustCompile(`(?i)tax|vat|gst`)
)

type TotalsExtractor struct{}

func (TotalsExtractor) Name() string { return "totals" }

// Extract scans from the bottom of the document, where summary amounts sit.
// Each field keeps the first line that claims it and a line claims at most
// one field, checked as total, then tax, then subtotal. Subtotal lines never
// count as the grand total. When no total line exists the total is inferred
// as subtotal + tax.
func (TotalsExtractor) Extract(lines []ocr.Line) Fields {
	var out Fields
	for i := len(lines) - 1; i >= 0; i-- {
		text := lines[i].Text
		sub := reSubtotalLine.MatchString(text)

		if out.Total == nil && !sub && reTotalLine.MatchString(text) {
			if v, ok := LastAmount(text); ok {
				out.Total = &v
				continue
			}
		}
		if out.Tax == nil && reTaxLine.MatchString(text) {
			if v, ok := LastAmount(text); ok {
				out.Tax = &v
				continue
			}
		}
		if out.Subtotal == nil && sub {
			if v, ok := LastAmount(text); ok {
				out.Subtotal = &v
				continue
			}
		}
	}

	if out.Total == nil && out.Subtotal != nil && out.Tax != nil {
		out.Total = ptr(out.Subtotal.Add(*out.Tax))
	}
	return out
}

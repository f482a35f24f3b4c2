package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

// Tried in order on each line; the first match wins.
var invoiceNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\binvoice\s*no\b[.:#\s]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\binv\s*no\b[.:#\s]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\bbill\s*no\b[.:#\s]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\binvoice\s*#[.:\s]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\binv\s*#[.:\s]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\binvoice\s*number[.:#\s]*([A-Za-z0-9\-/]+)`),
}

type InvoiceNumberExtractor struct{}

func (InvoiceNumberExtractor) Name() string { return "invoice_number" }

func (e InvoiceNumberExtractor) Extract(lines []ocr.Line) Fields {
	if v, ok := e.InvoiceNumber(lines); ok {
		return Fields{InvoiceNumber: &v}
	}
	return Fields{}
}

// InvoiceNumber returns the identifier following the first invoice number
// label found, scanning lines top to bottom.
func (InvoiceNumberExtractor) InvoiceNumber(lines []ocr.Line) (string, bool) {
	for _, l := range lines {
		for _, re := range invoiceNumberPatterns {
			if m := re.FindStringSubmatch(l.Text); m != nil {
				return strings.TrimSpace(m[1]), true
			}
		}
	}
	return "", false
}

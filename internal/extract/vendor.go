package extract

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

// vendorHeaderLines is how far from the top of the document the fallback looks.
const vendorHeaderLines = 5

// Lines containing any of these, anywhere, carry document structure rather
// than a business name.
var structuralKeywords = []string{"INVOICE", "BILL", "DATE", "PAGE", "PH", "TAX", "GST", "VAT"}

// VendorExtractor finds the issuing business.
type VendorExtractor struct {
	known []string
}

func NewVendorExtractor(known []string) VendorExtractor {
	names := make([]string, 0, len(known))
	for _, k := range known {
		if k = strings.TrimSpace(k); k != "" {
			names = append(names, k)
		}
	}
	return VendorExtractor{known: names}
}

func (VendorExtractor) Name() string { return "vendor_name" }

func (e VendorExtractor) Extract(lines []ocr.Line) Fields {
	if v, ok := e.Vendor(lines); ok {
		return Fields{VendorName: &v}
	}
	return Fields{}
}

// Vendor returns the first configured vendor mentioned anywhere in the
// document, else the first short header line that does not look structural.
func (e VendorExtractor) Vendor(lines []ocr.Line) (string, bool) {
	for _, l := range lines {
		upper := strings.ToUpper(l.Text)
		for _, k := range e.known {
			if strings.Contains(upper, strings.ToUpper(k)) {
				return k, true
			}
		}
	}

	for i, l := range lines {
		if i >= vendorHeaderLines {
			break
		}
		text := strings.TrimSpace(l.Text)
		if len([]rune(text)) < 3 {
			continue
		}
		if isStructural(strings.ToUpper(text)) {
			continue
		}
		return text, true
	}
	return "", false
}

func isStructural(upper string) bool {
	for _, k := range structuralKeywords {
		if strings.Contains(upper, k) {
			return true
		}
	}
	return false
}

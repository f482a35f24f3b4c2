// Package confidence rates how much of an extraction can be trusted.
package confidence

import (
	"math"
	"time"

	"github.com/joseph-ayodele/invoice-extract/internal/extract"
	"github.com/joseph-ayodele/invoice-extract/internal/validate"
)

const (
	fieldWeight  = 0.15
	formatWeight = 0.20
	mathWeight   = 0.20
)

// Score combines field coverage, format sanity and the arithmetic check into
// a value in [0, 1] rounded to two decimals:
//
//   - 0.15 for each of vendor_name, invoice_date, total and invoice_number;
//   - 0.20 scaled by the share of present invoice_date / total values that
//     are well formed (an ISO date, a non-negative amount);
//   - 0.20 when subtotal and total were both found and no math mismatch
//     was reported.
//
// Without a subtotal and a total the math earns nothing.
func Score(f extract.Fields, v validate.Result) float64 {
	var score float64

	for _, ok := range []bool{present(f.VendorName), present(f.InvoiceDate), f.Total != nil, present(f.InvoiceNumber)} {
		if ok {
			score += fieldWeight
		}
	}

	var applicable, passed int
	if present(f.InvoiceDate) {
		applicable++
		if _, err := time.Parse("2006-01-02", *f.InvoiceDate); err == nil {
			passed++
		}
	}
	if f.Total != nil {
		applicable++
		if !f.Total.IsNegative() {
			passed++
		}
	}
	if applicable > 0 {
		score += formatWeight * float64(passed) / float64(applicable)
	}

	if f.Subtotal != nil && f.Total != nil && !v.HasMathMismatch() {
		score += mathWeight
	}

	return round2(math.Max(0, math.Min(1, score)))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func present(s *string) bool {
	return s != nil && *s != ""
}

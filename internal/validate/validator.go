package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extract/internal/extract"
)

// DefaultMathTolerance is the largest accepted gap between subtotal + tax and total.
var DefaultMathTolerance = decimal.RequireFromString("0.05")

// MathMismatchPrefix starts the error reported when the totals do not add up.
const MathMismatchPrefix = "Math mismatch"

// Result is the outcome of one validation pass. Errors are ordered and distinct.
type Result struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// HasMathMismatch reports whether the arithmetic check ran and failed.
func (r Result) HasMathMismatch() bool {
	for _, e := range r.Errors {
		if strings.HasPrefix(e, MathMismatchPrefix) {
			return true
		}
	}
	return false
}

// Validator checks extracted fields for completeness and internal consistency.
type Validator struct {
	tolerance decimal.Decimal
}

func New(tolerance decimal.Decimal) *Validator {
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	return &Validator{tolerance: tolerance}
}

// Validate never fails; problems are returned as data.
func (v *Validator) Validate(f extract.Fields) Result {
	var errs []string
	add := func(msg string) {
		for _, e := range errs {
			if e == msg {
				return
			}
		}
		errs = append(errs, msg)
	}

	if !present(f.InvoiceNumber) {
		add("Missing invoice number")
	}
	if !present(f.VendorName) {
		add("Missing required field: vendor_name")
	}
	if !present(f.InvoiceDate) {
		add("Missing required field: invoice_date")
	}
	if f.Total == nil {
		add("Missing required field: total")
	}

	if f.Subtotal != nil && f.Tax != nil && f.Total != nil {
		sum := f.Subtotal.Add(*f.Tax)
		if sum.Sub(*f.Total).Abs().GreaterThan(v.tolerance) {
			add(fmt.Sprintf("%s: Subtotal (%s) + Tax (%s) != Total (%s)", MathMismatchPrefix,
				extract.FormatAmount(*f.Subtotal), extract.FormatAmount(*f.Tax), extract.FormatAmount(*f.Total)))
		}
	}

	if !present(f.Currency) {
		add("Missing currency")
	}

	if errs == nil {
		errs = []string{}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

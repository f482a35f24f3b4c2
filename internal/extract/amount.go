package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var reAmountToken = regexp.MustCompile(`\d[\d,.]*`)

// LastAmount parses the right-most numeric token of s.
func LastAmount(s string) (decimal.Decimal, bool) {
	tokens := reAmountToken.FindAllString(s, -1)
	if len(tokens) == 0 {
		return decimal.Decimal{}, false
	}
	return ParseAmount(tokens[len(tokens)-1])
}

// ParseAmount reads a printed amount such as "1,234.50". Thousands commas are
// dropped and trailing punctuation ignored. Negative or malformed values are
// rejected.
func ParseAmount(tok string) (decimal.Decimal, bool) {
	tok = strings.TrimSpace(tok)
	tok = strings.TrimRight(tok, ".,")
	tok = strings.ReplaceAll(tok, ",", "")
	if tok == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(tok)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// FormatAmount renders at least two decimal places without rounding away
// precision the document carried.
func FormatAmount(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.StringFixed(-d.Exponent())
	}
	return d.StringFixed(2)
}

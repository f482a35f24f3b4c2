package extract

import (
	"regexp"

	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

// minHeaderFamilies is how many column families a header line must name.
const minHeaderFamilies = 3

var headerFamilies = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:description|item|product|particulars)\b`),
	regexp.MustCompile(`(?i)\b(?:qty|quantity|count)\b`),
	regexp.MustCompile(`(?i)\b(?:price|unit\s+price|rate)\b`),
	regexp.MustCompile(`(?i)\b(?:amount|total)\b`),
}

// LineItemExtractor emits item rows only when column positions are known.
// Reconstructed lines carry no per-word geometry, so rows below a detected
// header cannot be split into columns reliably and the result is always an
// empty collection, never a partial row.
type LineItemExtractor struct{}

func (LineItemExtractor) Name() string { return "line_items" }

func (LineItemExtractor) Extract([]ocr.Line) Fields {
	return Fields{LineItems: []LineItem{}}
}

// HeaderLine reports the index of the first item-table header.
func HeaderLine(lines []ocr.Line) (int, bool) {
	for i, l := range lines {
		n := 0
		for _, re := range headerFamilies {
			if re.MatchString(l.Text) {
				n++
			}
		}
		if n >= minHeaderFamilies {
			return i, true
		}
	}
	return -1, false
}

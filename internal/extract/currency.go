package extract

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

type CurrencyExtractor struct {
	markers  []constants.CurrencyMarker
	fallback string
}

func NewCurrencyExtractor(markers []constants.CurrencyMarker, fallback string) CurrencyExtractor {
	if len(markers) == 0 {
		markers = constants.DefaultCurrencyMarkers
	}
	if fallback == "" {
		fallback = constants.DefaultCurrency
	}
	return CurrencyExtractor{markers: markers, fallback: fallback}
}

func (CurrencyExtractor) Name() string { return "currency" }

func (e CurrencyExtractor) Extract(lines []ocr.Line) Fields {
	v := e.Currency(lines)
	return Fields{Currency: &v}
}

// Currency returns the code of the earliest marker on the first line that has
// one. Letter markers such as "USD" must stand alone, so "AUDIT" is not AUD.
// Documents without any marker report the fallback currency.
func (e CurrencyExtractor) Currency(lines []ocr.Line) string {
	for _, l := range lines {
		bestPos, bestLen, code := -1, 0, ""
		for _, m := range e.markers {
			pos := markerIndex(l.Text, m.Symbol)
			if pos < 0 {
				continue
			}
			if bestPos < 0 || pos < bestPos || (pos == bestPos && len(m.Symbol) > bestLen) {
				bestPos, bestLen, code = pos, len(m.Symbol), m.Code
			}
		}
		if bestPos >= 0 {
			return code
		}
	}
	return e.fallback
}

func markerIndex(s, marker string) int {
	if marker == "" {
		return -1
	}
	if !isASCIIWord(marker) {
		return strings.Index(s, marker)
	}
	for off := 0; off < len(s); {
		i := strings.Index(s[off:], marker)
		if i < 0 {
			return -1
		}
		start := off + i
		end := start + len(marker)
		if (start == 0 || !isASCIILetter(s[start-1])) && (end == len(s) || !isASCIILetter(s[end])) {
			return start
		}
		off = start + 1
	}
	return -1
}

func isASCIIWord(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isASCIILetter(s[i]) {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

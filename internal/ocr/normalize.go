package ocr

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var reMultiSpace = regexp.MustCompile(`\s+`)

// NormalizeText folds compatibility characters (NBSP becomes a plain space),
// drops invisible format runes such as zero-width spaces, collapses whitespace
// runs to one space and trims the result.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

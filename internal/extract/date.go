package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

const isoDate = "2006-01-02"

var (
	reDateLabel = regexp.MustCompile(`(?i)date`)

	reNumericDate   = regexp.MustCompile(`(?i)date[.:\s]*([0-9]{1,4}[/\-.][0-9]{1,2}[/\-.][0-9]{1,4})`)
	reDayMonthYear  = regexp.MustCompile(`([0-9]{1,2})\s+([A-Za-z]{3,})\s+([0-9]{4})`)
	reMonthDayYear  = regexp.MustCompile(`([A-Za-z]{3,})\s+([0-9]{1,2}),?\s+([0-9]{4})`)
	reDateSeparator = regexp.MustCompile(`[/\-.]`)
)

type DateExtractor struct{}

func (DateExtractor) Name() string { return "invoice_date" }

func (e DateExtractor) Extract(lines []ocr.Line) Fields {
	if v, ok := e.InvoiceDate(lines); ok {
		return Fields{InvoiceDate: &v}
	}
	return Fields{}
}

// InvoiceDate scans date-labelled lines and returns the first candidate that
// is a real calendar date, as YYYY-MM-DD. Unlabelled dates are ignored.
func (DateExtractor) InvoiceDate(lines []ocr.Line) (string, bool) {
	for _, l := range lines {
		if !reDateLabel.MatchString(l.Text) {
			continue
		}
		if m := reNumericDate.FindStringSubmatch(l.Text); m != nil {
			if t, ok := parseNumericDate(m[1]); ok {
				return t.Format(isoDate), true
			}
		}
		if m := reDayMonthYear.FindStringSubmatch(l.Text); m != nil {
			if t, ok := civilDate(m[3], m[2], m[1]); ok {
				return t.Format(isoDate), true
			}
		}
		if m := reMonthDayYear.FindStringSubmatch(l.Text); m != nil {
			if t, ok := civilDate(m[3], m[1], m[2]); ok {
				return t.Format(isoDate), true
			}
		}
	}
	return "", false
}

// parseNumericDate reads Y-M-D when the first part has four digits, and
// otherwise M/D/Y unless the first part can only be a day.
func parseNumericDate(s string) (time.Time, bool) {
	parts := reDateSeparator.Split(s, -1)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	a, c := parts[0], parts[2]
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	var y, m, d int
	switch {
	case len(a) == 4:
		y, m, d = nums[0], nums[1], nums[2]
	case len(a) <= 2 && (len(c) == 4 || len(c) == 2):
		y = nums[2]
		if len(c) == 2 {
			y += 2000
		}
		m, d = nums[0], nums[1]
		if nums[0] > 12 && nums[1] <= 12 {
			m, d = nums[1], nums[0]
		}
	default:
		return time.Time{}, false
	}
	return validDate(y, time.Month(m), d)
}

func civilDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	m, ok := monthFromName(month)
	if !ok {
		return time.Time{}, false
	}
	return validDate(y, m, d)
}

// monthFromName accepts full names and prefixes of at least three letters.
func monthFromName(s string) (time.Month, bool) {
	s = strings.ToLower(s)
	if len(s) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), s) {
			return m, true
		}
	}
	return 0, false
}

func validDate(y int, m time.Month, d int) (time.Time, bool) {
	if y < 1 || y > 9999 || m < time.January || m > time.December || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

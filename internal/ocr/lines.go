package ocr

import (
	"math"
	"sort"
	"strings"
)

// DefaultYTolerance is the maximum top-edge distance, in pixels, for two
// fragments to be read as the same line.
const DefaultYTolerance = 10.0

// Line is one reconstructed reading-order line of a page.
type Line struct {
	Text string `json:"text"`
	Page int    `json:"page"`
}

// Reconstruct merges fragments into lines. Fragments are ordered by page, top
// edge and left edge; consecutive fragments whose top edge lies within
// yTolerance of the first fragment of the current line join that line, in
// left-to-right order. Lines never span pages. Blank or unusable fragments
// are dropped, so malformed input yields an empty result rather than an error.
func Reconstruct(frags []Fragment, yTolerance float64) []Line {
	if !(yTolerance >= 0) {
		yTolerance = 0
	}

	items := make([]placed, 0, len(frags))
	for _, f := range frags {
		p, ok := reduce(f)
		if !ok {
			continue
		}
		p.text = NormalizeText(p.text)
		if p.text == "" {
			continue
		}
		items = append(items, p)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.page != b.page {
			return a.page < b.page
		}
		if a.topY != b.topY {
			return a.topY < b.topY
		}
		return a.leftX < b.leftX
	})

	lines := make([]Line, 0)
	var group []placed
	flush := func() {
		if len(group) == 0 {
			return
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].leftX < group[j].leftX })
		texts := make([]string, len(group))
		for i, g := range group {
			texts[i] = g.text
		}
		lines = append(lines, Line{Text: strings.Join(texts, " "), Page: group[0].page})
		group = group[:0]
	}

	for _, it := range items {
		if len(group) > 0 {
			ref := group[0]
			if it.page != ref.page || math.Abs(it.topY-ref.topY) > yTolerance {
				flush()
			}
		}
		group = append(group, it)
	}
	flush()

	return lines
}

// Texts returns the text of each line, in order.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

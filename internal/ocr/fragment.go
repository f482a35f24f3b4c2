package ocr

import "math"

// Point is one corner of a fragment's bounding box in page pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Fragment is one recognized text region as emitted by an OCR engine.
// Box holds the four corners in order, starting at the top-left.
type Fragment struct {
	Text       string   `json:"text"`
	Box        [4]Point `json:"bounding_box"`
	Confidence float64  `json:"confidence"`
	Page       int      `json:"page"`
}

// placed is a fragment reduced to the two coordinates line grouping needs.
type placed struct {
	text  string
	page  int
	topY  float64
	leftX float64
}

// reduce keeps the top edge and left edge of the box. Fragments with
// non-finite coordinates are unusable and reported as !ok.
func reduce(f Fragment) (placed, bool) {
	y, x := f.Box[0].Y, f.Box[0].X
	if !finite(y) || !finite(x) {
		return placed{}, false
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	return placed{text: f.Text, page: page, topY: y, leftX: x}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MeanConfidence averages engine confidence over the fragments, 0 when empty.
func MeanConfidence(frags []Fragment) float64 {
	if len(frags) == 0 {
		return 0
	}
	var sum float64
	for _, f := range frags {
		sum += f.Confidence
	}
	return sum / float64(len(frags))
}

package ocr

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func frag(text string, x, y float64, page int) Fragment {
	return Fragment{
		Text: text,
		Box: [4]Point{
			{X: x, Y: y},
			{X: x + 50, Y: y},
			{X: x + 50, Y: y + 12},
			{X: x, Y: y + 12},
		},
		Confidence: 0.9,
		Page:       page,
	}
}

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name  string
		frags []Fragment
		tol   float64
		want  []Line
	}{
		{
			name: "empty input",
			want: []Line{},
		},
		{
			name: "same row joins left to right",
			frags: []Fragment{
				frag("$110.00", 300, 102, 1),
				frag("Total:", 10, 100, 1),
			},
			tol:  10,
			want: []Line{{Text: "Total: $110.00", Page: 1}},
		},
		{
			name: "lower fragment with smaller x still ordered by x",
			frags: []Fragment{
				frag("B", 200, 100, 1),
				frag("A", 10, 105, 1),
			},
			tol:  10,
			want: []Line{{Text: "A B", Page: 1}},
		},
		{
			name: "beyond tolerance splits",
			frags: []Fragment{
				frag("first", 10, 100, 1),
				frag("second", 10, 111, 1),
			},
			tol: 10,
			want: []Line{
				{Text: "first", Page: 1},
				{Text: "second", Page: 1},
			},
		},
		{
			name: "exact tolerance joins",
			frags: []Fragment{
				frag("a", 10, 100, 1),
				frag("b", 60, 110, 1),
			},
			tol:  10,
			want: []Line{{Text: "a b", Page: 1}},
		},
		{
			name: "pages never merge",
			frags: []Fragment{
				frag("page two", 10, 100, 2),
				frag("page one", 10, 100, 1),
			},
			tol: 10,
			want: []Line{
				{Text: "page one", Page: 1},
				{Text: "page two", Page: 2},
			},
		},
		{
			name: "blank and invisible fragments dropped",
			frags: []Fragment{
				frag("   ", 10, 10, 1),
				frag("\u200b", 20, 10, 1),
				frag("Invoice  No:\tINV-1", 30, 10, 1),
			},
			tol:  10,
			want: []Line{{Text: "Invoice No: INV-1", Page: 1}},
		},
		{
			name: "unusable geometry dropped",
			frags: []Fragment{
				frag("nan", math.NaN(), 10, 1),
				frag("inf", 10, math.Inf(1), 1),
			},
			tol:  10,
			want: []Line{},
		},
		{
			name:  "missing page treated as first page",
			frags: []Fragment{frag("x", 0, 0, 0)},
			tol:   10,
			want:  []Line{{Text: "x", Page: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconstruct(tt.frags, tt.tol)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Reconstruct() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconstructDeterministic(t *testing.T) {
	frags := []Fragment{
		frag("ACME CORP", 10, 10, 1),
		frag("INVOICE", 200, 10, 1),
		frag("Invoice No: INV-2023-001", 10, 50, 1),
		frag("Date: 2023-10-25", 10, 80, 1),
		frag("Total:", 10, 300, 1),
		frag("$110.00", 200, 300, 1),
	}
	first := Reconstruct(frags, DefaultYTolerance)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, Reconstruct(frags, DefaultYTolerance)); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"  a   b  ":          "a b",
		"Total\u00a0Due":     "Total Due",
		"zero\u200bwidth":    "zerowidth",
		"line\r\nbreak\ttab": "line break tab",
		"\ufeffBOM":          "BOM",
		"\ufb01nal":          "final",
	}
	for in, want := range cases {
		if got := NormalizeText(in); got != want {
			t.Errorf("NormalizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMeanConfidence(t *testing.T) {
	if got := MeanConfidence(nil); got != 0 {
		t.Errorf("MeanConfidence(nil) = %v, want 0", got)
	}
	frags := []Fragment{{Confidence: 0.5}, {Confidence: 1}}
	if got := MeanConfidence(frags); got != 0.75 {
		t.Errorf("MeanConfidence() = %v, want 0.75", got)
	}
}

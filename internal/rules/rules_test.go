package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extract/constants"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestParse(t *testing.T) {
	doc := []byte(`
known_vendors:
  - ACME Corp
  - Globex
currencies:
  - {symbol: "₹", code: INR}
  - {symbol: "$", code: USD}
default_currency: EUR
y_tolerance: 6
math_tolerance: 0.01
`)
	got, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Rules{
		KnownVendors: []string{"ACME Corp", "Globex"},
		Currencies: []constants.CurrencyMarker{
			{Symbol: "₹", Code: "INR"},
			{Symbol: "$", Code: "USD"},
		},
		DefaultCurrency: "EUR",
		YTolerance:      6,
		MathTolerance:   decimal.RequireFromString("0.01"),
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	got, err := Parse([]byte("known_vendors: [Initech]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Default()
	want.KnownVendors = []string{"Initech"}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	bad := map[string]string{
		"unknown key":        "vendors: [x]\n",
		"lowercase code":     "default_currency: usd\n",
		"negative tolerance": "y_tolerance: -1\n",
		"currency no code":   "currencies: [{symbol: X}]\n",
		"not yaml":           "known_vendors: [\n",
	}
	for name, doc := range bad {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", doc)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		got, err := Load("", nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(Default(), got, decimalEqual); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		got, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.DefaultCurrency != constants.DefaultCurrency {
			t.Errorf("DefaultCurrency = %q", got.DefaultCurrency)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		if err := os.WriteFile(path, []byte("known_vendors: [Umbrella]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := Load(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"Umbrella"}, got.ExtractConfig().KnownVendors); diff != "" {
			t.Errorf("KnownVendors mismatch (-want +got):\n%s", diff)
		}
	})
}

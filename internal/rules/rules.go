// Package rules loads the extraction rule set: known vendors, the currency
// table and the geometric and arithmetic tolerances. Rules are read once at
// startup and never mutated afterwards.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/extract"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
	"github.com/joseph-ayodele/invoice-extract/internal/schema"
	"github.com/joseph-ayodele/invoice-extract/internal/validate"
)

type Rules struct {
	KnownVendors    []string
	Currencies      []constants.CurrencyMarker
	DefaultCurrency string
	YTolerance      float64
	MathTolerance   decimal.Decimal
}

// fileRules mirrors the YAML document; nil members keep their defaults.
type fileRules struct {
	KnownVendors    []string                   `yaml:"known_vendors"`
	Currencies      []constants.CurrencyMarker `yaml:"currencies"`
	DefaultCurrency *string                    `yaml:"default_currency"`
	YTolerance      *float64                   `yaml:"y_tolerance"`
	MathTolerance   *float64                   `yaml:"math_tolerance"`
}

// Default returns the built-in rule set.
func Default() Rules {
	return Rules{
		Currencies:      append([]constants.CurrencyMarker(nil), constants.DefaultCurrencyMarkers...),
		DefaultCurrency: constants.DefaultCurrency,
		YTolerance:      ocr.DefaultYTolerance,
		MathTolerance:   validate.DefaultMathTolerance,
	}
}

// Load reads a YAML rules file. An empty path or a missing file yields the
// built-in defaults.
func Load(path string, logger *slog.Logger) (Rules, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("rules file not found, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return Rules{}, fmt.Errorf("rules %s: %w", path, err)
	}
	logger.Info("rules loaded",
		"path", path,
		"known_vendors", len(r.KnownVendors),
		"currencies", len(r.Currencies),
		"y_tolerance", r.YTolerance,
		"math_tolerance", r.MathTolerance.String(),
	)
	return r, nil
}

// Parse validates a YAML rules document against the rules schema and
// overlays it on the defaults.
func Parse(data []byte) (Rules, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Rules{}, fmt.Errorf("parse yaml: %w", err)
	}
	if raw == nil {
		return Default(), nil
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return Rules{}, fmt.Errorf("convert yaml: %w", err)
	}
	if err := schema.ValidateJSONAgainstSchema(schema.RulesSchema(), asJSON); err != nil {
		return Rules{}, err
	}

	var fr fileRules
	if err := yaml.Unmarshal(data, &fr); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}

	r := Default()
	if fr.KnownVendors != nil {
		r.KnownVendors = fr.KnownVendors
	}
	if fr.Currencies != nil {
		r.Currencies = fr.Currencies
	}
	if fr.DefaultCurrency != nil {
		r.DefaultCurrency = *fr.DefaultCurrency
	}
	if fr.YTolerance != nil {
		r.YTolerance = *fr.YTolerance
	}
	if fr.MathTolerance != nil {
		r.MathTolerance = decimal.NewFromFloat(*fr.MathTolerance)
	}
	return r, nil
}

// ExtractConfig is the subset the field extractors consume.
func (r Rules) ExtractConfig() extract.Config {
	return extract.Config{
		KnownVendors:    append([]string(nil), r.KnownVendors...),
		Currencies:      append([]constants.CurrencyMarker(nil), r.Currencies...),
		DefaultCurrency: r.DefaultCurrency,
	}
}

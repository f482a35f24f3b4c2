package constants

// DefaultCurrency is reported when no currency marker is found on the document.
const DefaultCurrency = "USD"

// CurrencyMarker maps a printed symbol or code to its ISO 4217 code.
type CurrencyMarker struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Code   string `yaml:"code" json:"code"`
}

// DefaultCurrencyMarkers is the built-in lookup table, in matching priority.
var DefaultCurrencyMarkers = []CurrencyMarker{
	{Symbol: "$", Code: "USD"},
	{Symbol: "€", Code: "EUR"},
	{Symbol: "£", Code: "GBP"},
	{Symbol: "¥", Code: "JPY"},
	{Symbol: "USD", Code: "USD"},
	{Symbol: "EUR", Code: "EUR"},
	{Symbol: "GBP", Code: "GBP"},
	{Symbol: "CAD", Code: "CAD"},
	{Symbol: "AUD", Code: "AUD"},
}

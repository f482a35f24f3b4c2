package schema

// ResultSchema describes one extraction result as served over HTTP and gRPC.
// Absent fields are null; amounts are decimal strings.
func ResultSchema() map[string]any {
	props := map[string]any{
		"vendor_name":    nullable(map[string]any{"type": "string", "minLength": 1}),
		"invoice_number": nullable(map[string]any{"type": "string", "minLength": 1}),
		"invoice_date":   nullable(map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}),
		"currency":       nullable(map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`}),
		"subtotal":       nullable(decimalProp()),
		"tax":            nullable(decimalProp()),
		"total":          nullable(decimalProp()),
		"line_items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"description": map[string]any{"type": "string", "minLength": 1},
					"quantity":    nullable(decimalProp()),
					"unit_price":  nullable(decimalProp()),
					"amount":      nullable(decimalProp()),
				},
				"required": []string{"description"},
			},
		},
		"validation": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"is_valid": map[string]any{"type": "boolean"},
				"errors": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"uniqueItems": true,
				},
			},
			"required": []string{"is_valid", "errors"},
		},
		"confidence_score": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required": []string{
			"vendor_name", "invoice_number", "invoice_date", "currency",
			"subtotal", "tax", "total", "line_items", "validation", "confidence_score",
		},
	}
}

// RulesSchema describes the extraction rules file.
func RulesSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"known_vendors": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
			"currencies": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"symbol": map[string]any{"type": "string", "minLength": 1},
						"code":   map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
					},
					"required": []string{"symbol", "code"},
				},
			},
			"default_currency": map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
			"y_tolerance":      map[string]any{"type": "number", "minimum": 0},
			"math_tolerance":   map[string]any{"type": "number", "minimum": 0},
		},
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d+)?$`,
	}
}

func nullable(m map[string]any) map[string]any {
	return map[string]any{"oneOf": []any{map[string]any{"type": "null"}, m}}
}

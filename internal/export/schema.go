package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// BuildDocumentsJSONSchema returns the JSON Schema of an exported document list as a generic map.
// Identifiers are optional (empty when not found) but must have their invoice shape when present.
func BuildDocumentsJSONSchema() map[string]any {
	lineItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"description":   map[string]any{"type": "string"},
			"hsn":           map[string]any{"type": "string", "pattern": `^\d{6}$`},
			"qty":           map[string]any{"type": "string", "pattern": `^(\d+|NA)$`},
			"gross_amount":  moneyProp(),
			"discount":      moneyProp(),
			"taxable_value": moneyProp(),
			"tax_clause":    map[string]any{"type": "string"},
			"total":         moneyProp(),
		},
		"required": []string{"description", "hsn", "qty", "gross_amount", "discount", "taxable_value", "tax_clause", "total"},
	}

	invoice := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"sku":               optionalPattern(`\w{8}`),
			"size":              map[string]any{"type": "string"},
			"qty":               map[string]any{"type": "integer", "minimum": 0},
			"color":             map[string]any{"type": "string"},
			"order_no":          optionalPattern(`\d{15,}_\d+`),
			"ship_to":           map[string]any{"type": "string"},
			"seller_name":       map[string]any{"type": "string"},
			"seller_gstin":      optionalPattern(`[A-Za-z0-9]{15}`),
			"purchase_order_no": optionalPattern(`\d+`),
			"invoice_no":        optionalPattern(`[A-Za-z0-9]{10}`),
			"order_date":        map[string]any{"type": "string"},
			"invoice_date":      map[string]any{"type": "string"},
			"line_items":        map[string]any{"type": "array", "items": lineItem},
			"total_tax":         moneyProp(),
			"grand_total":       moneyProp(),
		},
		"required": []string{"sku", "order_no", "invoice_no", "line_items", "total_tax", "grand_total"},
	}

	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source":       map[string]any{"type": "string"},
			"page":         map[string]any{"type": "integer", "minimum": 1},
			"status":       map[string]any{"type": "string", "enum": []string{"OK", "PARTIAL", "EMPTY", "FAILED"}},
			"needs_review": map[string]any{"type": "boolean"},
			"issues":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"error":        map[string]any{"type": "string"},
			"invoice":      invoice,
			"taxes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"line":   map[string]any{"type": "integer", "minimum": 1},
						"kind":   map[string]any{"type": "string", "enum": []string{"IGST", "CGST", "SGST"}},
						"rate":   moneyProp(),
						"amount": moneyProp(),
					},
					"required": []string{"line", "kind", "rate", "amount"},
				},
			},
		},
		"required": []string{"page", "status", "invoice"},
	}

	return map[string]any{
		"type":  "array",
		"items": doc,
	}
}

func moneyProp() map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d+\.\d{2}$`}
}

func optionalPattern(p string) map[string]any {
	return map[string]any{"type": "string", "pattern": `^(` + p + `)?$`}
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildDocumentsJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("documents.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("documents.json")
})

// ValidateJSON checks encoded documents against the export schema.
func ValidateJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("%w: compile schema: %w", common.ErrInternal, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: unmarshal data: %w", common.ErrValidation, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: json does not match schema: %w", common.ErrValidation, err)
	}
	return nil
}

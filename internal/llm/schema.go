package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildSegmentJSONSchema returns the JSON-Schema (draft 2020-12 subset) for
// a page segmentation response, as a generic map. It is passed to the model
// as a structured-output constraint and also used locally to validate.
func BuildSegmentJSONSchema() map[string]any {
	nullableInt := map[string]any{"type": []string{"integer", "null"}}

	question := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questionNumber": nullableInt,
			"questionText":   map[string]any{"type": "string"},
			"answer":         map[string]any{"type": "string"},
			"marks":          nullableInt,
			"type":           map[string]any{"type": []string{"string", "null"}},
			"year":           nullableInt,
			"confidence":     map[string]any{"type": []string{"number", "null"}, "minimum": 0.0, "maximum": 1.0},
		},
		"required": []string{"questionText"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": question,
			},
		},
		"required": []string{"questions"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

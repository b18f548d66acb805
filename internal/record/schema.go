package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vparedes/boletas-ocr/internal/entity"
)

// BuildRecordJSONSchema returns the JSON-Schema (draft 2020-12 subset) a
// serialized DocumentRecord must satisfy before it is persisted or exported.
func BuildRecordJSONSchema() map[string]any {
	fieldProps := map[string]any{
		"id":         map[string]any{"type": "string", "minLength": 1},
		"raw":        map[string]any{"type": "string"},
		"norm":       map[string]any{"type": "string"},
		"int":        map[string]any{"type": "integer", "minimum": 0},
		"date":       map[string]any{"type": "string"},
		"valid":      map[string]any{"type": "boolean", "const": true},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}
	validatedField := map[string]any{
		"type":       "object",
		"properties": fieldProps,
		"required":   []string{"id", "raw", "norm", "valid", "confidence"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "minLength": 36, "maxLength": 36},
			"source_path": map[string]any{"type": "string"},
			"fields": map[string]any{
				"type":                 "object",
				"additionalProperties": validatedField,
			},
			"ruts": map[string]any{
				"type":  "array",
				"items": validatedField,
			},
			"confidence":     map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"missing_fields": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"needs_review":   map[string]any{"type": "boolean"},
			"ocr_failed":     map[string]any{"type": "boolean"},
			"created_at":     map[string]any{"type": "string"},
		},
		"required": []string{"id", "source_path", "fields", "confidence", "missing_fields", "created_at"},
	}
}

// MarshalValidated serializes the record and validates the result against
// the schema, so no malformed record ever reaches the export layer.
func MarshalValidated(rec entity.DocumentRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if err := validateAgainstSchema(BuildRecordJSONSchema(), data); err != nil {
		return nil, err
	}
	return data, nil
}

func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}

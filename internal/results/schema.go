package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RecordJSONSchema returns the JSON-Schema of one results file line.
func RecordJSONSchema() map[string]any {
	numbers := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "number"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"model":    map[string]any{"type": "string", "minLength": 1},
			"ppls":     numbers,
			"times":    numbers,
			"ave_ppl":  map[string]any{"type": "number"},
			"ave_time": map[string]any{"type": "number", "minimum": 0},
		},
		"required": []string{"model", "ppls", "times", "ave_ppl", "ave_time"},
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func recordSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = compileSchema(RecordJSONSchema())
	})
	return compiled, compileErr
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateLine checks one results line against the record schema.
func ValidateLine(data []byte) error {
	schema, err := recordSchema()
	if err != nil {
		return err
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

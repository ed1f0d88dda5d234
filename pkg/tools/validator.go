package tools

import (
	"encoding/json"
	"fmt"
	"math"
)

// Validate checks required fields and primitive types against the schema.
// Rejection happens before any handler side effect.
func Validate(args map[string]any, schema Schema) error {
	if schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	for _, field := range requiredFields(schema) {
		if _, exists := args[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}

	for key, value := range args {
		propDef, ok := properties[key]
		if !ok {
			continue
		}
		expected := expectedType(propDef)
		if expected == "" {
			continue
		}
		if err := validateType(value, expected); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}

	return nil
}

// ApplyDefaults fills absent optional fields from the schema's "default"
// values, returning a new map. The input map is not modified.
func ApplyDefaults(args map[string]any, schema Schema) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return out
	}
	for key, propDef := range properties {
		def, ok := propDef.(map[string]any)
		if !ok {
			continue
		}
		defaultVal, has := def["default"]
		if !has {
			continue
		}
		if _, present := out[key]; !present {
			out[key] = defaultVal
		}
	}
	return out
}

// requiredFields tolerates both []string (schemas built in code) and []any
// (schemas round-tripped through JSON).
func requiredFields(schema Schema) []string {
	switch required := schema["required"].(type) {
	case []string:
		return required
	case []any:
		out := make([]string, 0, len(required))
		for _, v := range required {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func expectedType(definition any) string {
	if def, ok := definition.(map[string]any); ok {
		if value, ok := def["type"].(string); ok {
			return value
		}
	}
	return ""
}

func validateType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if isNumber(value) {
			return nil
		}
	case "integer":
		if isInteger(value) {
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64, int, int32, int64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		return math.Trunc(v) == v
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}

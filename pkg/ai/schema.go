package ai

import (
	"fmt"
	"math"
	"slices"
)

// Type is a JSON schema value type.
type Type string

const (
	TypeObject  Type = "object"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
)

// Schema is the subset of JSON schema the gateway enforces on structured responses.
// Properties listed in Required must be present; additional properties are ignored.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
}

// Object builds an object schema where every listed property is required.
func Object(props map[string]*Schema) *Schema {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	slices.Sort(required)

	return &Schema{
		Type:       TypeObject,
		Properties: props,
		Required:   required,
	}
}

// String builds a string schema.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// IntegerRange builds an integer schema bounded to [lo, hi].
func IntegerRange(lo, hi float64, description string) *Schema {
	return &Schema{
		Type:        TypeInteger,
		Description: description,
		Minimum:     &lo,
		Maximum:     &hi,
	}
}

// Validate checks a decoded JSON value (as produced by json.Unmarshal into any)
// against the schema.
func (s *Schema) Validate(v any) error {
	return s.validate(v, "$")
}

func (s *Schema) validate(v any, path string) error {
	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object", path)
		}
		for _, key := range s.Required {
			if _, ok := obj[key]; !ok {
				return fmt.Errorf("%s: missing required key %q", path, key)
			}
		}
		keys := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, key := range keys {
			val, ok := obj[key]
			if !ok {
				continue
			}
			if err := s.Properties[key].validate(val, path+"."+key); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array", path)
		}
		if s.Items != nil {
			for i, item := range arr {
				if err := s.Items.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%s: expected string", path)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: expected boolean", path)
		}
	case TypeInteger, TypeNumber:
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%s: expected %s", path, s.Type)
		}
		if s.Type == TypeInteger && n != math.Trunc(n) {
			return fmt.Errorf("%s: expected integer, got %v", path, n)
		}
		if s.Minimum != nil && n < *s.Minimum {
			return fmt.Errorf("%s: %v below minimum %v", path, n, *s.Minimum)
		}
		if s.Maximum != nil && n > *s.Maximum {
			return fmt.Errorf("%s: %v above maximum %v", path, n, *s.Maximum)
		}
	default:
		return fmt.Errorf("%s: unsupported schema type %q", path, s.Type)
	}
	return nil
}

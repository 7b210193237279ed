package schema

import (
	"fmt"
	"slices"
)

// Parse builds an ArgumentSchema from a JSON Schema object, as found in the
// "parameters" of a tool declaration. A nil map yields the empty schema.
//
//	{"type": "object",
//	 "properties": {"name": {"type": "string", "description": "..."}},
//	 "required": ["name"]}
func Parse(raw map[string]any) (ArgumentSchema, error) {
	if len(raw) == 0 {
		return ArgumentSchema{}, nil
	}
	if t, ok := raw["type"]; ok && t != "object" {
		return ArgumentSchema{}, fmt.Errorf("parameters must be of type object, got %v", t)
	}

	out := ArgumentSchema{Properties: map[string]Property{}}

	if props, ok := raw["properties"]; ok && props != nil {
		pm, ok := props.(map[string]any)
		if !ok {
			return ArgumentSchema{}, fmt.Errorf("properties must be an object, got %T", props)
		}
		for name, def := range pm {
			dm, ok := def.(map[string]any)
			if !ok {
				return ArgumentSchema{}, fmt.Errorf("property %s: expected object, got %T", name, def)
			}
			typ, err := parseType(dm)
			if err != nil {
				return ArgumentSchema{}, fmt.Errorf("property %s: %w", name, err)
			}
			desc, _ := dm["description"].(string)
			out.Properties[name] = Property{Type: typ, Description: desc}
		}
	}

	required, err := stringList(raw["required"])
	if err != nil {
		return ArgumentSchema{}, fmt.Errorf("required: %w", err)
	}
	out.Required = required

	if err := out.Check(); err != nil {
		return ArgumentSchema{}, err
	}
	return out, nil
}

func parseType(def map[string]any) (Type, error) {
	name, _ := def["type"].(string)
	switch name {
	case "string":
		enum, err := stringList(def["enum"])
		if err != nil {
			return nil, fmt.Errorf("enum: %w", err)
		}
		return String(enum...), nil
	case "integer", "number":
		enum, err := numberList(def["enum"])
		if err != nil {
			return nil, fmt.Errorf("enum: %w", err)
		}
		if name == "integer" {
			return Integer(enum...), nil
		}
		return Number(enum...), nil
	case "boolean":
		return Boolean(), nil
	case "array":
		items, ok := def["items"].(map[string]any)
		if !ok {
			return Array(nil), nil
		}
		elem, err := parseType(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		return Array(elem), nil
	case "object":
		if _, ok := def["properties"]; !ok {
			return Object(nil), nil
		}
		nested, err := Parse(def)
		if err != nil {
			return nil, err
		}
		return Object(&nested), nil
	case "":
		return nil, fmt.Errorf("missing type")
	default:
		return nil, fmt.Errorf("unsupported type: %s", name)
	}
}

func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return slices.Clone(list), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", v)
	}
}

func numberList(v any) ([]float64, error) {
	var list []any
	switch l := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return slices.Clone(l), nil
	case []any:
		list = l
	default:
		return nil, fmt.Errorf("expected list of numbers, got %T", v)
	}
	out := make([]float64, 0, len(list))
	for i, item := range list {
		f, ok := numeric(item)
		if !ok {
			return nil, fmt.Errorf("element %d: expected number, got %T", i, item)
		}
		out = append(out, f)
	}
	return out, nil
}

// JSONSchema renders the schema back into its JSON Schema object form.
// The empty schema renders as an object with no properties.
func (s ArgumentSchema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for _, name := range s.Names() {
		p := s.Properties[name]
		def := typeSchema(p.Type)
		if p.Description != "" {
			def["description"] = p.Description
		}
		props[name] = def
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(s.Required) > 0 {
		out["required"] = slices.Clone(s.Required)
	}
	return out
}

func typeSchema(t Type) map[string]any {
	switch v := t.(type) {
	case *StringType:
		def := map[string]any{"type": "string"}
		if enum := v.Enum(); len(enum) > 0 {
			def["enum"] = slices.Clone(enum)
		}
		return def
	case *IntegerType:
		return numberSchema("integer", v.Enum())
	case *NumberType:
		return numberSchema("number", v.Enum())
	case *ArrayType:
		def := map[string]any{"type": "array"}
		if elem := v.Elem(); elem != nil {
			def["items"] = typeSchema(elem)
		}
		return def
	case *ObjectType:
		nested := v.Schema()
		if nested == nil {
			return map[string]any{"type": "object"}
		}
		return nested.JSONSchema()
	case nil:
		return map[string]any{}
	default:
		return map[string]any{"type": t.Name()}
	}
}

func numberSchema(name string, enum []float64) map[string]any {
	def := map[string]any{"type": name}
	if len(enum) > 0 {
		def["enum"] = slices.Clone(enum)
	}
	return def
}

// Clone deep-copies a decoded JSON Schema object. Nested objects and lists
// are copied; scalars are shared. A nil map yields nil.
func Clone(def map[string]any) map[string]any {
	if def == nil {
		return nil
	}
	out := make(map[string]any, len(def))
	for k, v := range def {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Clone(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(val)
	default:
		return v
	}
}

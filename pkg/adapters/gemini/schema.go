package gemini

import (
	"google.golang.org/genai"

	"github.com/aretw0/hostflow/pkg/domain"
)

// Declarations converts a manifest into Gemini function declarations.
func Declarations(specs []domain.ToolSpec) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		decl := &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
		}
		if props, _ := spec.Parameters["properties"].(map[string]any); len(props) > 0 {
			decl.Parameters = Schema(spec.Parameters)
		}
		out = append(out, decl)
	}
	return out
}

// Schema converts a JSON Schema definition into a Gemini schema. Keywords
// genai.Schema has no field for are left out.
func Schema(def map[string]any) *genai.Schema {
	s := &genai.Schema{
		Type:      schemaType(def["type"]),
		Enum:      stringSlice(def["enum"]),
		Default:   def["default"],
		MinItems:  intKeyword(def["minItems"]),
		MaxItems:  intKeyword(def["maxItems"]),
		MinLength: intKeyword(def["minLength"]),
		MaxLength: intKeyword(def["maxLength"]),
		Minimum:   floatKeyword(def["minimum"]),
		Maximum:   floatKeyword(def["maximum"]),
	}
	s.Description, _ = def["description"].(string)
	s.Title, _ = def["title"].(string)
	s.Format, _ = def["format"].(string)
	s.Pattern, _ = def["pattern"].(string)

	switch s.Type {
	case genai.TypeArray:
		if items, ok := def["items"].(map[string]any); ok {
			s.Items = Schema(items)
		}
	case genai.TypeObject:
		if props, ok := def["properties"].(map[string]any); ok && len(props) > 0 {
			s.Properties = make(map[string]*genai.Schema, len(props))
			for name, raw := range props {
				if pd, ok := raw.(map[string]any); ok {
					s.Properties[name] = Schema(pd)
				}
			}
		}
		s.Required = stringSlice(def["required"])
	}
	return s
}

func schemaType(v any) genai.Type {
	switch v {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

func stringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func intKeyword(v any) *int64 {
	f := floatKeyword(v)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

func floatKeyword(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil
	}
	return &f
}

package eino

import (
	"encoding/json"

	"github.com/cloudwego/eino/schema"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/hostflow/pkg/domain"
)

// ToolInfos converts a manifest into Eino tool descriptions. The parameters
// object is handed over as an OpenAPI schema so every declared keyword
// reaches the model; schemas kin-openapi cannot decode fall back to the
// parameter tree Eino builds from properties.
func ToolInfos(specs []domain.ToolSpec) []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(specs))
	for _, spec := range specs {
		info := &schema.ToolInfo{
			Name: spec.Name,
			Desc: spec.Description,
		}
		if params := properties(spec.Parameters); len(params) > 0 {
			if def, err := openAPISchema(spec.Parameters); err == nil {
				info.ParamsOneOf = schema.NewParamsOneOfByOpenAPIV3(def)
			} else {
				info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
			}
		}
		out = append(out, info)
	}
	return out
}

func openAPISchema(def map[string]any) (*openapi3.Schema, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	var s openapi3.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// properties reads the properties of a JSON Schema object.
func properties(def map[string]any) map[string]*schema.ParameterInfo {
	props, _ := def["properties"].(map[string]any)
	if len(props) == 0 {
		return nil
	}
	required := make(map[string]bool)
	for _, name := range stringSlice(def["required"]) {
		required[name] = true
	}

	out := make(map[string]*schema.ParameterInfo, len(props))
	for name, raw := range props {
		pd, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		info := parameter(pd)
		info.Required = required[name]
		out[name] = info
	}
	return out
}

func parameter(def map[string]any) *schema.ParameterInfo {
	info := &schema.ParameterInfo{
		Type: dataType(def["type"]),
		Enum: stringSlice(def["enum"]),
	}
	info.Desc, _ = def["description"].(string)

	switch info.Type {
	case schema.Array:
		if items, ok := def["items"].(map[string]any); ok {
			info.ElemInfo = parameter(items)
		}
	case schema.Object:
		info.SubParams = properties(def)
	}
	return info
}

func dataType(v any) schema.DataType {
	switch v {
	case "string":
		return schema.String
	case "integer":
		return schema.Integer
	case "number":
		return schema.Number
	case "boolean":
		return schema.Boolean
	case "array":
		return schema.Array
	case "object":
		return schema.Object
	default:
		return schema.Null
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

package dsl

// ActionBuilder describes one action and its argument schema.
type ActionBuilder struct {
	name        string
	description string
	successor   string
	properties  map[string]any
	required    []string
}

// Action starts an action declaration.
func Action(name string) *ActionBuilder {
	return &ActionBuilder{name: name}
}

// Describe sets the description shown to the model.
func (a *ActionBuilder) Describe(text string) *ActionBuilder {
	a.description = text
	return a
}

// To sets the node entered after the action. Without it the action keeps
// the conversation on its node.
func (a *ActionBuilder) To(node string) *ActionBuilder {
	a.successor = node
	return a
}

// Param declares an argument with a raw JSON Schema fragment.
func (a *ActionBuilder) Param(name string, def map[string]any) *ActionBuilder {
	if a.properties == nil {
		a.properties = make(map[string]any)
	}
	a.properties[name] = def
	return a
}

// String declares a string argument, optionally limited to enum values.
func (a *ActionBuilder) String(name, description string, enum ...string) *ActionBuilder {
	def := map[string]any{"type": "string"}
	if description != "" {
		def["description"] = description
	}
	if len(enum) > 0 {
		values := make([]any, len(enum))
		for i, v := range enum {
			values[i] = v
		}
		def["enum"] = values
	}
	return a.Param(name, def)
}

// Integer declares an integer argument.
func (a *ActionBuilder) Integer(name, description string) *ActionBuilder {
	return a.Param(name, typed("integer", description))
}

// Boolean declares a boolean argument.
func (a *ActionBuilder) Boolean(name, description string) *ActionBuilder {
	return a.Param(name, typed("boolean", description))
}

// Strings declares an array-of-strings argument.
func (a *ActionBuilder) Strings(name, description string) *ActionBuilder {
	def := typed("array", description)
	def["items"] = map[string]any{"type": "string"}
	return a.Param(name, def)
}

// Require marks arguments as required.
func (a *ActionBuilder) Require(names ...string) *ActionBuilder {
	a.required = append(a.required, names...)
	return a
}

func typed(t, description string) map[string]any {
	def := map[string]any{"type": t}
	if description != "" {
		def["description"] = description
	}
	return def
}

// declaration renders the flat function shape accepted by flow files.
func (a *ActionBuilder) declaration() map[string]any {
	decl := map[string]any{"name": a.name}
	if a.description != "" {
		decl["description"] = a.description
	}
	if a.successor != "" {
		decl["transition_to"] = a.successor
	}
	if len(a.properties) > 0 || len(a.required) > 0 {
		params := map[string]any{"type": "object", "properties": a.properties}
		if len(a.required) > 0 {
			required := make([]any, len(a.required))
			for i, r := range a.required {
				required[i] = r
			}
			params["required"] = required
		}
		decl["parameters"] = params
	}
	return decl
}

// Package schema validates the arguments a language model supplies when it
// invokes an action.
//
// Argument schemas are declared in the JSON Schema subset that tool-calling
// models understand (object, string with optional enum, integer, number,
// boolean, array with items, nested object) and parsed with Parse:
//
//	s, err := schema.Parse(map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	        "guest_name": map[string]any{"type": "string"},
//	    },
//	    "required": []any{"guest_name"},
//	})
//
//	if err := s.Validate(args); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // each e is a *ValidationError
//	    }
//	}
//
// Validation is all-or-nothing: every missing required field and every
// type mismatch is collected into a single AggregateError.
package schema

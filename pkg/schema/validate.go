package schema

import (
	"fmt"
	"maps"
	"slices"
)

// Property describes one named argument of an action.
type Property struct {
	Type        Type
	Description string
}

// ArgumentSchema declares the arguments an action accepts.
// The zero value accepts any argument map, including nil.
type ArgumentSchema struct {
	Properties map[string]Property
	Required   []string
}

// IsEmpty reports whether the schema declares no properties at all.
func (s ArgumentSchema) IsEmpty() bool {
	return len(s.Properties) == 0 && len(s.Required) == 0
}

// Names returns the property names in sorted order.
func (s ArgumentSchema) Names() []string {
	return slices.Sorted(maps.Keys(s.Properties))
}

// Validate checks that every required field is present and that every
// declared field that is present has a compatible type. Undeclared fields
// are accepted. All failures are reported together.
func (s ArgumentSchema) Validate(data map[string]any) error {
	var errs []error

	for _, name := range s.Required {
		if _, ok := data[name]; !ok {
			errs = append(errs, &ValidationError{
				Key:    name,
				Reason: "required",
				Err:    ErrRequired,
			})
		}
	}

	for _, name := range s.Names() {
		value, ok := data[name]
		if !ok {
			continue
		}
		prop := s.Properties[name]
		if prop.Type == nil {
			continue
		}
		if err := prop.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    name,
				Reason: err.Error(),
				Value:  value,
				Err:    err,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Check verifies the schema is self-consistent: every required name must be declared.
func (s ArgumentSchema) Check() error {
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; !ok {
			return fmt.Errorf("required field %q is not declared in properties", name)
		}
	}
	return nil
}

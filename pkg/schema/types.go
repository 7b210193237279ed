package schema

import (
	"fmt"
	"reflect"
	"slices"
)

// Type defines the contract for argument validation.
// Names follow the JSON Schema vocabulary used by tool-calling models.
type Type interface {
	// Name returns the JSON Schema type name (e.g., "string", "integer").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// StringType validates string values, optionally restricted to an enum.
type StringType struct {
	enum []string
}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if len(t.enum) > 0 && !slices.Contains(t.enum, s) {
		return fmt.Errorf("value %q is not one of %v", s, t.enum)
	}
	return nil
}

// Enum returns the allowed values, if any.
func (t *StringType) Enum() []string { return t.enum }

// IntegerType validates integer values, optionally restricted to an enum.
type IntegerType struct {
	enum []float64
}

func (t *IntegerType) Name() string { return "integer" }

func (t *IntegerType) Validate(value any) error {
	f, ok := numeric(value)
	if !ok {
		return fmt.Errorf("expected integer, got %T", value)
	}
	// Whole floats are accepted: JSON decodes every number as float64.
	if f != float64(int64(f)) {
		return fmt.Errorf("expected integer, got float (not a whole number)")
	}
	return checkEnum(f, t.enum)
}

// Enum returns the allowed values, if any.
func (t *IntegerType) Enum() []float64 { return t.enum }

// NumberType validates numeric values, optionally restricted to an enum.
type NumberType struct {
	enum []float64
}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value any) error {
	f, ok := numeric(value)
	if !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	return checkEnum(f, t.enum)
}

// Enum returns the allowed values, if any.
func (t *NumberType) Enum() []float64 { return t.enum }

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func checkEnum(f float64, enum []float64) error {
	if len(enum) > 0 && !slices.Contains(enum, f) {
		return fmt.Errorf("value %v is not one of %v", f, enum)
	}
	return nil
}

// BooleanType validates boolean values.
type BooleanType struct{}

func (t *BooleanType) Name() string { return "boolean" }

func (t *BooleanType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected boolean, got %T", value)
	}
	return nil
}

// ArrayType validates slices of a specific element type.
type ArrayType struct {
	elemType Type
}

func (t *ArrayType) Name() string { return "array" }

// Elem returns the element type; nil means any element is accepted.
func (t *ArrayType) Elem() Type { return t.elemType }

func (t *ArrayType) Validate(value any) error {
	if value == nil {
		return fmt.Errorf("expected array, got nil")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected array, got %T", value)
	}
	if t.elemType == nil {
		return nil
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// ObjectType validates nested objects against their own argument schema.
type ObjectType struct {
	schema *ArgumentSchema
}

func (t *ObjectType) Name() string { return "object" }

// Schema returns the nested schema; nil means any object is accepted.
func (t *ObjectType) Schema() *ArgumentSchema { return t.schema }

func (t *ObjectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	if t.schema == nil {
		return nil
	}
	return t.schema.Validate(m)
}

// --- Factory Functions ---

// String creates a string type validator. Passing values restricts it to an enum.
func String(enum ...string) Type { return &StringType{enum: enum} }

// Integer creates an integer type validator. Passing values restricts it to an enum.
func Integer(enum ...float64) Type { return &IntegerType{enum: enum} }

// Number creates a number type validator. Passing values restricts it to an enum.
func Number(enum ...float64) Type { return &NumberType{enum: enum} }

// Boolean creates a boolean type validator.
func Boolean() Type { return &BooleanType{} }

// Array creates an array type validator for elements of the given type.
func Array(elemType Type) Type {
	return &ArrayType{elemType: elemType}
}

// Object creates an object type validator. A nil schema accepts any object.
func Object(schema *ArgumentSchema) Type {
	return &ObjectType{schema: schema}
}

package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Type validates and parses one kind of parameter value.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "int", "[string]").
	Name() string
	// Validate checks a decoded value and returns its canonical form.
	Validate(value any) (any, error)
	// Parse converts text into a value of this type.
	Parse(text string) (any, error)
}

// StringType accepts any string.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", value)
	}
	return s, nil
}

func (t *StringType) Parse(text string) (any, error) { return text, nil }

// IntType accepts whole numbers within [Min, Max]. Max <= Min leaves the
// upper end open.
type IntType struct {
	Min, Max int
	bounded  bool
}

func (t *IntType) Name() string {
	switch {
	case !t.bounded:
		return "int"
	case t.Max <= t.Min:
		return fmt.Sprintf("int(%d..)", t.Min)
	}
	return fmt.Sprintf("int(%d..%d)", t.Min, t.Max)
}

func (t *IntType) Validate(value any) (any, error) {
	n, err := toInt(value)
	if err != nil {
		return nil, err
	}
	if t.bounded {
		if n < t.Min {
			return nil, fmt.Errorf("must be at least %d", t.Min)
		}
		if t.Max > t.Min && n > t.Max {
			return nil, fmt.Errorf("must be at most %d", t.Max)
		}
	}
	return n, nil
}

func (t *IntType) Parse(text string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("expected int, got %q", text)
	}
	return t.Validate(n)
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case float64:
		// JSON numbers decode as float64.
		if v == math.Trunc(v) {
			return int(v), nil
		}
		return 0, fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return 0, fmt.Errorf("expected int, got %T", value)
	}
}

// BoolType accepts booleans.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("expected bool, got %T", value)
	}
	return b, nil
}

func (t *BoolType) Parse(text string) (any, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("expected bool, got %q", text)
	}
	return b, nil
}

// SliceType accepts slices whose elements all satisfy elemType. Text is
// split on commas.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected slice, got %T", value)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := t.elemType.Validate(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (t *SliceType) Parse(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return []any{}, nil
	}
	parts := strings.Split(text, ",")
	out := make([]any, len(parts))
	for i, p := range parts {
		v, err := t.elemType.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// String creates a string type.
func String() Type { return &StringType{} }

// Int creates an unbounded integer type.
func Int() Type { return &IntType{} }

// IntRange creates an integer type bounded to [min, max]; max <= min means
// no upper bound.
func IntRange(min, max int) Type { return &IntType{Min: min, Max: max, bounded: true} }

// Bool creates a boolean type.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// ParseType converts a type name produced by Type.Name back into a Type.
// Supports "string", "int", "int(1..)", "int(1..10)", "bool" and "[T]".
func ParseType(typeStr string) (Type, error) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	if rest, ok := strings.CutPrefix(typeStr, "int("); ok && strings.HasSuffix(rest, ")") {
		lo, hi, found := strings.Cut(strings.TrimSuffix(rest, ")"), "..")
		if !found {
			return nil, fmt.Errorf("unsupported type: %s", typeStr)
		}
		min, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("unsupported type: %s", typeStr)
		}
		max := min
		if hi != "" {
			if max, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("unsupported type: %s", typeStr)
			}
		}
		return IntRange(min, max), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "bool":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

package store

import (
	"fmt"
	"strconv"
)

// Kind identifies the scalar type held by a Value.
type Kind int

const (
	// KindInvalid is the kind of the zero Value.
	KindInvalid Kind = iota
	// KindString holds free text.
	KindString
	// KindInt holds a signed integer (bounded fields use Range rules).
	KindInt
	// KindFloat holds a 64-bit float.
	KindFloat
	// KindBool holds a boolean flag.
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is an immutable scalar field value. The zero Value has KindInvalid
// and compares unequal to every typed value.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// StringValue returns a string-kinded Value.
func StringValue(v string) Value { return Value{kind: KindString, s: v} }

// IntValue returns an int-kinded Value.
func IntValue(v int64) Value { return Value{kind: KindInt, i: v} }

// FloatValue returns a float-kinded Value.
func FloatValue(v float64) Value { return Value{kind: KindFloat, f: v} }

// BoolValue returns a bool-kinded Value.
func BoolValue(v bool) Value { return Value{kind: KindBool, b: v} }

// Kind returns the scalar kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value holds a typed scalar.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Text returns the string content, or "" when the kind is not KindString.
func (v Value) Text() string { return v.s }

// Int returns the integer content, or 0 when the kind is not KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns the float content, or 0 when the kind is not KindFloat.
func (v Value) Float() float64 { return v.f }

// Bool returns the boolean content, or false when the kind is not KindBool.
func (v Value) Bool() bool { return v.b }

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool { return v == o }

// Interface returns the content as an untyped value, or nil for the
// zero Value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "<invalid>"
	}
}

// FromInterface converts an untyped scalar into a Value. Integer types
// widen to int64 and float32 widens to float64.
func FromInterface(v any) (Value, error) {
	switch x := v.(type) {
	case string:
		return StringValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case bool:
		return BoolValue(x), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

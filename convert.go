package chronicles

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// renderFunc converts one runtime value into its Chronicles text form.
// Render functions are total: they are only ever invoked on values whose
// kind was whitelisted at plan-build time.
type renderFunc func(v reflect.Value) string

// formatInt renders any integer width without per-sign branching at the
// call sites; reflect hands us int64 or uint64 and the constraint covers
// both.
func formatInt[T constraints.Integer](v T) string {
	if v < 0 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatUint(uint64(v), 10)
}

// textConverters is the closed whitelist of convertible kinds. The scalar
// and sequence-element whitelists coincide; scalarConverter and
// elementConverter exist separately so lookup failures name the right
// context.
var textConverters = map[reflect.Kind]renderFunc{
	reflect.String: func(v reflect.Value) string { return v.String() },
	reflect.Bool:   func(v reflect.Value) string { return strconv.FormatBool(v.Bool()) },

	reflect.Int:   func(v reflect.Value) string { return formatInt(v.Int()) },
	reflect.Int8:  func(v reflect.Value) string { return formatInt(v.Int()) },
	reflect.Int16: func(v reflect.Value) string { return formatInt(v.Int()) },
	reflect.Int32: func(v reflect.Value) string { return formatInt(v.Int()) },
	reflect.Int64: func(v reflect.Value) string { return formatInt(v.Int()) },

	reflect.Uint:   func(v reflect.Value) string { return formatInt(v.Uint()) },
	reflect.Uint8:  func(v reflect.Value) string { return formatInt(v.Uint()) },
	reflect.Uint16: func(v reflect.Value) string { return formatInt(v.Uint()) },
	reflect.Uint32: func(v reflect.Value) string { return formatInt(v.Uint()) },
	reflect.Uint64: func(v reflect.Value) string { return formatInt(v.Uint()) },

	reflect.Float32: func(v reflect.Value) string { return strconv.FormatFloat(v.Float(), 'g', -1, 32) },
	reflect.Float64: func(v reflect.Value) string { return strconv.FormatFloat(v.Float(), 'g', -1, 64) },
}

// scalarConverter returns the render function for a scalar member of type t.
func scalarConverter(t reflect.Type) (renderFunc, error) {
	if fn, ok := textConverters[t.Kind()]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: scalar type %s", ErrUnsupportedType, t)
}

// elementConverter returns the render function for sequence elements of
// type t. A miss is not necessarily an error for the caller: a repeat
// member whose element type is outside the whitelist may still be a valid
// complex repeat.
func elementConverter(t reflect.Type) (renderFunc, error) {
	if fn, ok := textConverters[t.Kind()]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: sequence element type %s", ErrUnsupportedType, t)
}

// isBlank reports whether rendered text is empty or whitespace-only, the
// condition under which omitempty suppresses a scalar line.
func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

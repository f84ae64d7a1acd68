package chronicles

import (
	"errors"
	"fmt"
)

var (
	// ErrDefinition is the class of all declaration errors: a type or member
	// is marked inconsistently and can never be serialized. Every
	// *DefinitionError matches it under errors.Is.
	ErrDefinition = errors.New("chronicles: invalid serialization definition")

	// ErrUnsupportedType indicates a declared value type outside the closed
	// conversion whitelist. It is always reported wrapped in a
	// *DefinitionError, since the type it appears on cannot be serialized
	// at all.
	ErrUnsupportedType = errors.New("chronicles: no converter registered for type")

	// ErrNilWriter indicates that NewBlockWriter or EncodeTo was called with
	// a nil io.Writer.
	ErrNilWriter = errors.New("chronicles: nil io.Writer")
)

// DefinitionError reports an inconsistently declared type or member. It is
// raised when a plan is first built for a type and is deterministic: the
// same declaration produces the same error on every attempt.
type DefinitionError struct {
	Type   string // fully qualified name of the offending type
	Member string // offending member, empty for type-level errors
	reason error
}

func (e *DefinitionError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("chronicles: definition error on %s: %v", e.Type, e.reason)
	}
	return fmt.Sprintf("chronicles: definition error on %s.%s: %v", e.Type, e.Member, e.reason)
}

// Unwrap exposes the underlying reason, so sentinel causes such as
// ErrUnsupportedType remain matchable through the wrapper.
func (e *DefinitionError) Unwrap() error { return e.reason }

// Is reports ErrDefinition as a match, so callers can classify any
// declaration failure without knowing the concrete reason.
func (e *DefinitionError) Is(target error) bool { return target == ErrDefinition }

func definitionErrorf(typ, member string, format string, args ...any) *DefinitionError {
	return &DefinitionError{Type: typ, Member: member, reason: fmt.Errorf(format, args...)}
}

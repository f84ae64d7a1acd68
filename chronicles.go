// Package chronicles converts tagged Go structs into the Chronicles format:
// a line-oriented text encoding in which every line is "<fieldId>,<text>",
// lines are joined by CRLF, and the layout of a type is declared entirely
// through struct tags rather than hand-written formatting code.
//
// A struct field participates by carrying exactly one of two markers:
//
//	Name  string   `record:"1"`           // scalar, field id 1
//	Tags  []string `repeat:"2,omitempty"` // sequence, one line per element
//
// The tag payload is the numeric field id, optionally followed by
// "omitempty" to suppress the member entirely when its value is empty or
// nil. A repeat member whose element type is not in the conversion
// whitelist must itself implement Chronicler; its elements are then
// serialized recursively, each to its own multi-line block.
//
// Only fields declared directly on a type participate. Markers on fields
// promoted from an embedded struct are not discovered; embed a marked
// struct as a complex repeat element instead if its records are wanted.
//
// The member layout of a type is discovered once, compiled into a plan
// sorted by field id, and cached for the life of the process. Declaration
// mistakes (conflicting markers, unsupported types, missing Chronicler on a
// nested element type) surface as a *DefinitionError when the plan is
// built, never during conversion: once a Serializer exists, Convert is
// total and cannot fail.
package chronicles

// Chronicler marks a struct type as a serialization root. The destination
// identifier names the master file the type's records belong to; the engine
// treats it as opaque pass-through metadata and never interprets it.
//
// The method is invoked once, on a fresh zero value, when a Serializer is
// built, so it should return a constant and not derive anything from the
// receiver.
type Chronicler interface {
	ChronicleDestination() string
}

// LineSeparator joins output lines. Chronicles files are CRLF-delimited.
const LineSeparator = "\r\n"

const (
	recordTagKey = "record"
	repeatTagKey = "repeat"
	omitOption   = "omitempty"
)

// Marshal is a convenience wrapper that compiles (or fetches) the plan for
// T and converts a single instance. Use New when converting many instances
// of the same type, to pay the plan lookup once.
func Marshal[T Chronicler](v T) (string, error) {
	s, err := New[T]()
	if err != nil {
		return "", err
	}
	return s.Convert(v), nil
}

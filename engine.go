package chronicles

import (
	"bytes"
	"iter"
	"reflect"
	"strconv"
)

// engine executes one compiled plan against reflect values. It is the
// non-generic core shared by Serializer and by complex-repeat recursion.
type engine struct {
	plan *plan
}

func newEngine(t reflect.Type) (*engine, error) {
	if !implementsChronicler(t) {
		return nil, definitionErrorf(t.String(), "", "type does not implement Chronicler")
	}
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	p, err := planFor(base)
	if err != nil {
		return nil, err
	}
	return &engine{plan: p}, nil
}

// convert runs the plan against one instance and returns its block.
// Conversion is total: a plan that compiled cannot fail on any instance of
// its type. A nil pointer instance converts to the empty string.
func (e *engine) convert(v reflect.Value) string {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	buf := blockPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer blockPool.Put(buf)

	for i := range e.plan.members {
		e.appendMember(buf, &e.plan.members[i], v)
	}
	return buf.String()
}

// appendMember dispatches one member on its kind and appends whatever
// lines it yields. Members that yield nothing leave the buffer untouched,
// so omitted members never contribute a separator either.
func (e *engine) appendMember(buf *bytes.Buffer, m *member, root reflect.Value) {
	rv := root.FieldByIndex(m.index)

	// omitempty short-circuits on a nil pointer or nil slice before any
	// conversion happens.
	if m.omit && isNilValue(rv) {
		return
	}

	switch m.kind {
	case memberScalar:
		sv := rv
		if sv.Kind() == reflect.Pointer {
			sv = sv.Elem() // nil pointer yields the zero Value
		}
		text := ""
		if sv.IsValid() {
			text = m.render(sv)
		}
		if m.omit && isBlank(text) {
			return
		}
		appendLine(buf, m.fieldID, text)

	case memberSimpleRepeat:
		n := rv.Len()
		if n == 0 {
			if !m.omit {
				appendLine(buf, m.fieldID, "")
			}
			return
		}
		for i := 0; i < n; i++ {
			appendLine(buf, m.fieldID, m.render(rv.Index(i)))
		}

	case memberComplexRepeat:
		// Each element serializes to its own multi-line block through the
		// same machinery. The omitempty flag is intentionally not consulted
		// here: an empty sequence yields no blocks and therefore no lines
		// either way.
		nested := engine{plan: m.nested}
		for i := 0; i < rv.Len(); i++ {
			appendBlock(buf, nested.convert(rv.Index(i)))
		}
	}
}

func appendLine(buf *bytes.Buffer, fieldID int, text string) {
	if buf.Len() > 0 {
		buf.WriteString(LineSeparator)
	}
	buf.WriteString(strconv.Itoa(fieldID))
	buf.WriteByte(',')
	buf.WriteString(text)
}

func appendBlock(buf *bytes.Buffer, block string) {
	if block == "" {
		return
	}
	if buf.Len() > 0 {
		buf.WriteString(LineSeparator)
	}
	buf.WriteString(block)
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Serializer converts instances of one Chronicler type to Chronicles text.
// It is immutable and safe for concurrent use.
type Serializer[T Chronicler] struct {
	engine
	dest string
}

// New returns the serializer for T, compiling and caching T's plan on
// first use. Declaration mistakes anywhere in T's member graph are
// reported here as a *DefinitionError; once New succeeds, Convert cannot
// fail.
func New[T Chronicler]() (*Serializer[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	eng, err := newEngine(t)
	if err != nil {
		return nil, err
	}
	return &Serializer[T]{engine: *eng, dest: destinationOf(t)}, nil
}

// destinationOf reads the destination identifier off a fresh zero value of
// t's base struct. Calling the method through a *base pointer covers both
// receiver kinds and never invokes it on a nil receiver, which a zero
// pointer-typed T would.
func destinationOf(t reflect.Type) string {
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	return reflect.New(base).Interface().(Chronicler).ChronicleDestination()
}

// Destination returns T's opaque destination identifier, as declared by
// its ChronicleDestination method.
func (s *Serializer[T]) Destination() string { return s.dest }

// Convert serializes one instance to its Chronicles block: lines in field
// id order joined by LineSeparator, no trailing separator. An instance
// whose plan retains no lines converts to the empty string.
func (s *Serializer[T]) Convert(v T) string {
	return s.convert(reflect.ValueOf(v))
}

// ConvertAll converts instances lazily, one block per instance in input
// order. The result is single-pass in the same sense as seq itself.
func (s *Serializer[T]) ConvertAll(seq iter.Seq[T]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for v := range seq {
			if !yield(s.Convert(v)) {
				return
			}
		}
	}
}

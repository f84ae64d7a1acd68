package chronicles

import (
	"reflect"
	"strconv"
	"strings"
)

// memberKind is the explicit dispatch tag for a resolved member. The
// engine switches on it rather than invoking per-member closures, which
// keeps the per-kind configuration visible and testable.
type memberKind uint8

const (
	memberScalar memberKind = iota
	memberSimpleRepeat
	memberComplexRepeat
)

// marker is one parsed record/repeat tag payload.
type marker struct {
	fieldID int
	omit    bool
}

// member is the resolved, validated binding between one struct field and
// its rendering.
type member struct {
	name    string
	index   []int
	fieldID int
	omit    bool
	kind    memberKind
	render  renderFunc // memberScalar and memberSimpleRepeat
	nested  *plan      // memberComplexRepeat only
}

var chroniclerType = reflect.TypeOf((*Chronicler)(nil)).Elem()

// implementsChronicler accepts the marker method on either the value or
// the pointer method set, so value-typed repeat elements qualify even when
// the method has a pointer receiver.
func implementsChronicler(t reflect.Type) bool {
	if t.Implements(chroniclerType) {
		return true
	}
	return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(chroniclerType)
}

// parseMarker reads one tag key off a field. The payload is the numeric
// field id, optionally followed by "omitempty".
func parseMarker(owner reflect.Type, field reflect.StructField, key string) (marker, bool, error) {
	raw, ok := field.Tag.Lookup(key)
	if !ok {
		return marker{}, false, nil
	}

	parts := strings.Split(raw, ",")
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return marker{}, false, definitionErrorf(owner.String(), field.Name,
			"%s tag needs a numeric field id, got %q", key, parts[0])
	}

	m := marker{fieldID: id}
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case omitOption:
			m.omit = true
		default:
			return marker{}, false, definitionErrorf(owner.String(), field.Name,
				"unknown %s tag option %q", key, opt)
		}
	}
	return m, true, nil
}

// buildMember resolves one struct field into a member descriptor. The
// second return is false when the field carries no marker and does not
// participate. All validation happens here, at plan-build time, so the
// engine's conversion path stays error-free.
func buildMember(owner reflect.Type, field reflect.StructField, visiting map[reflect.Type]struct{}) (member, bool, error) {
	rec, hasRec, err := parseMarker(owner, field, recordTagKey)
	if err != nil {
		return member{}, false, err
	}
	rep, hasRep, err := parseMarker(owner, field, repeatTagKey)
	if err != nil {
		return member{}, false, err
	}

	switch {
	case !hasRec && !hasRep:
		return member{}, false, nil
	case hasRec && hasRep:
		return member{}, false, definitionErrorf(owner.String(), field.Name,
			"member carries both a record and a repeat marker")
	}

	if field.PkgPath != "" {
		return member{}, false, definitionErrorf(owner.String(), field.Name,
			"marker on unexported field")
	}

	if hasRec {
		return buildScalar(owner, field, rec)
	}
	return buildRepeat(owner, field, rep, visiting)
}

func buildScalar(owner reflect.Type, field reflect.StructField, mk marker) (member, bool, error) {
	m := member{
		name:    field.Name,
		index:   field.Index,
		fieldID: mk.fieldID,
		omit:    mk.omit,
		kind:    memberScalar,
	}

	t := field.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	render, err := scalarConverter(t)
	if err != nil {
		return member{}, false, definitionErrorf(owner.String(), field.Name, "%w", err)
	}
	m.render = render
	return m, true, nil
}

func buildRepeat(owner reflect.Type, field reflect.StructField, mk marker, visiting map[reflect.Type]struct{}) (member, bool, error) {
	m := member{
		name:    field.Name,
		index:   field.Index,
		fieldID: mk.fieldID,
		omit:    mk.omit,
		kind:    memberSimpleRepeat,
	}

	t := field.Type
	if t.Kind() == reflect.String {
		return member{}, false, definitionErrorf(owner.String(), field.Name,
			"string is never iterated as a sequence of characters")
	}
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return member{}, false, definitionErrorf(owner.String(), field.Name,
			"repeat member must be a slice or array, got %s", t)
	}

	elem := t.Elem()
	if render, err := elementConverter(elem); err == nil {
		m.render = render
		return m, true, nil
	}

	// Complex repeat: the element type must itself be a serialization root.
	if !implementsChronicler(elem) {
		return member{}, false, definitionErrorf(owner.String(), field.Name,
			"repeat element type %s has no registered converter and does not implement Chronicler", elem)
	}
	base := elem
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	nested, err := compilePlan(base, visiting)
	if err != nil {
		return member{}, false, err
	}
	m.kind = memberComplexRepeat
	m.nested = nested
	return m, true, nil
}

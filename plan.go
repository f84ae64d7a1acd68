package chronicles

import (
	"reflect"
	"sort"

	"github.com/puzpuzpuz/xsync/v4"
)

// planCache maps a struct type to its compiled plan for the life of the
// process. Using a concurrent map makes first use from multiple goroutines
// safe without caller-side locking.
var planCache = xsync.NewMap[reflect.Type, *plan]()

// plan is the compiled serialization layout of one struct type: its marked
// members sorted ascending by field id. The sort is stable, so members
// sharing a field id keep declaration order. A plan is immutable once
// built and safe for concurrent read.
type plan struct {
	typ     reflect.Type
	members []member
}

// planFor returns the cached plan for t, compiling it on first use. A
// failed compilation is never cached: declaration errors are deterministic
// from static metadata, so a retry re-runs discovery and reproduces the
// same error.
func planFor(t reflect.Type) (*plan, error) {
	if p, ok := planCache.Load(t); ok {
		return p, nil
	}
	return compilePlan(t, make(map[reflect.Type]struct{}))
}

// compilePlan performs full member discovery for t. Concurrent first use
// may race the discovery work, but LoadOrStore guarantees every caller
// observes the same plan instance. The visiting set spans one compilation
// including its complex-repeat recursion, turning a cyclic type graph into
// a definition error instead of unbounded recursion.
func compilePlan(t reflect.Type, visiting map[reflect.Type]struct{}) (*plan, error) {
	if p, ok := planCache.Load(t); ok {
		return p, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, definitionErrorf(t.String(), "", "serializable type must be a struct, got %s", t.Kind())
	}
	if _, seen := visiting[t]; seen {
		return nil, definitionErrorf(t.String(), "", "cyclic repeat: type transitively contains itself")
	}
	visiting[t] = struct{}{}
	defer delete(visiting, t)

	p := &plan{typ: t}
	for i := 0; i < t.NumField(); i++ {
		m, ok, err := buildMember(t, t.Field(i), visiting)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		p.members = append(p.members, m)
	}
	sort.SliceStable(p.members, func(i, j int) bool {
		return p.members[i].fieldID < p.members[j].fieldID
	})

	actual, _ := planCache.LoadOrStore(t, p)
	return actual, nil
}

package reflectable

import (
	"fmt"
	"reflect"
	"sync"
)

// Member describes one declared member of a Reflectable type.
type Member struct {
	// Ordinal is the member's position in the flattened declaration order,
	// base members first, 0..NumMembers-1.
	Ordinal int
	// Name is the member's stable name, unique within the type.
	Name string
	// Type is the static Go type of the member's storage.
	Type reflect.Type

	attrs    []Attribute
	required bool
	ignored  bool
	codec    *valueCodec
}

// AttrOf returns the member's attribute of concrete type A, when present.
func AttrOf[A any](m Member) (A, bool) {
	for _, a := range m.attrs {
		if v, ok := a.(A); ok {
			return v, true
		}
	}
	var zero A
	return zero, false
}

// HasAttr reports whether the member carries an attribute of type A.
func HasAttr[A any](m Member) bool {
	_, ok := AttrOf[A](m)
	return ok
}

// Type is the immutable registry for one Reflectable Go type: the ordered
// member list and the dispatch table derived from it. Instances are built
// once per type on first use and shared; they never change afterwards, so
// any number of goroutines may read them concurrently.
type Type struct {
	goType        reflect.Type
	members       []Member
	dispatch      dispatchTable
	requiredCount int
}

var typeCache sync.Map // reflect.Type -> *Type

// TypeOf returns the registry for r's dynamic type, building it on first
// use. Declaration bugs (duplicate names, unsupported member types, a
// non-pointer receiver) panic here with a message naming the offender.
func TypeOf(r Reflectable) *Type {
	rt := reflect.TypeOf(r)
	if t, ok := typeCache.Load(rt); ok {
		return t.(*Type)
	}
	t := buildType(r, rt)
	actual, _ := typeCache.LoadOrStore(rt, t)
	return actual.(*Type)
}

func buildType(r Reflectable, rt reflect.Type) *Type {
	if rt.Kind() != reflect.Pointer {
		panic(fmt.Sprintf("reflectable: %s must be addressed through a pointer", rt))
	}
	t := &Type{goType: rt.Elem()}

	m := &Members{mode: modeDescribe}
	r.ReflectMembers(m)

	b := newCodecBuilder()
	seen := make(map[string]struct{}, len(m.decls))
	t.members = make([]Member, len(m.decls))
	for i, d := range m.decls {
		if _, dup := seen[d.name]; dup {
			panic(fmt.Sprintf("reflectable: %s declares member %q twice", t.Name(), d.name))
		}
		seen[d.name] = struct{}{}

		mem := Member{
			Ordinal: i,
			Name:    d.name,
			Type:    reflect.TypeOf(d.ptr).Elem(),
			attrs:   d.attrs,
		}
		mem.required = HasAttr[RequiredAttr](mem)
		mem.ignored = HasAttr[IgnoreAttr](mem)
		c, err := b.codecFor(mem.Type)
		if err != nil {
			panic(fmt.Sprintf("reflectable: member %q of %s: %v", d.name, t.Name(), err))
		}
		mem.codec = c
		if mem.required {
			t.requiredCount++
		}
		t.members[i] = mem
	}
	t.dispatch = buildDispatch(t.members)
	return t
}

// Name returns the Go name of the registered type.
func (t *Type) Name() string { return t.goType.String() }

// NumMembers returns the flattened member count, base members included.
func (t *Type) NumMembers() int { return len(t.members) }

// Member returns the member with the given ordinal.
func (t *Type) Member(i int) Member { return t.members[i] }

// NumRequired returns the number of members declared Required.
func (t *Type) NumRequired() int { return t.requiredCount }

// bind re-runs the declaration pass against r and returns the addressable
// field storage per ordinal.
func (t *Type) bind(r Reflectable) []reflect.Value {
	m := &Members{mode: modeBind}
	r.ReflectMembers(m)
	if len(m.values) != len(t.members) {
		panic(fmt.Sprintf("reflectable: %s declared %d members, registry has %d; ReflectMembers must be deterministic",
			t.Name(), len(m.values), len(t.members)))
	}
	return m.values
}

// Each walks r's members in ordinal order, pairing each with its addressable
// field value, until fn returns false. It reports whether the walk ran to
// completion.
func Each(r Reflectable, fn func(m Member, v reflect.Value) bool) bool {
	t := TypeOf(r)
	vals := t.bind(r)
	for i := range t.members {
		if !fn(t.members[i], vals[i]) {
			return false
		}
	}
	return true
}

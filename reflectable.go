package reflectable

import (
	"fmt"
	"reflect"
)

// Reflectable is the opt-in contract for member introspection. A type joins
// by declaring each of its members exactly once, in a fixed order, against
// the collector it receives:
//
//	func (c *ServerConfig) ReflectMembers(m *reflectable.Members) {
//		m.Base(&c.CommonConfig)
//		m.Field("host", &c.Host, reflectable.Required())
//		m.Field("port", &c.Port)
//		m.Field("tags", &c.Tags)
//	}
//
// Base, when present, must come first; it enumerates the base type's members
// ahead of the type's own so ordinals stay contiguous across the chain. The
// declaration must be deterministic: the same calls in the same order for
// every instance, since the per-type registry is built from one pass and
// later passes only rebind field storage. Use a pointer receiver; the
// collector needs addressable fields.
type Reflectable interface {
	ReflectMembers(m *Members)
}

// Attribute is metadata attached to a member declaration. Attributes are
// plain values queried by their concrete type via AttrOf, so any type can
// serve as a custom attribute. At most one attribute per type is expected on
// a member; the first one wins.
type Attribute any

// RequiredAttr marks a member for presence tracking. Loads never fail on an
// absent required member by themselves; completeness is observed through a
// Tracker after the fact.
type RequiredAttr struct{}

// Required marks the member as required.
func Required() Attribute { return RequiredAttr{} }

// IgnoreAttr removes a member from name dispatch: tree loads and path loads
// cannot address it. Save still emits it.
type IgnoreAttr struct{}

// Ignore hides the member from loads.
func Ignore() Attribute { return IgnoreAttr{} }

// DecimalsAttr is a display-precision hint. The engine does not consume it;
// it exists for callers rendering values and as the canonical value-carrying
// attribute.
type DecimalsAttr struct{ Places int }

// Decimals attaches a display-precision hint.
func Decimals(places int) Attribute { return DecimalsAttr{Places: places} }

const (
	modeDescribe = iota
	modeBind
)

// Members collects a type's member declarations. It runs in one of two
// modes: describing (recording names, attributes, and field types to build
// the per-type registry) or binding (recording addressable field storage for
// one instance). User code only ever calls Base and Field on it.
type Members struct {
	mode        int
	decls       []memberDecl
	values      []reflect.Value
	levelBase   bool
	levelFields int
}

type memberDecl struct {
	name  string
	ptr   any
	attrs []Attribute
}

// Base declares a single base type whose members precede this type's own.
// It must be called before any Field call and at most once per type.
func (m *Members) Base(base Reflectable) {
	if base == nil {
		panic("reflectable: Base called with nil")
	}
	if m.levelBase {
		panic("reflectable: multiple Base declarations")
	}
	if m.levelFields > 0 {
		panic("reflectable: Base must be declared before any Field")
	}
	savedFields := m.levelFields
	m.levelBase, m.levelFields = false, 0
	base.ReflectMembers(m)
	m.levelBase, m.levelFields = true, savedFields
}

// Field declares one member: its stable name, a pointer to its storage in
// the receiver, and optional attributes.
func (m *Members) Field(name string, ptr any, attrs ...Attribute) {
	validateMemberName(name)
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		panic(fmt.Sprintf("reflectable: member %q needs a non-nil pointer, got %T", name, ptr))
	}
	m.levelFields++
	switch m.mode {
	case modeDescribe:
		m.decls = append(m.decls, memberDecl{name: name, ptr: ptr, attrs: attrs})
	case modeBind:
		m.values = append(m.values, pv.Elem())
	}
}

// Member names travel through dotted paths and the byte-wise dispatch table,
// so they must be ASCII and must not contain the path separator. Lookups
// normalize '-' to '_', so a declared dash could never be addressed.
func validateMemberName(name string) {
	if name == "" {
		panic("reflectable: empty member name")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == 0 || c == '.' || c == '-' || c >= 0x80 {
			panic(fmt.Sprintf("reflectable: invalid member name %q", name))
		}
	}
}

package reflectable

import "reflect"

// Tracker observes which required members a sequence of loads has populated.
// One tracker may serve several sequential loads into the same type (a
// config file, then environment, then command-line overrides) before a
// single Complete check; it must not be shared between concurrent loads.
type Tracker struct {
	typ            *Type
	seen           []bool
	uniqueRequired int
}

// NewTracker returns a fresh tracker for r's type with no members seen.
func NewTracker(r Reflectable) *Tracker {
	t := TypeOf(r)
	return &Tracker{typ: t, seen: make([]bool, t.NumMembers())}
}

// handle runs the entry's codec against the bound field and, on success,
// records the member as seen. Seeing a member twice counts once.
func (tr *Tracker) handle(e *dispatchEntry, fv reflect.Value, tree any) Issues {
	if iss := e.member.codec.decode(tree, fv); iss != nil {
		return iss
	}
	tr.markSeen(e)
	return nil
}

func (tr *Tracker) markSeen(e *dispatchEntry) {
	if e.required && !tr.seen[e.ordinal] {
		tr.seen[e.ordinal] = true
		tr.uniqueRequired++
	}
}

// Complete reports whether every required member has been seen.
func (tr *Tracker) Complete() bool {
	return tr.uniqueRequired == tr.typ.requiredCount
}

// Missing lists the names of required members not yet seen, in ordinal
// order.
func (tr *Tracker) Missing() []string {
	var names []string
	for i := range tr.typ.members {
		m := &tr.typ.members[i]
		if m.required && !tr.seen[m.Ordinal] {
			names = append(names, m.Name)
		}
	}
	return names
}

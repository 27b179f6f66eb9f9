package reflectable

import "sort"

// dispatchEntry is one addressable member in the name-dispatch table.
type dispatchEntry struct {
	name     string
	ordinal  int
	required bool
	member   *Member
}

// dispatchTable is sorted lexicographically by name (byte order) and is
// read-only after buildDispatch. Members marked Ignore are absent.
type dispatchTable []dispatchEntry

func buildDispatch(members []Member) dispatchTable {
	t := make(dispatchTable, 0, len(members))
	for i := range members {
		m := &members[i]
		if m.ignored {
			continue
		}
		t = append(t, dispatchEntry{name: m.Name, ordinal: m.Ordinal, required: m.required, member: m})
	}
	sort.Slice(t, func(a, b int) bool { return t[a].name < t[b].name })
	return t
}

// nameByte reads s[i], with positions past the end reading as a 0x00
// terminator so exact names order before their extensions.
func nameByte(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return 0
}

// matcher narrows a candidate window over the sorted table one input byte at
// a time. Within a window all names share the first pos bytes, so the window
// stays sorted by the byte at pos and both bounds are binary searches. The
// matcher owns no heap state and never touches the table, so concurrent
// matches over one table are safe.
type matcher struct {
	table  dispatchTable
	lo, hi int
	pos    int
}

func newMatcher(t dispatchTable) matcher {
	return matcher{table: t, lo: 0, hi: len(t), pos: 0}
}

// step consumes one input byte. Dashes normalize to underscores so
// command-line style names address underscore members.
func (m *matcher) step(c byte) {
	if c == '-' {
		c = '_'
	}
	lo, hi, i := m.lo, m.hi, m.pos
	m.lo = lo + sort.Search(hi-lo, func(k int) bool { return nameByte(m.table[lo+k].name, i) >= c })
	m.hi = lo + sort.Search(hi-lo, func(k int) bool { return nameByte(m.table[lo+k].name, i) > c })
	m.pos++
}

// matched reports the single remaining candidate after the terminator step,
// or nil when the input was ambiguous or unknown.
func (m *matcher) matched() *dispatchEntry {
	if m.hi-m.lo == 1 {
		return &m.table[m.lo]
	}
	return nil
}

// find resolves name to exactly one entry, or nil. A proper prefix shared by
// several names resolves to nothing; a complete member name resolves even
// when it prefixes a longer one.
func (t dispatchTable) find(name string) *dispatchEntry {
	m := newMatcher(t)
	for i := 0; i < len(name); i++ {
		m.step(name[i])
		if m.lo >= m.hi {
			return nil
		}
	}
	m.step(0)
	return m.matched()
}

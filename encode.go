package reflectable

// Save encodes r into a tree value: an object keyed by member name, every
// member included, Ignore notwithstanding (Ignore only hides members from
// loads). Saving a zero instance succeeds.
func Save(r Reflectable) (any, error) {
	obj, iss := saveMembers(r)
	if iss != nil {
		return nil, iss
	}
	return obj, nil
}

func saveMembers(r Reflectable) (map[string]any, Issues) {
	t := TypeOf(r)
	vals := t.bind(r)
	out := make(map[string]any, len(t.members))
	for i := range t.members {
		m := &t.members[i]
		enc, iss := m.codec.encode(vals[i])
		if iss != nil {
			return nil, rebaseIssuesUnder("/"+m.Name, iss)
		}
		out[m.Name] = enc
	}
	return out, nil
}

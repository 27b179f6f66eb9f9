package reflectable

import (
	"fmt"
	"sort"
)

// Load decodes a tree value into r. The input must be an object; each key
// resolves through the dispatch table and unmatched keys are skipped, so a
// load is a partial update: members absent from the input keep their current
// values. A matched member whose value fails to decode fails the load
// immediately, and mutations made before the failure stick. Load by itself
// never complains about absent required members; use a Tracker when that
// matters.
func Load(v any, r Reflectable) error {
	return LoadTracked(NewTracker(r), v, r)
}

// LoadTracked is Load recording required-member presence on tr. The tracker
// must have been created for r's type.
func LoadTracked(tr *Tracker, v any, r Reflectable) error {
	t := TypeOf(r)
	if tr.typ != t {
		panic(fmt.Sprintf("reflectable: tracker for %s used with %s", tr.typ.Name(), t.Name()))
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return issueAt("/", CodeInvalidType, "expected object, got "+treeKind(v))
	}
	if iss := loadMembers(tr, obj, r); iss != nil {
		return iss
	}
	return nil
}

// loadMembers visits input keys in sorted order so failures are
// deterministic regardless of map iteration.
func loadMembers(tr *Tracker, obj map[string]any, r Reflectable) Issues {
	t := tr.typ
	vals := t.bind(r)
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := t.dispatch.find(k)
		if e == nil {
			continue
		}
		if iss := tr.handle(e, vals[e.ordinal], obj[k]); iss != nil {
			return rebaseIssuesUnder("/"+k, iss)
		}
	}
	return nil
}

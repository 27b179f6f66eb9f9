package reflectable

import (
	"fmt"
	"strings"
)

// LoadPath sets one member from a dotted path string of the form
// "member.submember.value": every segment before the value walks nested
// members, and the remainder after the last matched member is the value
// itself, so values may contain dots ("server.host.example.com"). Segments
// resolve through the same prefix dispatch as tree loads, dashes included,
// so "max-size.10" addresses a member named max_size.
//
// Terminal members parse by type: bounds-checked integers, floats, bools,
// strings as-is, text-unmarshalable types through UnmarshalText, durations
// through the Go duration syntax. A slice member appends one parsed element
// per call; a pointer member allocates and parses into fresh storage. A path
// that ends on a nested member without a value fails, as does a member whose
// type has no string form.
func LoadPath(path string, r Reflectable) error {
	_, iss := loadPathInto(r, path)
	if iss != nil {
		return iss
	}
	return nil
}

// LoadPathTracked is LoadPath recording the first-segment member on tr, so
// command-line overrides can satisfy required members.
func LoadPathTracked(tr *Tracker, path string, r Reflectable) error {
	t := TypeOf(r)
	if tr.typ != t {
		panic(fmt.Sprintf("reflectable: tracker for %s used with %s", tr.typ.Name(), t.Name()))
	}
	e, iss := loadPathInto(r, path)
	if iss != nil {
		return iss
	}
	tr.markSeen(e)
	return nil
}

func loadPathInto(r Reflectable, path string) (*dispatchEntry, Issues) {
	t := TypeOf(r)
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, Issues{{Path: "/", Code: CodeParseError,
			Message: fmt.Sprintf("path %q needs a member segment and a value", path)}}
	}
	e := t.dispatch.find(head)
	if e == nil {
		return nil, Issues{{Path: "/", Code: CodeUnknownKey,
			Message: fmt.Sprintf("no member of %s matches %q", t.Name(), head)}}
	}
	fv := t.bind(r)[e.ordinal]
	parse := e.member.codec.parse
	if parse == nil {
		return nil, issueAt("/"+e.name, CodeInvalidType, "member cannot be set from a string")
	}
	if iss := parse(rest, fv); iss != nil {
		return nil, rebaseIssuesUnder("/"+e.name, iss)
	}
	return e, nil
}

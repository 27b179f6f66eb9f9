package reflectable

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// valueCodec converts one member type between its Go form and the tree
// value form. encode and decode always receive addressable values; parse is
// nil for types that cannot be set from a dotted-path string. Issue paths
// are relative to the value itself ("/" for the value, "/2" for an element)
// and get rebased by the caller.
type valueCodec struct {
	encode func(v reflect.Value) (any, Issues)
	decode func(tree any, v reflect.Value) Issues
	parse  func(s string, v reflect.Value) Issues
}

var (
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	variantType         = reflect.TypeOf((*Variant)(nil)).Elem()
	reflectableType     = reflect.TypeOf((*Reflectable)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// codecBuilder resolves codecs for one registry build. The memo breaks
// recursive type graphs: a placeholder is published before the codec is
// filled in, which is safe because a registry is never shared before its
// build completes.
type codecBuilder struct {
	memo map[reflect.Type]*valueCodec
}

func newCodecBuilder() *codecBuilder {
	return &codecBuilder{memo: make(map[reflect.Type]*valueCodec)}
}

func (b *codecBuilder) codecFor(t reflect.Type) (*valueCodec, error) {
	if c, ok := b.memo[t]; ok {
		return c, nil
	}
	c := &valueCodec{}
	b.memo[t] = c
	if err := b.build(c, t); err != nil {
		delete(b.memo, t)
		return nil, err
	}
	return c, nil
}

// build resolves the codec by category: capabilities first (time before the
// text interfaces, since time.Time implements them), then the Go kind.
func (b *codecBuilder) build(c *valueCodec, t reflect.Type) error {
	switch {
	case t == timeType:
		buildTime(c)
		return nil
	case t == durationType:
		buildDuration(c)
		return nil
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(variantType):
		return b.buildVariant(c, t)
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(reflectableType):
		buildNested(c)
		return nil
	case t.Kind() != reflect.Pointer &&
		reflect.PointerTo(t).Implements(textMarshalerType) &&
		reflect.PointerTo(t).Implements(textUnmarshalerType):
		buildText(c)
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		buildBool(c)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buildInt(c, t)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		buildUint(c, t)
	case reflect.Float32, reflect.Float64:
		buildFloat(c, t)
	case reflect.String:
		buildString(c)
	case reflect.Pointer:
		return b.buildOptional(c, t)
	case reflect.Slice:
		return b.buildSlice(c, t)
	case reflect.Array:
		return b.buildArray(c, t)
	case reflect.Map:
		return b.buildMap(c, t)
	case reflect.Struct:
		return b.buildTuple(c, t)
	default:
		return fmt.Errorf("unsupported member type %s", t)
	}
	return nil
}

// Time points travel as integer microseconds since the Unix epoch;
// sub-microsecond precision truncates on save.
func buildTime(c *valueCodec) {
	c.encode = func(v reflect.Value) (any, Issues) {
		return v.Interface().(time.Time).UnixMicro(), nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		us, ok := asInt64(tree)
		if !ok {
			return numberIssue(tree, "integer microseconds")
		}
		v.Set(reflect.ValueOf(time.UnixMicro(us)))
		return nil
	}
	c.parse = func(s string, v reflect.Value) Issues {
		var t time.Time
		if err := t.UnmarshalText([]byte(s)); err != nil {
			return Issues{{Path: "/", Code: CodeParseError, Message: "invalid RFC 3339 time", Cause: err}}
		}
		v.Set(reflect.ValueOf(t))
		return nil
	}
}

// Durations travel as integer microsecond counts. Dotted paths accept the
// Go duration syntax ("250ms", "1h30m").
func buildDuration(c *valueCodec) {
	c.encode = func(v reflect.Value) (any, Issues) {
		return int64(time.Duration(v.Int()) / time.Microsecond), nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		us, ok := asInt64(tree)
		if !ok {
			return numberIssue(tree, "integer microseconds")
		}
		// The nanosecond conversion must not wrap int64.
		if us > math.MaxInt64/int64(time.Microsecond) || us < math.MinInt64/int64(time.Microsecond) {
			return issueAt("/", CodeOverflow, fmt.Sprintf("%d microseconds overflows time.Duration", us))
		}
		v.SetInt(us * int64(time.Microsecond))
		return nil
	}
	c.parse = func(s string, v reflect.Value) Issues {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Issues{{Path: "/", Code: CodeParseError, Message: "invalid duration", Cause: err}}
		}
		v.SetInt(int64(d))
		return nil
	}
}

func (b *codecBuilder) buildVariant(c *valueCodec, t reflect.Type) error {
	alts := reflect.New(t).Interface().(Variant).VariantTypes()
	if len(alts) == 0 {
		return fmt.Errorf("variant %s declares no alternatives", t)
	}
	codecs := make([]*valueCodec, len(alts))
	for i, at := range alts {
		ac, err := b.codecFor(at)
		if err != nil {
			return fmt.Errorf("variant alternative %d (%s): %w", i, at, err)
		}
		codecs[i] = ac
	}
	c.encode = func(v reflect.Value) (any, Issues) {
		va := v.Addr().Interface().(Variant)
		idx := va.VariantIndex()
		if idx < 0 || idx >= len(alts) {
			return nil, issueAt("/0", CodeInvalidVariant, fmt.Sprintf("variant index %d out of range", idx))
		}
		av := reflect.New(alts[idx]).Elem()
		if val := va.VariantValue(); val != nil {
			av.Set(reflect.ValueOf(val))
		}
		enc, iss := codecs[idx].encode(av)
		if iss != nil {
			return nil, rebaseIssuesUnder("/1", iss)
		}
		return []any{int64(idx), enc}, nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		arr, ok := tree.([]any)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected [index, value] array, got "+treeKind(tree))
		}
		if len(arr) != 2 {
			return issueAt("/", CodeInvalidLength, fmt.Sprintf("expected 2 elements, got %d", len(arr)))
		}
		tag, ok := asInt64(arr[0])
		if !ok || tag < 0 || tag >= int64(len(alts)) {
			return issueAt("/0", CodeInvalidVariant, fmt.Sprintf("variant tag must be an integer in [0,%d)", len(alts)))
		}
		av := reflect.New(alts[tag]).Elem()
		if iss := codecs[tag].decode(arr[1], av); iss != nil {
			return rebaseIssuesUnder("/1", iss)
		}
		if !v.Addr().Interface().(Variant).SetVariant(int(tag), av.Interface()) {
			return issueAt("/0", CodeInvalidVariant, "variant rejected the alternative")
		}
		return nil
	}
	return nil
}

// Nested reflectable values defer to their own registry; required members of
// a nested type are not tracked by the enclosing load.
func buildNested(c *valueCodec) {
	c.encode = func(v reflect.Value) (any, Issues) {
		return saveMembers(v.Addr().Interface().(Reflectable))
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		obj, ok := tree.(map[string]any)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected object, got "+treeKind(tree))
		}
		nr := v.Addr().Interface().(Reflectable)
		return loadMembers(NewTracker(nr), obj, nr)
	}
	c.parse = func(s string, v reflect.Value) Issues {
		_, iss := loadPathInto(v.Addr().Interface().(Reflectable), s)
		return iss
	}
}

// Types with a lossless text round trip travel as strings.
func buildText(c *valueCodec) {
	c.encode = func(v reflect.Value) (any, Issues) {
		b, err := v.Addr().Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: "marshal text failed", Cause: err}}
		}
		return string(b), nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		s, ok := tree.(string)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected string, got "+treeKind(tree))
		}
		return textUnmarshal(s, v)
	}
	c.parse = textUnmarshal
}

func textUnmarshal(s string, v reflect.Value) Issues {
	if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return Issues{{Path: "/", Code: CodeParseError, Message: "unmarshal text failed", Cause: err}}
	}
	return nil
}

func buildBool(c *valueCodec) {
	c.encode = func(v reflect.Value) (any, Issues) {
		return v.Bool(), nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		b, ok := tree.(bool)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected bool, got "+treeKind(tree))
		}
		v.SetBool(b)
		return nil
	}
	c.parse = func(s string, v reflect.Value) Issues {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Issues{{Path: "/", Code: CodeParseError, Message: "invalid bool", Cause: err}}
		}
		v.SetBool(b)
		return nil
	}
}

func buildInt(c *valueCodec, t reflect.Type) {
	bits := t.Bits()
	c.encode = func(v reflect.Value) (any, Issues) {
		return v.Int(), nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		n, ok := asInt64(tree)
		if !ok {
			return numberIssue(tree, "integer")
		}
		if v.OverflowInt(n) {
			return issueAt("/", CodeOverflow, fmt.Sprintf("%d overflows %s", n, t))
		}
		v.SetInt(n)
		return nil
	}
	c.parse = func(s string, v reflect.Value) Issues {
		n, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return parseNumberIssue(err)
		}
		v.SetInt(n)
		return nil
	}
}

func buildUint(c *valueCodec, t reflect.Type) {
	bits := t.Bits()
	c.encode = func(v reflect.Value) (any, Issues) {
		return v.Uint(), nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		n, ok := asUint64(tree)
		if !ok {
			return numberIssue(tree, "unsigned integer")
		}
		if v.OverflowUint(n) {
			return issueAt("/", CodeOverflow, fmt.Sprintf("%d overflows %s", n, t))
		}
		v.SetUint(n)
		return nil
	}
	c.parse = func(s string, v reflect.Value) Issues {
		n, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return parseNumberIssue(err)
		}
		v.SetUint(n)
		return nil
	}
}

func buildFloat(c *valueCodec, t reflect.Type) {
	bits := t.Bits()
	c.encode = func(v reflect.Value) (any, Issues) {
		return v.Float(), nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		f, ok := asFloat64(tree)
		if !ok {
			if numberOutOfRange(tree) {
				return issueAt("/", CodeOverflow, "number out of range")
			}
			return issueAt("/", CodeInvalidType, "expected number, got "+treeKind(tree))
		}
		if v.OverflowFloat(f) {
			return issueAt("/", CodeOverflow, fmt.Sprintf("%g overflows %s", f, t))
		}
		v.SetFloat(f)
		return nil
	}
	c.parse = func(s string, v reflect.Value) Issues {
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return parseNumberIssue(err)
		}
		v.SetFloat(f)
		return nil
	}
}

func buildString(c *valueCodec) {
	c.encode = func(v reflect.Value) (any, Issues) {
		return v.String(), nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		s, ok := tree.(string)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected string, got "+treeKind(tree))
		}
		v.SetString(s)
		return nil
	}
	c.parse = func(s string, v reflect.Value) Issues {
		v.SetString(s)
		return nil
	}
}

// Pointers are optionals: null clears, anything else decodes into fresh
// storage (prior contents do not merge).
func (b *codecBuilder) buildOptional(c *valueCodec, t reflect.Type) error {
	et := t.Elem()
	inner, err := b.codecFor(et)
	if err != nil {
		return err
	}
	c.encode = func(v reflect.Value) (any, Issues) {
		if v.IsNil() {
			return nil, nil
		}
		return inner.encode(v.Elem())
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		if tree == nil {
			v.SetZero()
			return nil
		}
		v.Set(reflect.New(et))
		return inner.decode(tree, v.Elem())
	}
	if inner.parse != nil {
		c.parse = func(s string, v reflect.Value) Issues {
			v.Set(reflect.New(et))
			return inner.parse(s, v.Elem())
		}
	}
	return nil
}

// Slices resize to the input length, reusing retained elements like the
// nested partial-update semantics everywhere else. A dotted path appends a
// single parsed element.
func (b *codecBuilder) buildSlice(c *valueCodec, t reflect.Type) error {
	et := t.Elem()
	inner, err := b.codecFor(et)
	if err != nil {
		return err
	}
	c.encode = func(v reflect.Value) (any, Issues) {
		n := v.Len()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			enc, iss := inner.encode(v.Index(i))
			if iss != nil {
				return nil, rebaseIssuesUnder("/"+strconv.Itoa(i), iss)
			}
			out[i] = enc
		}
		return out, nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		arr, ok := tree.([]any)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected array, got "+treeKind(tree))
		}
		n := len(arr)
		if v.Len() > n {
			v.SetLen(n)
		}
		for v.Len() < n {
			v.Set(reflect.Append(v, reflect.Zero(et)))
		}
		for i := 0; i < n; i++ {
			if iss := inner.decode(arr[i], v.Index(i)); iss != nil {
				return rebaseIssuesUnder("/"+strconv.Itoa(i), iss)
			}
		}
		return nil
	}
	if inner.parse != nil {
		c.parse = func(s string, v reflect.Value) Issues {
			ev := reflect.New(et).Elem()
			if iss := inner.parse(s, ev); iss != nil {
				return iss
			}
			v.Set(reflect.Append(v, ev))
			return nil
		}
	}
	return nil
}

func (b *codecBuilder) buildArray(c *valueCodec, t reflect.Type) error {
	n := t.Len()
	inner, err := b.codecFor(t.Elem())
	if err != nil {
		return err
	}
	c.encode = func(v reflect.Value) (any, Issues) {
		out := make([]any, n)
		for i := 0; i < n; i++ {
			enc, iss := inner.encode(v.Index(i))
			if iss != nil {
				return nil, rebaseIssuesUnder("/"+strconv.Itoa(i), iss)
			}
			out[i] = enc
		}
		return out, nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		arr, ok := tree.([]any)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected array, got "+treeKind(tree))
		}
		if len(arr) != n {
			return issueAt("/", CodeInvalidLength, fmt.Sprintf("expected %d elements, got %d", n, len(arr)))
		}
		for i := 0; i < n; i++ {
			if iss := inner.decode(arr[i], v.Index(i)); iss != nil {
				return rebaseIssuesUnder("/"+strconv.Itoa(i), iss)
			}
		}
		return nil
	}
	return nil
}

// Maps travel as arrays of [key, value] pairs, never as objects, so keys
// keep their own encoding. Saves order pairs by encoded key so output is
// deterministic; loads replace the whole map.
func (b *codecBuilder) buildMap(c *valueCodec, t reflect.Type) error {
	kc, err := b.codecFor(t.Key())
	if err != nil {
		return fmt.Errorf("map key: %w", err)
	}
	vc, err := b.codecFor(t.Elem())
	if err != nil {
		return err
	}
	kt, vt := t.Key(), t.Elem()
	c.encode = func(v reflect.Value) (any, Issues) {
		type pair struct {
			key string
			enc any
		}
		pairs := make([]pair, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			kv := reflect.New(kt).Elem()
			kv.Set(iter.Key())
			ek, iss := kc.encode(kv)
			if iss != nil {
				return nil, rebaseIssuesUnder("/"+fmt.Sprint(iter.Key().Interface()), iss)
			}
			vv := reflect.New(vt).Elem()
			vv.Set(iter.Value())
			ev, iss := vc.encode(vv)
			if iss != nil {
				return nil, rebaseIssuesUnder("/"+fmt.Sprint(iter.Key().Interface()), iss)
			}
			pairs = append(pairs, pair{key: fmt.Sprint(ek), enc: []any{ek, ev}})
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].key < pairs[b].key })
		out := make([]any, len(pairs))
		for i, p := range pairs {
			out[i] = p.enc
		}
		return out, nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		arr, ok := tree.([]any)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected array of [key, value] pairs, got "+treeKind(tree))
		}
		v.Set(reflect.MakeMapWithSize(t, len(arr)))
		for i, el := range arr {
			p, ok := el.([]any)
			if !ok {
				return issueAt("/"+strconv.Itoa(i), CodeInvalidType, "expected [key, value] pair, got "+treeKind(el))
			}
			if len(p) != 2 {
				return issueAt("/"+strconv.Itoa(i), CodeInvalidLength, fmt.Sprintf("expected 2 elements, got %d", len(p)))
			}
			kv := reflect.New(kt).Elem()
			if iss := kc.decode(p[0], kv); iss != nil {
				return rebaseIssuesUnder("/"+strconv.Itoa(i)+"/0", iss)
			}
			vv := reflect.New(vt).Elem()
			if iss := vc.decode(p[1], vv); iss != nil {
				return rebaseIssuesUnder("/"+strconv.Itoa(i)+"/1", iss)
			}
			v.SetMapIndex(kv, vv)
		}
		return nil
	}
	return nil
}

// Plain structs that opt into nothing encode positionally over their
// exported fields, which is what makes Pair and friends tuples.
func (b *codecBuilder) buildTuple(c *valueCodec, t reflect.Type) error {
	var idx []int
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			idx = append(idx, i)
		}
	}
	codecs := make([]*valueCodec, len(idx))
	for k, i := range idx {
		fc, err := b.codecFor(t.Field(i).Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
		}
		codecs[k] = fc
	}
	n := len(idx)
	c.encode = func(v reflect.Value) (any, Issues) {
		out := make([]any, n)
		for k, i := range idx {
			enc, iss := codecs[k].encode(v.Field(i))
			if iss != nil {
				return nil, rebaseIssuesUnder("/"+strconv.Itoa(k), iss)
			}
			out[k] = enc
		}
		return out, nil
	}
	c.decode = func(tree any, v reflect.Value) Issues {
		arr, ok := tree.([]any)
		if !ok {
			return issueAt("/", CodeInvalidType, "expected array, got "+treeKind(tree))
		}
		if len(arr) != n {
			return issueAt("/", CodeInvalidLength, fmt.Sprintf("expected %d elements, got %d", n, len(arr)))
		}
		for k, i := range idx {
			if iss := codecs[k].decode(arr[k], v.Field(i)); iss != nil {
				return rebaseIssuesUnder("/"+strconv.Itoa(k), iss)
			}
		}
		return nil
	}
	return nil
}

func numberIssue(tree any, want string) Issues {
	if f, ok := asFloat64(tree); ok {
		if f != math.Trunc(f) {
			return issueAt("/", CodeInvalidType, "expected "+want+", got fractional number")
		}
		return issueAt("/", CodeOverflow, "number out of range")
	}
	// Literals too large even for float64 are out of range, not another kind.
	if numberOutOfRange(tree) {
		return issueAt("/", CodeOverflow, "number out of range")
	}
	return issueAt("/", CodeInvalidType, "expected number, got "+treeKind(tree))
}

func parseNumberIssue(err error) Issues {
	code := CodeParseError
	if errors.Is(err, strconv.ErrRange) {
		code = CodeOverflow
	}
	return Issues{{Path: "/", Code: code, Message: "invalid number", Cause: err}}
}

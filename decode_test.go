package reflectable_test

import (
	"encoding/json"
	"math"
	"net/netip"
	"reflect"
	"testing"
	"time"

	reflectable "github.com/reoring/reflectable"
)

func mustIssues(t *testing.T, err error) reflectable.Issues {
	t.Helper()
	iss, ok := reflectable.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T: %v", err, err)
	}
	return iss
}

func TestLoad_EmptyObjectKeepsDefaults(t *testing.T) {
	tm := newTwoMember()
	if err := reflectable.Load(map[string]any{}, tm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Foo != 42 || tm.Bar != 1.1 {
		t.Fatalf("defaults changed: foo=%d bar=%v", tm.Foo, tm.Bar)
	}
}

func TestLoad_PartialUpdate(t *testing.T) {
	tm := newTwoMember()
	if err := reflectable.Load(map[string]any{"foo": int64(7)}, tm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Foo != 7 {
		t.Fatalf("foo: got=%d want=7", tm.Foo)
	}
	if tm.Bar != 1.1 {
		t.Fatalf("bar should keep its prior value, got=%v", tm.Bar)
	}
}

func TestLoad_JSONNumberInput(t *testing.T) {
	s := &serverConfig{}
	err := reflectable.Load(map[string]any{"port": json.Number("8080")}, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Port != 8080 {
		t.Fatalf("port: got=%d want=8080", s.Port)
	}
}

func TestLoad_NonObjectFails(t *testing.T) {
	iss := mustIssues(t, reflectable.Load([]any{1}, newTwoMember()))
	if len(iss) != 1 || iss[0].Code != reflectable.CodeInvalidType {
		t.Fatalf("issues: got=%v", iss)
	}
	if iss[0].Path != "/" {
		t.Fatalf("path: got=%q want=%q", iss[0].Path, "/")
	}
}

func TestLoad_UnknownKeySkipped(t *testing.T) {
	tm := newTwoMember()
	if err := reflectable.Load(map[string]any{"nope": int64(1)}, tm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Foo != 42 || tm.Bar != 1.1 {
		t.Fatalf("unknown key touched state: %+v", tm)
	}
}

func TestLoad_AmbiguousPrefixSkipped(t *testing.T) {
	k := &knobs{}
	if err := reflectable.Load(map[string]any{"ma": int64(1)}, k); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Max != 0 || k.MaxSize != 0 || k.Man != 0 {
		t.Fatalf("ambiguous prefix touched state: %+v", k)
	}
}

func TestLoad_ExactNameBeatsLongerCandidate(t *testing.T) {
	k := &knobs{}
	if err := reflectable.Load(map[string]any{"max": int64(3)}, k); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Max != 3 || k.MaxSize != 0 {
		t.Fatalf("exact match: %+v", k)
	}
}

func TestLoad_ProperPrefixDoesNotMatch(t *testing.T) {
	k := &knobs{}
	if err := reflectable.Load(map[string]any{"max_s": int64(9)}, k); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.MaxSize != 0 {
		t.Fatalf("proper prefix should not select a member: %+v", k)
	}
}

func TestLoad_DashNormalization(t *testing.T) {
	k := &knobs{}
	if err := reflectable.Load(map[string]any{"max-size": int64(9)}, k); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.MaxSize != 9 {
		t.Fatalf("max_size: got=%d want=9", k.MaxSize)
	}
}

func TestLoad_FailureIsImmediate(t *testing.T) {
	tm := newTwoMember()
	// Keys apply in sorted order: "bar" lands before "foo" fails.
	err := reflectable.Load(map[string]any{"bar": 2.5, "foo": "bad"}, tm)
	iss := mustIssues(t, err)
	if iss[0].Path != "/foo" || iss[0].Code != reflectable.CodeInvalidType {
		t.Fatalf("issue: got=%+v", iss[0])
	}
	if tm.Bar != 2.5 {
		t.Fatalf("earlier member should stay applied, bar=%v", tm.Bar)
	}
	if tm.Foo != 42 {
		t.Fatalf("failed member should stay untouched, foo=%d", tm.Foo)
	}
}

func TestLoad_NestedObject(t *testing.T) {
	h := &hub{Primary: *newTwoMember()}
	tree := map[string]any{
		"name":    "edge",
		"primary": map[string]any{"foo": int64(1)},
	}
	if err := reflectable.Load(tree, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Name != "edge" || h.Primary.Foo != 1 {
		t.Fatalf("nested load: %+v", h)
	}
	if h.Primary.Bar != 1.1 {
		t.Fatalf("nested partial update should keep bar, got=%v", h.Primary.Bar)
	}
}

func TestLoad_SliceOfNested(t *testing.T) {
	h := &hub{}
	tree := map[string]any{
		"pool": []any{
			map[string]any{"foo": int64(11)},
			map[string]any{"foo": int64(22)},
		},
	}
	if err := reflectable.Load(tree, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Pool) != 2 || h.Pool[0].Foo != 11 || h.Pool[1].Foo != 22 {
		t.Fatalf("pool: got=%+v", h.Pool)
	}
}

func TestLoad_NestedFailureCarriesPath(t *testing.T) {
	h := &hub{}
	err := reflectable.Load(map[string]any{"primary": map[string]any{"foo": "x"}}, h)
	iss := mustIssues(t, err)
	if iss[0].Path != "/primary/foo" {
		t.Fatalf("path: got=%q want=%q", iss[0].Path, "/primary/foo")
	}
}

func TestLoad_OptionalNull(t *testing.T) {
	h := &hub{Backup: newTwoMember()}
	if err := reflectable.Load(map[string]any{"backup": nil}, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Backup != nil {
		t.Fatalf("null should clear the pointer, got=%+v", h.Backup)
	}
}

func TestLoad_OptionalAllocatesFresh(t *testing.T) {
	prior := newTwoMember()
	h := &hub{Backup: prior}
	err := reflectable.Load(map[string]any{"backup": map[string]any{"bar": 2.5}}, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Backup == prior {
		t.Fatalf("decode should allocate a fresh value")
	}
	// Fresh allocation starts from the zero value, not the prior one.
	if h.Backup.Foo != 0 || h.Backup.Bar != 2.5 {
		t.Fatalf("fresh optional: %+v", h.Backup)
	}
}

func TestLoad_VariantSelectsAlternative(t *testing.T) {
	s := &serverConfig{}
	err := reflectable.Load(map[string]any{"endpoint": []any{int64(1), int64(9090)}}, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Endpoint.VariantIndex(); got != 1 {
		t.Fatalf("variant index: got=%d want=1", got)
	}
	if v, ok := s.Endpoint.Second(); !ok || v != 9090 {
		t.Fatalf("second: got=%v ok=%v", v, ok)
	}
}

func TestLoad_VariantBadTag(t *testing.T) {
	s := &serverConfig{}
	err := reflectable.Load(map[string]any{"endpoint": []any{int64(5), "x"}}, s)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeInvalidVariant {
		t.Fatalf("code: got=%q want=%q", iss[0].Code, reflectable.CodeInvalidVariant)
	}
	if iss[0].Path != "/endpoint/0" {
		t.Fatalf("path: got=%q", iss[0].Path)
	}
}

func TestLoad_VariantBadArity(t *testing.T) {
	s := &serverConfig{}
	err := reflectable.Load(map[string]any{"endpoint": []any{int64(0)}}, s)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeInvalidLength {
		t.Fatalf("code: got=%q want=%q", iss[0].Code, reflectable.CodeInvalidLength)
	}
}

func TestLoad_VariantValueFailure(t *testing.T) {
	s := &serverConfig{}
	// Tag 0 selects the string alternative; a number cannot decode into it.
	err := reflectable.Load(map[string]any{"endpoint": []any{int64(0), int64(123)}}, s)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeInvalidType {
		t.Fatalf("code: got=%q want=%q", iss[0].Code, reflectable.CodeInvalidType)
	}
	if iss[0].Path != "/endpoint/1" {
		t.Fatalf("path: got=%q", iss[0].Path)
	}
	if got := s.Endpoint.VariantIndex(); got != 0 {
		t.Fatalf("failed decode touched the variant: index=%d", got)
	}
	if v, ok := s.Endpoint.First(); !ok || v != "" {
		t.Fatalf("first: got=%q ok=%v", v, ok)
	}
}

func TestLoad_MapFromPairs(t *testing.T) {
	s := &serverConfig{Weights: map[string]int{"stale": 99}}
	tree := map[string]any{
		"weights": []any{
			[]any{"a", int64(1)},
			[]any{"b", int64(2)},
		},
	}
	if err := reflectable.Load(tree, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s.Weights, map[string]int{"a": 1, "b": 2}) {
		t.Fatalf("weights: got=%v", s.Weights)
	}
}

func TestLoad_MapBadPairArity(t *testing.T) {
	s := &serverConfig{}
	err := reflectable.Load(map[string]any{"weights": []any{[]any{"a"}}}, s)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeInvalidLength {
		t.Fatalf("code: got=%q", iss[0].Code)
	}
	if iss[0].Path != "/weights/0" {
		t.Fatalf("path: got=%q", iss[0].Path)
	}
}

func TestLoad_SliceReplacesLength(t *testing.T) {
	s := &serverConfig{Tags: []string{"a", "b", "c"}}
	if err := reflectable.Load(map[string]any{"tags": []any{"x"}}, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s.Tags, []string{"x"}) {
		t.Fatalf("tags: got=%v", s.Tags)
	}
}

func TestLoad_SliceElementFailurePropagates(t *testing.T) {
	s := &serverConfig{}
	err := reflectable.Load(map[string]any{"tags": []any{"ok", int64(1)}}, s)
	iss := mustIssues(t, err)
	if iss[0].Path != "/tags/1" {
		t.Fatalf("path: got=%q", iss[0].Path)
	}
}

func TestLoad_FixedArrayLength(t *testing.T) {
	s := &serverConfig{}
	err := reflectable.Load(map[string]any{"shards": []any{int64(1), int64(2)}}, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Shards != [2]int{1, 2} {
		t.Fatalf("shards: got=%v", s.Shards)
	}

	err = reflectable.Load(map[string]any{"shards": []any{int64(1)}}, s)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeInvalidLength {
		t.Fatalf("code: got=%q", iss[0].Code)
	}
}

func TestLoad_IntOverflow(t *testing.T) {
	n := &narrow{}
	err := reflectable.Load(map[string]any{"small": int64(300)}, n)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeOverflow {
		t.Fatalf("code: got=%q want=%q", iss[0].Code, reflectable.CodeOverflow)
	}
}

func TestLoad_UintRejectsNegative(t *testing.T) {
	n := &narrow{}
	err := reflectable.Load(map[string]any{"wide": int64(-1)}, n)
	if err == nil {
		t.Fatalf("expected error for negative uint")
	}
}

func TestLoad_FractionalIntoInt(t *testing.T) {
	n := &narrow{}
	err := reflectable.Load(map[string]any{"small": 1.5}, n)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeInvalidType {
		t.Fatalf("code: got=%q", iss[0].Code)
	}
}

func TestLoad_HugeNumberLiteralOverflows(t *testing.T) {
	tm := newTwoMember()
	err := reflectable.Load(map[string]any{"foo": json.Number("1e999")}, tm)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeOverflow {
		t.Fatalf("int code: got=%q want=%q", iss[0].Code, reflectable.CodeOverflow)
	}
	err = reflectable.Load(map[string]any{"bar": json.Number("-1e999")}, tm)
	iss = mustIssues(t, err)
	if iss[0].Code != reflectable.CodeOverflow {
		t.Fatalf("float code: got=%q want=%q", iss[0].Code, reflectable.CodeOverflow)
	}
	if tm.Foo != 42 || tm.Bar != 1.1 {
		t.Fatalf("failed loads touched state: %+v", tm)
	}
}

// extremes carries full-width integer members.
type extremes struct {
	Big  int64
	UBig uint64
}

func (e *extremes) ReflectMembers(m *reflectable.Members) {
	m.Field("big", &e.Big)
	m.Field("ubig", &e.UBig)
}

func TestLoad_FullWidthIntegersExact(t *testing.T) {
	e := &extremes{}
	tree := map[string]any{
		"big":  json.Number("-9223372036854775808"),
		"ubig": json.Number("18446744073709551615"),
	}
	if err := reflectable.Load(tree, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Big != math.MinInt64 {
		t.Fatalf("big: got=%d", e.Big)
	}
	if e.UBig != math.MaxUint64 {
		t.Fatalf("ubig: got=%d", e.UBig)
	}
	tree["big"] = json.Number("9223372036854775807")
	if err := reflectable.Load(tree, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Big != math.MaxInt64 {
		t.Fatalf("big: got=%d", e.Big)
	}
}

func TestLoad_TimeAndDurationFromMicros(t *testing.T) {
	s := &serverConfig{}
	when := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	tree := map[string]any{
		"started": when.UnixMicro(),
		"timeout": int64(1500000),
	}
	if err := reflectable.Load(tree, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Started.Equal(when) {
		t.Fatalf("started: got=%v want=%v", s.Started, when)
	}
	if s.Timeout != 1500*time.Millisecond {
		t.Fatalf("timeout: got=%v", s.Timeout)
	}
}

func TestLoad_DurationMicrosOverflow(t *testing.T) {
	s := &serverConfig{Timeout: time.Second}
	for _, n := range []string{"9223372036854776", "-9223372036854776"} {
		err := reflectable.Load(map[string]any{"timeout": json.Number(n)}, s)
		iss := mustIssues(t, err)
		if iss[0].Code != reflectable.CodeOverflow {
			t.Fatalf("%s: code: got=%q want=%q", n, iss[0].Code, reflectable.CodeOverflow)
		}
		if iss[0].Path != "/timeout" {
			t.Fatalf("%s: path: got=%q", n, iss[0].Path)
		}
		if s.Timeout != time.Second {
			t.Fatalf("%s: failed load touched timeout: %v", n, s.Timeout)
		}
	}
	// The largest representable count still decodes.
	if err := reflectable.Load(map[string]any{"timeout": json.Number("9223372036854775")}, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Timeout != 9223372036854775*time.Microsecond {
		t.Fatalf("timeout: got=%v", s.Timeout)
	}
}

func TestLoad_TextFromString(t *testing.T) {
	s := &serverConfig{}
	if err := reflectable.Load(map[string]any{"origin": "10.0.0.1"}, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Origin != netip.MustParseAddr("10.0.0.1") {
		t.Fatalf("origin: got=%v", s.Origin)
	}
}

func TestLoad_TextParseFailure(t *testing.T) {
	s := &serverConfig{}
	err := reflectable.Load(map[string]any{"origin": "not-an-addr"}, s)
	iss := mustIssues(t, err)
	if iss[0].Code != reflectable.CodeParseError {
		t.Fatalf("code: got=%q", iss[0].Code)
	}
	if iss[0].Cause == nil {
		t.Fatalf("parse issue should carry its cause")
	}
}

func TestLoad_IgnoredMemberNotLoaded(t *testing.T) {
	s := &serverConfig{Secret: "keep"}
	if err := reflectable.Load(map[string]any{"secret": "swap"}, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Secret != "keep" {
		t.Fatalf("ignored member was loaded: %q", s.Secret)
	}
}

func TestLoad_MissingRequiredIsNotAnError(t *testing.T) {
	s := &serverConfig{}
	if err := reflectable.Load(map[string]any{}, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

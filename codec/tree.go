package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// normalizeTree converts decoder output into the tree shape: map[any]any
// becomes map[string]any recursively (YAML and CBOR both produce it for
// untyped maps). Non-string object keys are an error rather than a silent
// drop, since tree objects are keyed by member name.
func normalizeTree(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			nv, err := normalizeTree(vv)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("codec: non-string object key %v", k)
			}
			nv, err := normalizeTree(vv)
			if err != nil {
				return nil, err
			}
			out[ks] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i := range t {
			nv, err := normalizeTree(t[i])
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}

// denumberTree replaces json.Number scalars with native numerics so formats
// without a literal number form (YAML and CBOR marshal a Number as its
// underlying string) emit real numbers. Trees produced by Save contain no
// Numbers; this matters when converting a decoded tree across formats.
func denumberTree(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return u
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = denumberTree(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = denumberTree(t[i])
		}
		return out
	default:
		return v
	}
}


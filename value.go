package reflectable

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Tree values are plain Go data: map[string]any for objects, []any for
// arrays, string, bool, nil, and json.Number for numbers. Loads additionally
// accept native Go numeric types so hand-built trees and bridge-decoded
// trees behave the same.

// treeKind names the tree-level kind of v for diagnostics.
func treeKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// int64FromFloat accepts only integral values that fit int64 exactly.
func int64FromFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// 2^63 is exactly representable; math.MaxInt64 is not.
	if f < math.MinInt64 || f >= -float64(math.MinInt64) {
		return 0, false
	}
	return int64(f), true
}

func uint64FromFloat(f float64) (uint64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < 0 || f >= float64(1<<63)*2 {
		return 0, false
	}
	return uint64(f), true
}

// asInt64 coerces a tree number to int64 without loss.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64FromFloat(f)
		}
		return 0, false
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return asInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return int64FromFloat(float64(n))
	case float64:
		return int64FromFloat(n)
	}
	return 0, false
}

// asUint64 coerces a tree number to uint64 without loss.
func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case json.Number:
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return u, true
		}
		if f, err := n.Float64(); err == nil {
			return uint64FromFloat(f)
		}
		return 0, false
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int8:
		return asUint64(int64(n))
	case int16:
		return asUint64(int64(n))
	case int32:
		return asUint64(int64(n))
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case float32:
		return uint64FromFloat(float64(n))
	case float64:
		return uint64FromFloat(n)
	}
	return 0, false
}

// numberOutOfRange reports whether v is a numeric literal the coercions
// reject only because it exceeds the float64 range.
func numberOutOfRange(v any) bool {
	n, ok := v.(json.Number)
	if !ok {
		return false
	}
	_, err := n.Float64()
	return errors.Is(err, strconv.ErrRange)
}

// asFloat64 coerces a tree number to float64.
func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

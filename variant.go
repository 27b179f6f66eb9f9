package reflectable

import "reflect"

// Variant is the contract for tagged-union member types. A variant holds
// exactly one value drawn from a fixed, ordered list of alternatives and
// travels as a two-element array [active_index, encoded_value]; the index is
// positional, so reordering alternatives is a wire-breaking change.
//
// OneOf2 and OneOf3 cover the common arities; custom union types may
// implement the interface directly.
type Variant interface {
	// VariantTypes returns the alternative types in declaration order. It
	// must work on a zero value and always return the same list.
	VariantTypes() []reflect.Type
	// VariantIndex returns the index of the active alternative.
	VariantIndex() int
	// VariantValue returns the active value; nil stands for the zero value
	// of the active alternative.
	VariantValue() any
	// SetVariant selects the alternative at index and stores value,
	// reporting whether the pair was acceptable.
	SetVariant(index int, value any) bool
}

// OneOf2 is a two-alternative variant. The zero value holds the zero value
// of A at index 0.
type OneOf2[A, B any] struct {
	idx int
	val any
}

func altTypes2[A, B any]() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf((*A)(nil)).Elem(),
		reflect.TypeOf((*B)(nil)).Elem(),
	}
}

func (o *OneOf2[A, B]) VariantTypes() []reflect.Type { return altTypes2[A, B]() }
func (o *OneOf2[A, B]) VariantIndex() int            { return o.idx }
func (o *OneOf2[A, B]) VariantValue() any            { return o.val }

func (o *OneOf2[A, B]) SetVariant(index int, value any) bool {
	return setVariant(&o.idx, &o.val, altTypes2[A, B](), index, value)
}

// First returns the A alternative and whether it is active.
func (o *OneOf2[A, B]) First() (A, bool) {
	if o.idx != 0 {
		var zero A
		return zero, false
	}
	if o.val == nil {
		var zero A
		return zero, true
	}
	return o.val.(A), true
}

// Second returns the B alternative and whether it is active.
func (o *OneOf2[A, B]) Second() (B, bool) {
	if o.idx != 1 {
		var zero B
		return zero, false
	}
	if o.val == nil {
		var zero B
		return zero, true
	}
	return o.val.(B), true
}

// SetFirst activates the A alternative.
func (o *OneOf2[A, B]) SetFirst(v A) { o.idx, o.val = 0, v }

// SetSecond activates the B alternative.
func (o *OneOf2[A, B]) SetSecond(v B) { o.idx, o.val = 1, v }

// OneOf3 is a three-alternative variant. The zero value holds the zero
// value of A at index 0.
type OneOf3[A, B, C any] struct {
	idx int
	val any
}

func altTypes3[A, B, C any]() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf((*A)(nil)).Elem(),
		reflect.TypeOf((*B)(nil)).Elem(),
		reflect.TypeOf((*C)(nil)).Elem(),
	}
}

func (o *OneOf3[A, B, C]) VariantTypes() []reflect.Type { return altTypes3[A, B, C]() }
func (o *OneOf3[A, B, C]) VariantIndex() int            { return o.idx }
func (o *OneOf3[A, B, C]) VariantValue() any            { return o.val }

func (o *OneOf3[A, B, C]) SetVariant(index int, value any) bool {
	return setVariant(&o.idx, &o.val, altTypes3[A, B, C](), index, value)
}

// First returns the A alternative and whether it is active.
func (o *OneOf3[A, B, C]) First() (A, bool) {
	if o.idx != 0 {
		var zero A
		return zero, false
	}
	if o.val == nil {
		var zero A
		return zero, true
	}
	return o.val.(A), true
}

// Second returns the B alternative and whether it is active.
func (o *OneOf3[A, B, C]) Second() (B, bool) {
	if o.idx != 1 {
		var zero B
		return zero, false
	}
	if o.val == nil {
		var zero B
		return zero, true
	}
	return o.val.(B), true
}

// Third returns the C alternative and whether it is active.
func (o *OneOf3[A, B, C]) Third() (C, bool) {
	if o.idx != 2 {
		var zero C
		return zero, false
	}
	if o.val == nil {
		var zero C
		return zero, true
	}
	return o.val.(C), true
}

// SetFirst activates the A alternative.
func (o *OneOf3[A, B, C]) SetFirst(v A) { o.idx, o.val = 0, v }

// SetSecond activates the B alternative.
func (o *OneOf3[A, B, C]) SetSecond(v B) { o.idx, o.val = 1, v }

// SetThird activates the C alternative.
func (o *OneOf3[A, B, C]) SetThird(v C) { o.idx, o.val = 2, v }

func setVariant(idx *int, val *any, alts []reflect.Type, index int, value any) bool {
	if index < 0 || index >= len(alts) {
		return false
	}
	if value == nil {
		*idx, *val = index, reflect.Zero(alts[index]).Interface()
		return true
	}
	if !reflect.TypeOf(value).AssignableTo(alts[index]) {
		return false
	}
	*idx, *val = index, value
	return true
}

package reflectable

// Pair is a two-element tuple. Like any plain struct it encodes
// positionally, as [first, second].
type Pair[A, B any] struct {
	First  A
	Second B
}

// MakePair builds a Pair.
func MakePair[A, B any](first A, second B) Pair[A, B] {
	return Pair[A, B]{First: first, Second: second}
}

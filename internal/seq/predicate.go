package seq

import "github.com/roach88/kindseq/internal/ir"

// Predicate tests one kind. Predicates must be pure: the same kind always
// yields the same answer.
type Predicate func(ir.Kind) bool

// Always matches every kind.
func Always(ir.Kind) bool { return true }

// Never matches no kind.
func Never(ir.Kind) bool { return false }

// IsInstance reports whether k is a sequence with container c.
func IsInstance(k ir.Kind, c ir.Container) bool {
	s, ok := k.(ir.Sequence)
	return ok && s.Container() == c
}

// InstanceOf returns a predicate matching sequences with container c.
func InstanceOf(c ir.Container) Predicate {
	return func(k ir.Kind) bool {
		return IsInstance(k, c)
	}
}

// Is returns a predicate matching kinds structurally equal to want.
func Is(want ir.Kind) Predicate {
	return func(k ir.Kind) bool {
		return ir.Equal(k, want)
	}
}

// Not negates pred.
func Not(pred Predicate) Predicate {
	return func(k ir.Kind) bool {
		return !pred(k)
	}
}

// SizeOf returns the byte size of an atom, or the sum of the sizes of a
// sequence's kinds.
func SizeOf(k ir.Kind) int64 {
	switch v := k.(type) {
	case ir.Atom:
		return v.Size
	case ir.Sequence:
		var total int64
		for i := range v.Len() {
			total += SizeOf(v.Index(i))
		}
		return total
	default:
		return 0
	}
}

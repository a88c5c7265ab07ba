package seq

import (
	"fmt"

	"github.com/roach88/kindseq/internal/index"
	"github.com/roach88/kindseq/internal/ir"
)

// Range returns Order(s, Arithmetic(start, end, step)). The first and last
// positions are checked against s before any index is materialized.
func Range(s ir.Sequence, start, end, step int) (ir.Sequence, error) {
	n, err := index.ArithmeticLen(start, end, step)
	if err != nil {
		return ir.Sequence{}, fmt.Errorf("range: %w", err)
	}
	if n == 0 {
		return ir.Empty(s.Container()), nil
	}
	size := s.Len()
	// Positions are distinct, so more of them than slots cannot all fit.
	if n > uint64(size) {
		return ir.Sequence{}, ir.NewContractError(ir.ErrCodeOutOfBounds, "range",
			"start=%d end=%d step=%d emits %d positions, %s has %d", start, end, step, n, s, size)
	}
	last := start + int(n-1)*step
	if start < 0 || start >= size || last < 0 || last >= size {
		return ir.Sequence{}, ir.NewContractError(ir.ErrCodeOutOfBounds, "range",
			"positions %d..%d outside [0, %d) of %s", start, last, size, s)
	}
	idx, err := index.Arithmetic(start, end, step)
	if err != nil {
		return ir.Sequence{}, fmt.Errorf("range: %w", err)
	}
	return Order(s, idx)
}

// RangeStep1 returns the kinds at positions [start, end) of s.
func RangeStep1(s ir.Sequence, start, end int) (ir.Sequence, error) {
	return Range(s, start, end, 1)
}

// Take returns the first n kinds. n must be in [0, Size(s)].
func Take(s ir.Sequence, n int) (ir.Sequence, error) {
	if err := checkCount("take", s, n); err != nil {
		return ir.Sequence{}, err
	}
	return RangeStep1(s, 0, n)
}

// Drop returns s without its first n kinds. n must be in [0, Size(s)].
func Drop(s ir.Sequence, n int) (ir.Sequence, error) {
	if err := checkCount("drop", s, n); err != nil {
		return ir.Sequence{}, err
	}
	return RangeStep1(s, n, s.Len())
}

// Reverse returns the kinds of s in reverse order. Reverse is involutive.
func Reverse(s ir.Sequence) (ir.Sequence, error) {
	return Range(s, s.Len()-1, -1, -1)
}

// Repeat returns a sequence of container c holding k n times.
// n == 0 yields the empty sequence; n < 0 is NEGATIVE_COUNT.
func Repeat(k ir.Kind, n int, c ir.Container) (ir.Sequence, error) {
	idx, err := index.Repeat(0, n)
	if err != nil {
		return ir.Sequence{}, err
	}
	return Order(ir.NewSequence(c, k), idx)
}

// PushBack appends k after the last slot.
func PushBack(s ir.Sequence, k ir.Kind) ir.Sequence {
	return ir.NewSequence(s.Container(), append(s.Kinds(), k)...)
}

// PushFront inserts k before the first slot.
func PushFront(s ir.Sequence, k ir.Kind) ir.Sequence {
	kinds := make([]ir.Kind, 0, s.Len()+1)
	kinds = append(kinds, k)
	kinds = append(kinds, s.Kinds()...)
	return ir.NewSequence(s.Container(), kinds...)
}

// PopBack removes the last slot. Returns EMPTY_SEQUENCE when s is empty.
func PopBack(s ir.Sequence) (ir.Sequence, error) {
	if s.Len() == 0 {
		return ir.Sequence{}, emptyError("pop_back", s)
	}
	return RangeStep1(s, 0, s.Len()-1)
}

// PopFront removes the first slot. Returns EMPTY_SEQUENCE when s is empty.
func PopFront(s ir.Sequence) (ir.Sequence, error) {
	if s.Len() == 0 {
		return ir.Sequence{}, emptyError("pop_front", s)
	}
	return ir.NewSequence(s.Container(), s.Kinds()[1:]...), nil
}

// Select keeps the kinds whose mask flag is set, preserving order.
// The mask must have exactly Size(s) flags (MASK_LENGTH otherwise).
func Select(s ir.Sequence, mask index.Mask) (ir.Sequence, error) {
	idx, err := index.MaskFilterLen(mask, s.Len())
	if err != nil {
		return ir.Sequence{}, err
	}
	return Order(s, idx)
}

// Filter keeps the kinds satisfying pred, preserving order. pred is
// evaluated once per kind, independently.
func Filter(s ir.Sequence, pred Predicate) (ir.Sequence, error) {
	return Select(s, MaskOf(s, pred))
}

// MaskOf evaluates pred on every kind of s.
func MaskOf(s ir.Sequence, pred Predicate) index.Mask {
	flags := make([]bool, s.Len())
	for i := range flags {
		flags[i] = pred(s.Index(i))
	}
	return index.MaskOf(flags...)
}

// Concat merges the operands left to right. The result holds every kind of
// every operand, under the container of the first operand. Concatenating a
// single sequence returns it unchanged; with no operands the result is the
// empty type_list.
func Concat(seqs ...ir.Sequence) ir.Sequence {
	if len(seqs) == 0 {
		return ir.Empty(ir.TypeList)
	}
	total := 0
	for _, s := range seqs {
		total += s.Len()
	}
	kinds := make([]ir.Kind, 0, total)
	for _, s := range seqs {
		kinds = append(kinds, s.Kinds()...)
	}
	return ir.NewSequence(seqs[0].Container(), kinds...)
}

// Append is Concat(s, sequence of kinds) under s's container.
func Append(s ir.Sequence, kinds ...ir.Kind) ir.Sequence {
	return Concat(s, ir.NewSequence(s.Container(), kinds...))
}

// Join flattens one level: every kind of s must itself be a sequence
// (NOT_A_SEQUENCE otherwise). The result carries s's container.
func Join(s ir.Sequence) (ir.Sequence, error) {
	parts := make([]ir.Sequence, 0, s.Len()+1)
	parts = append(parts, ir.Empty(s.Container()))
	for i := range s.Len() {
		inner, err := ir.AsSequence("join", s.Index(i))
		if err != nil {
			return ir.Sequence{}, err
		}
		parts = append(parts, inner)
	}
	return Concat(parts...), nil
}

// To re-tags s with container c, keeping kinds and order.
func To(s ir.Sequence, c ir.Container) ir.Sequence {
	return ir.NewSequence(c, s.Kinds()...)
}

func checkCount(op string, s ir.Sequence, n int) error {
	if n < 0 || n > s.Len() {
		return ir.NewContractError(ir.ErrCodeOutOfBounds, op,
			"count %d outside [0, %d] of %s", n, s.Len(), s)
	}
	return nil
}

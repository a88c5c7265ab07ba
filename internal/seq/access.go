package seq

import (
	"github.com/roach88/kindseq/internal/index"
	"github.com/roach88/kindseq/internal/ir"
)

// Size returns the number of slots of s.
func Size(s ir.Sequence) int {
	return s.Len()
}

// Head returns the first kind of s.
// Returns EMPTY_SEQUENCE when s is empty.
func Head(s ir.Sequence) (ir.Kind, error) {
	if s.Len() == 0 {
		return nil, emptyError("head", s)
	}
	return s.Index(0), nil
}

// Tail returns s without its first kind, keeping the container.
// Returns EMPTY_SEQUENCE when s is empty.
func Tail(s ir.Sequence) (ir.Sequence, error) {
	if s.Len() == 0 {
		return ir.Sequence{}, emptyError("tail", s)
	}
	return ir.NewSequence(s.Container(), s.Kinds()[1:]...), nil
}

// At returns the kind at position i. Valid only for 0 <= i < Size(s);
// anything else is OUT_OF_BOUNDS, never a wraparound.
func At(s ir.Sequence, i int) (ir.Kind, error) {
	if i < 0 || i >= s.Len() {
		return nil, ir.NewContractError(ir.ErrCodeOutOfBounds, "at",
			"index %d outside [0, %d) of %s", i, s.Len(), s)
	}
	return s.Index(i), nil
}

// AtNormalized is At with support for negative positions counted from the
// end: i in [-Size(s), Size(s)-1] maps to (i + Size(s)) mod Size(s).
// AtNormalized(s, -1) is the last kind.
func AtNormalized(s ir.Sequence, i int) (ir.Kind, error) {
	n := s.Len()
	if n == 0 {
		return nil, emptyError("at", s)
	}
	if i < -n || i >= n {
		return nil, ir.NewContractError(ir.ErrCodeOutOfBounds, "at",
			"index %d outside [%d, %d) of %s", i, -n, n, s)
	}
	return At(s, (i+n)%n)
}

// Order builds a new sequence by gathering At(s, i) for every i in idx, in
// order. The result has len(idx) slots and s's container. Duplicates and
// omissions in idx are legal; negative or too large entries are
// OUT_OF_BOUNDS.
func Order(s ir.Sequence, idx index.Seq) (ir.Sequence, error) {
	kinds := make([]ir.Kind, len(idx))
	for j, i := range idx {
		k, err := At(s, i)
		if err != nil {
			return ir.Sequence{}, err
		}
		kinds[j] = k
	}
	return ir.NewSequence(s.Container(), kinds...), nil
}

func emptyError(op string, s ir.Sequence) error {
	return ir.NewContractError(ir.ErrCodeEmptySequence, op, "%s is empty", s)
}

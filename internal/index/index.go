package index

import (
	"github.com/roach88/kindseq/internal/ir"
)

// Seq is an ordered list of positions.
type Seq []int

// Len returns the number of positions.
func (s Seq) Len() int {
	return len(s)
}

// MaxLen is the longest index sequence a generator will materialize.
// Longer requests fail with LENGTH_LIMIT instead of allocating.
const MaxLen = 1 << 24

// Arithmetic emits start, start+step, start+2*step, ... and stops when the
// running value equals end. start == end yields the empty sequence for any
// step.
//
// Returns NON_TERMINATING when repeated addition of step can never land on
// end: a zero step, a step whose sign disagrees with end-start, or a
// distance that is not a whole multiple of step.
func Arithmetic(start, end, step int) (Seq, error) {
	n, err := ArithmeticLen(start, end, step)
	if err != nil {
		return nil, err
	}
	if n > MaxLen {
		return nil, ir.NewContractError(ir.ErrCodeLengthLimit, "arithmetic",
			"start=%d end=%d step=%d emits %d positions, limit is %d", start, end, step, n, MaxLen)
	}

	out := make(Seq, int(n))
	for i := range out {
		out[i] = start + i*step
	}
	return out, nil
}

// ArithmeticLen returns how many positions Arithmetic(start, end, step)
// emits, without materializing them. It fails exactly when Arithmetic
// reports NON_TERMINATING.
func ArithmeticLen(start, end, step int) (uint64, error) {
	if start == end {
		return 0, nil
	}
	if step == 0 || (end > start) != (step > 0) {
		return 0, nonTerminating(start, end, step)
	}

	// Magnitudes in uint64 so that end-start cannot overflow.
	var distance, stride uint64
	if end > start {
		distance, stride = uint64(end)-uint64(start), uint64(step)
	} else {
		distance, stride = uint64(start)-uint64(end), uint64(0)-uint64(step)
	}
	if distance%stride != 0 {
		return 0, nonTerminating(start, end, step)
	}
	return distance / stride, nil
}

func nonTerminating(start, end, step int) error {
	return ir.NewContractError(ir.ErrCodeNonTerminating, "arithmetic",
		"start=%d end=%d step=%d never reaches end", start, end, step)
}

// Repeat emits value count times. count == 0 yields the empty sequence.
// A count above MaxLen is LENGTH_LIMIT.
func Repeat(value, count int) (Seq, error) {
	if count < 0 {
		return nil, ir.NewContractError(ir.ErrCodeNegativeCount, "repeat",
			"count %d must be >= 0", count)
	}
	if count > MaxLen {
		return nil, ir.NewContractError(ir.ErrCodeLengthLimit, "repeat",
			"count %d exceeds limit %d", count, MaxLen)
	}
	out := make(Seq, count)
	for i := range out {
		out[i] = value
	}
	return out, nil
}

// MaskFilter emits the increasing positions i where mask bit i is set,
// scanning from position 0.
func MaskFilter(mask Mask) Seq {
	if mask.bits == nil {
		return Seq{}
	}
	out := make(Seq, 0, mask.Count())
	for i, ok := mask.bits.NextSet(0); ok && i < mask.n; i, ok = mask.bits.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// MaskFilterLen is MaskFilter for a mask that must cover exactly n elements.
// Returns MASK_LENGTH when mask.Len() != n.
func MaskFilterLen(mask Mask, n int) (Seq, error) {
	if mask.Len() != n {
		return nil, ir.NewContractError(ir.ErrCodeMaskLength, "mask_filter",
			"mask length %d does not match %d elements", mask.Len(), n)
	}
	return MaskFilter(mask), nil
}

package index

import (
	"github.com/bits-and-blooms/bitset"
)

// Mask is a Boolean Mask of fixed length: one flag per source element.
// The zero value is the empty mask.
//
// Masks are values: Set returns a new Mask and never modifies the receiver.
type Mask struct {
	bits *bitset.BitSet
	n    uint
}

// NewMask returns an all-false mask of length n.
func NewMask(n int) Mask {
	return Mask{bits: bitset.New(uint(n)), n: uint(n)}
}

// MaskOf builds a mask from explicit flags.
func MaskOf(flags ...bool) Mask {
	m := NewMask(len(flags))
	for i, f := range flags {
		if f {
			m.bits.Set(uint(i))
		}
	}
	return m
}

// Len returns the number of flags.
func (m Mask) Len() int {
	return int(m.n)
}

// Test reports whether flag i is set. Out-of-range positions are false.
func (m Mask) Test(i int) bool {
	if m.bits == nil || i < 0 || uint(i) >= m.n {
		return false
	}
	return m.bits.Test(uint(i))
}

// Count returns the number of set flags.
func (m Mask) Count() int {
	if m.bits == nil {
		return 0
	}
	return int(m.bits.Count())
}

// Set returns a copy of m with flag i set to v.
// It panics when i is outside [0, Len()).
func (m Mask) Set(i int, v bool) Mask {
	if i < 0 || uint(i) >= m.n {
		panic("index: mask position out of range")
	}
	out := Mask{bits: m.bits.Clone(), n: m.n}
	out.bits.SetTo(uint(i), v)
	return out
}

// Bools returns the flags as a slice.
func (m Mask) Bools() []bool {
	out := make([]bool, m.n)
	for i := range out {
		out[i] = m.Test(i)
	}
	return out
}

package testutil

import (
	"math/rand/v2"

	"github.com/roach88/kindseq/internal/ir"
)

// Fixture atoms with the byte sizes of the usual 64-bit data model.
var (
	Int    = ir.NewAtom("int", 4)
	Double = ir.NewAtom("double", 8)
	Char   = ir.NewAtom("char", 1)
	Long   = ir.NewAtom("long", 8)
	Short  = ir.NewAtom("short", 2)
	Bool   = ir.NewAtom("bool", 1)
)

// Atoms lists every fixture atom.
var Atoms = []ir.Atom{Int, Double, Char, Long, Short, Bool}

// Containers used by RandomSequence.
var Containers = []ir.Container{ir.TypeList, ir.Tuple, ir.Variant}

// NewRand returns a deterministic source for property tests.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomSequence builds a sequence of up to maxLen fixture atoms under a
// random container. One slot in four is a nested sequence while depth > 0.
func RandomSequence(r *rand.Rand, maxLen, depth int) ir.Sequence {
	n := r.IntN(maxLen + 1)
	kinds := make([]ir.Kind, n)
	for i := range kinds {
		if depth > 0 && r.IntN(4) == 0 {
			kinds[i] = RandomSequence(r, maxLen/2, depth-1)
			continue
		}
		kinds[i] = Atoms[r.IntN(len(Atoms))]
	}
	return ir.NewSequence(Containers[r.IntN(len(Containers))], kinds...)
}

package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/index"
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/testutil"
)

const propertyRounds = 200

func forEachRandomSequence(t *testing.T, fn func(t *testing.T, s ir.Sequence)) {
	t.Helper()
	r := testutil.NewRand(42)
	for range propertyRounds {
		s := testutil.RandomSequence(r, 8, 2)
		fn(t, s)
	}
}

func TestPropertyReverseInvolutive(t *testing.T) {
	forEachRandomSequence(t, func(t *testing.T, s ir.Sequence) {
		once, err := Reverse(s)
		require.NoError(t, err)
		twice, err := Reverse(once)
		require.NoError(t, err)
		assert.True(t, ir.Equal(s, twice), "reverse(reverse(%s)) = %s", s, twice)
	})
}

func TestPropertyConcatEmptyIdentity(t *testing.T) {
	forEachRandomSequence(t, func(t *testing.T, s ir.Sequence) {
		empty := ir.Empty(s.Container())
		assert.True(t, ir.Equal(s, Concat(s, empty)))
		assert.True(t, ir.Equal(s, Concat(empty, s)))
	})
}

func TestPropertyTakeDropConcat(t *testing.T) {
	forEachRandomSequence(t, func(t *testing.T, s ir.Sequence) {
		for n := 0; n <= Size(s); n++ {
			front, err := Take(s, n)
			require.NoError(t, err)
			back, err := Drop(s, n)
			require.NoError(t, err)
			assert.True(t, ir.Equal(s, Concat(front, back)), "split %s at %d", s, n)
		}
	})
}

func TestPropertyIdentityOrder(t *testing.T) {
	forEachRandomSequence(t, func(t *testing.T, s ir.Sequence) {
		idx, err := index.Arithmetic(0, Size(s), 1)
		require.NoError(t, err)
		got, err := Order(s, idx)
		require.NoError(t, err)
		assert.True(t, ir.Equal(s, got))
	})
}

func TestPropertyFilterConstants(t *testing.T) {
	forEachRandomSequence(t, func(t *testing.T, s ir.Sequence) {
		all, err := Filter(s, Always)
		require.NoError(t, err)
		assert.True(t, ir.Equal(s, all))

		none, err := Filter(s, Never)
		require.NoError(t, err)
		assert.True(t, ir.Equal(ir.Empty(s.Container()), none))
	})
}

func TestPropertyFoldIgnoringElements(t *testing.T) {
	seed := ir.NewAtom("seed", 0)
	forEachRandomSequence(t, func(t *testing.T, s ir.Sequence) {
		got, err := Fold(s, seed, func(acc, _ ir.Kind) Mapped { return Resolved(acc) })
		require.NoError(t, err)
		assert.Equal(t, seed, got)
	})
}

func TestPropertyLastElement(t *testing.T) {
	forEachRandomSequence(t, func(t *testing.T, s ir.Sequence) {
		if Size(s) == 0 {
			return
		}
		last, err := AtNormalized(s, -1)
		require.NoError(t, err)
		want, err := At(s, Size(s)-1)
		require.NoError(t, err)
		assert.True(t, ir.Equal(want, last))
	})
}

func TestPropertyDeterministic(t *testing.T) {
	forEachRandomSequence(t, func(t *testing.T, s ir.Sequence) {
		a, err := Reverse(s)
		require.NoError(t, err)
		b, err := Reverse(s)
		require.NoError(t, err)
		assert.Equal(t, ir.MustKindHash(a), ir.MustKindHash(b))
	})
}

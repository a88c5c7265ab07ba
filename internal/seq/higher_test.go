package seq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/ir"
)

func pointerTo(k ir.Kind) Mapped {
	return Deferred(func() (ir.Kind, error) {
		return ir.NewAtom("*"+k.String(), 8), nil
	})
}

func wrapTuple(k ir.Kind) Mapped {
	return Resolved(ir.NewSequence(ir.Tuple, k))
}

func TestTransformResolved(t *testing.T) {
	s := ir.NewSequence(ir.Variant, Int, Char)

	got, err := Transform(s, wrapTuple)
	requireSeq(t, ir.NewSequence(ir.Variant, ir.NewSequence(ir.Tuple, Int), ir.NewSequence(ir.Tuple, Char)), got, err)
}

func TestTransformDeferredIsUnwrapped(t *testing.T) {
	s := ir.List(Int, Char)

	got, err := Transform(s, pointerTo)
	requireSeq(t, ir.List(ir.NewAtom("*int", 8), ir.NewAtom("*char", 8)), got, err)
}

func TestTransformRejectsMixedModes(t *testing.T) {
	s := ir.List(Int, Char)
	mixed := func(k ir.Kind) Mapped {
		if ir.Equal(k, Int) {
			return pointerTo(k)
		}
		return Resolved(k)
	}

	_, err := Transform(s, mixed)
	require.Error(t, err)
	assert.True(t, ir.IsContractError(err, ir.ErrCodeMixedModes))
}

func TestTransformEmpty(t *testing.T) {
	got, err := Transform(ir.Empty(ir.Tuple), pointerTo)
	requireSeq(t, ir.Empty(ir.Tuple), got, err)
}

func TestTransformPropagatesThunkError(t *testing.T) {
	boom := errors.New("boom")
	failing := func(ir.Kind) Mapped {
		return Deferred(func() (ir.Kind, error) { return nil, boom })
	}

	_, err := Transform(ir.List(Int), failing)
	assert.ErrorIs(t, err, boom)
}

func TestFold(t *testing.T) {
	s := ir.List(Int, Double, Char)
	collect := func(acc, k ir.Kind) Mapped {
		return Resolved(PushBack(acc.(ir.Sequence), k))
	}

	got, err := Fold(s, ir.Empty(ir.Tuple), collect)
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.NewSequence(ir.Tuple, Int, Double, Char), got))
}

func TestFoldIsLeftToRight(t *testing.T) {
	s := ir.List(Int, Double, Char)
	var seen []string
	record := func(acc, k ir.Kind) Mapped {
		seen = append(seen, k.String())
		return Resolved(k)
	}

	got, err := Fold(s, Long, record)
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "double", "char"}, seen)
	assert.Equal(t, Char, got)
}

func TestFoldEmptyYieldsSeed(t *testing.T) {
	got, err := Fold(ir.Empty(ir.TypeList), Long, func(ir.Kind, ir.Kind) Mapped {
		t.Fatal("folder must not be called")
		return Mapped{}
	})
	require.NoError(t, err)
	assert.Equal(t, Long, got)
}

func TestFoldModesPerStep(t *testing.T) {
	// Deferred on atoms wider than 4 bytes, resolved otherwise.
	larger := func(acc, k ir.Kind) Mapped {
		if SizeOf(k) > SizeOf(acc) {
			return Deferred(func() (ir.Kind, error) { return k, nil })
		}
		return Resolved(acc)
	}

	got, err := Fold(ir.List(Char, Int, Short, Double), Char, larger)
	require.NoError(t, err)
	assert.Equal(t, Double, got)
}

func TestMappedResolveEmpty(t *testing.T) {
	_, err := Mapped{}.Resolve()
	assert.Error(t, err)

	_, err = Deferred(func() (ir.Kind, error) { return nil, nil }).Resolve()
	assert.Error(t, err)
}

func TestAggregates(t *testing.T) {
	s := ir.List(Int, Double, Char)
	wide := func(k ir.Kind) bool { return SizeOf(k) >= 4 }

	assert.False(t, AllOf(s, wide))
	assert.True(t, AnyOf(s, wide))
	assert.False(t, NoneOf(s, wide))
	assert.Equal(t, 2, CountIf(s, wide))

	assert.True(t, AllOf(s, Always))
	assert.True(t, NoneOf(s, Never))
}

func TestAggregatesEmpty(t *testing.T) {
	empty := ir.Empty(ir.TypeList)

	assert.True(t, AllOf(empty, Never))
	assert.False(t, AnyOf(empty, Always))
	assert.True(t, NoneOf(empty, Always))
	assert.Equal(t, 0, CountIf(empty, Always))
}

func TestCount(t *testing.T) {
	s := ir.List(Int, Double, Int, ir.List(Int))
	assert.Equal(t, 2, Count(s, Int))
	assert.Equal(t, 1, Count(s, ir.List(Int)))
	assert.Equal(t, 0, Count(s, Char))
}

func TestPredicates(t *testing.T) {
	tuple := ir.NewSequence(ir.Tuple, Int)

	assert.True(t, IsInstance(tuple, ir.Tuple))
	assert.False(t, IsInstance(tuple, ir.TypeList))
	assert.False(t, IsInstance(Int, ir.Tuple), "atoms are never instances")

	assert.True(t, Is(Int)(Int))
	assert.False(t, Is(Int)(Long))
	assert.True(t, Not(Is(Int))(Long))

	assert.Equal(t, int64(13), SizeOf(ir.List(Int, ir.NewSequence(ir.Tuple, Double, Char))))
	assert.Equal(t, int64(0), SizeOf(ir.Empty(ir.Tuple)))
}

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHashDeterminism(t *testing.T) {
	a := List(NewAtom("int", 4), NewAtom("double", 8))
	b := List(NewAtom("int", 4), NewAtom("double", 8))

	h1, err := KindHash(a)
	require.NoError(t, err)
	h2, err := KindHash(b)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "structurally equal kinds must hash equal")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestKindHashDistinguishesContainer(t *testing.T) {
	kinds := []Kind{NewAtom("int", 4)}

	assert.NotEqual(t,
		MustKindHash(NewSequence(TypeList, kinds...)),
		MustKindHash(NewSequence(Tuple, kinds...)),
		"same kinds under different containers are distinct")
}

func TestKindHashDistinguishesOrder(t *testing.T) {
	i, d := NewAtom("int", 4), NewAtom("double", 8)
	assert.NotEqual(t, MustKindHash(List(i, d)), MustKindHash(List(d, i)))
}

func TestPipelineKeyIndependentOfMapOrder(t *testing.T) {
	a := map[string]any{
		"input": EncodeKind(List(NewAtom("int", 4))),
		"steps": []any{map[string]any{"op": "take", "n": int64(1)}},
	}
	b := map[string]any{
		"steps": []any{map[string]any{"n": int64(1), "op": "take"}},
		"input": EncodeKind(List(NewAtom("int", 4))),
	}

	ka, err := PipelineKey(a)
	require.NoError(t, err)
	kb, err := PipelineKey(b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
}

func TestPipelineKeyDomainSeparated(t *testing.T) {
	s := List(NewAtom("int", 4))
	key, err := PipelineKey(EncodeKind(s))
	require.NoError(t, err)
	assert.NotEqual(t, MustKindHash(s), key, "kind and pipeline domains must not collide")
}

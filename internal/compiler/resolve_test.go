package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/ir"
)

func testProgram() *ir.Program {
	return &ir.Program{
		Kinds: map[string]ir.Atom{
			"int":  ir.NewAtom("int", 4),
			"char": ir.NewAtom("char", 1),
		},
		Sequences: map[string]ir.SequenceDecl{
			"Inner": {Name: "Inner", Container: ir.TypeList, Kinds: []string{"char"}},
			"Outer": {Name: "Outer", Container: ir.Tuple, Kinds: []string{"int", "Inner", "Inner"}},
			"Empty": {Name: "Empty", Container: ir.Variant, Kinds: []string{}},
		},
	}
}

func TestResolverNested(t *testing.T) {
	r := NewResolver(testProgram())

	s, err := r.Sequence("Outer")
	require.NoError(t, err)
	assert.Equal(t, "tuple<int, type_list<char>, type_list<char>>", s.String())

	e, err := r.Sequence("Empty")
	require.NoError(t, err)
	assert.Equal(t, 0, e.Len())
	assert.Equal(t, ir.Variant, e.Container())
}

func TestResolverKinds(t *testing.T) {
	r := NewResolver(testProgram())

	ks, err := r.Kinds([]string{"char", "Inner"})
	require.NoError(t, err)
	require.Len(t, ks, 2)
	assert.Equal(t, ir.NewAtom("char", 1), ks[0])
	assert.Equal(t, "type_list<char>", ks[1].String())

	_, err = r.Sequence("int")
	assert.True(t, ir.IsContractError(err, ir.ErrCodeNotASequence))
}

func TestResolverUnknown(t *testing.T) {
	prog := testProgram()
	prog.Sequences["Bad"] = ir.SequenceDecl{Name: "Bad", Container: ir.TypeList, Kinds: []string{"nope"}}
	r := NewResolver(prog)

	_, err := r.Kind("Bad")
	var uerr *UnknownRefError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "nope", uerr.Name)
}

func TestResolverCycle(t *testing.T) {
	prog := testProgram()
	prog.Sequences["A"] = ir.SequenceDecl{Name: "A", Container: ir.TypeList, Kinds: []string{"int", "B"}}
	prog.Sequences["B"] = ir.SequenceDecl{Name: "B", Container: ir.TypeList, Kinds: []string{"A"}}
	r := NewResolver(prog)

	_, err := r.Kind("A")
	var cerr *CycleRefError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, []string{"A", "B", "A"}, cerr.Path)

	// The failed attempt leaves the resolver usable.
	s, err := r.Sequence("Outer")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

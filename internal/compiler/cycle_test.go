package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/ir"
)

func seqProgram(decls map[string][]string) *ir.Program {
	prog := &ir.Program{
		Kinds:     map[string]ir.Atom{"int": ir.NewAtom("int", 4)},
		Sequences: map[string]ir.SequenceDecl{},
	}
	for name, refs := range decls {
		prog.Sequences[name] = ir.SequenceDecl{Name: name, Container: ir.TypeList, Kinds: refs}
	}
	return prog
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(&ir.Program{}))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	prog := seqProgram(map[string][]string{
		"A": {"B", "C", "int"},
		"B": {"C"},
		"C": {"int"},
	})
	assert.Empty(t, AnalyzeCycles(prog), "DAG should produce no cycles")
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	prog := seqProgram(map[string][]string{
		"A": {"int", "A"},
	})

	cycles := AnalyzeCycles(prog)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "A"}, cycles[0].Path)
	assert.Contains(t, cycles[0].Message, "contains itself")
}

func TestAnalyzeCycles_ThreeNode(t *testing.T) {
	prog := seqProgram(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A", "int"},
		"D": {"A"},
	})

	cycles := AnalyzeCycles(prog)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycles[0].Path)
	assert.Equal(t, "sequence reference cycle: A → B → C → A", cycles[0].Message)
}

func TestAnalyzeCycles_TwoIndependent(t *testing.T) {
	prog := seqProgram(map[string][]string{
		"X": {"Y"},
		"Y": {"X"},
		"A": {"A"},
	})

	cycles := AnalyzeCycles(prog)
	require.Len(t, cycles, 2)
	assert.Equal(t, "A", cycles[0].Path[0])
	assert.Equal(t, []string{"X", "Y", "X"}, cycles[1].Path)
}

func TestAnalyzeCycles_Deterministic(t *testing.T) {
	prog := seqProgram(map[string][]string{
		"P": {"Q"}, "Q": {"R"}, "R": {"P"},
		"M": {"N"}, "N": {"M"},
	})

	first := AnalyzeCycles(prog)
	for range 20 {
		assert.Equal(t, first, AnalyzeCycles(prog))
	}
}

package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/ir"
)

func compileString(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v
}

func TestCompileProgramBasic(t *testing.T) {
	v := compileString(t, `
		kind: int: size: 4
		kind: double: size: 8

		sequence: S: {
			container: "tuple"
			kinds: ["int", "double", "int"]
		}

		pipeline: p: {
			input: "S"
			steps: [{op: "take", n: 2}, {op: "reverse"}]
		}
	`)

	prog, err := CompileProgram(v)
	require.NoError(t, err)

	assert.Equal(t, ir.NewAtom("int", 4), prog.Kinds["int"])
	assert.Equal(t, ir.NewAtom("double", 8), prog.Kinds["double"])

	s := prog.Sequences["S"]
	assert.Equal(t, ir.Tuple, s.Container)
	assert.Equal(t, []string{"int", "double", "int"}, s.Kinds)

	require.Len(t, prog.Pipelines, 1)
	p := prog.Pipelines[0]
	assert.Equal(t, "p", p.Name)
	assert.Equal(t, "S", p.Input)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, "take", p.Steps[0].Op)
	assert.Equal(t, int64(2), p.Steps[0].Args["n"])
	assert.Equal(t, "reverse", p.Steps[1].Op)
	assert.Nil(t, p.Steps[1].Args)
	assert.Equal(t, ir.TerminalSpec{Op: ir.TerminalType}, p.Terminal)
}

func TestCompileProgramDefaults(t *testing.T) {
	v := compileString(t, `
		sequence: E: kinds: []
		pipeline: p: input: "E"
	`)

	prog, err := CompileProgram(v)
	require.NoError(t, err)

	assert.Equal(t, ir.TypeList, prog.Sequences["E"].Container)
	assert.Empty(t, prog.Sequences["E"].Kinds)
	assert.Empty(t, prog.Pipelines[0].Steps)
	assert.Equal(t, ir.TerminalType, prog.Pipelines[0].Terminal.Op)
}

func TestCompileProgramArgTypes(t *testing.T) {
	v := compileString(t, `
		pipeline: p: {
			input: "S"
			steps: [
				{op: "order", indices: [2, 0, 1]},
				{op: "order", indices: []},
				{op: "concat", with: ["A", "B"]},
				{op: "push_back", kind: "int"},
				{op: "filter", pred: "is:int"},
				{op: "mystery", flag: true, xs: ["a"], n: 3},
			]
			terminal: {op: "count_if", arg: "atom"}
		}
	`)

	prog, err := CompileProgram(v)
	require.NoError(t, err)

	steps := prog.Pipelines[0].Steps
	assert.Equal(t, []int64{2, 0, 1}, steps[0].Args["indices"])
	assert.Equal(t, []int64{}, steps[1].Args["indices"])
	assert.Equal(t, []string{"A", "B"}, steps[2].Args["with"])
	assert.Equal(t, "int", steps[3].Args["kind"])
	assert.Equal(t, "is:int", steps[4].Args["pred"])
	assert.Equal(t, map[string]any{"flag": true, "xs": []string{"a"}, "n": int64(3)}, steps[5].Args)
	assert.Equal(t, ir.TerminalSpec{Op: "count_if", Arg: "atom"}, prog.Pipelines[0].Terminal)
}

func TestCompileProgramPipelinesSorted(t *testing.T) {
	v := compileString(t, `
		pipeline: zeta: input: "S"
		pipeline: alpha: input: "S"
		pipeline: mid: input: "S"
	`)

	prog, err := CompileProgram(v)
	require.NoError(t, err)

	var names []string
	for _, p := range prog.Pipelines {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestCompileProgramErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"kind without size", `kind: int: {}`, "kind.int.size"},
		{"sequence without kinds", `sequence: S: container: "tuple"`, "sequence.S.kinds"},
		{"pipeline without input", `pipeline: p: steps: []`, "pipeline.p.input"},
		{"step without op", `pipeline: p: {input: "S", steps: [{n: 1}]}`, "pipeline.p.steps[0].op"},
		{"wrong arg type", `pipeline: p: {input: "S", steps: [{op: "take", n: "two"}]}`, "pipeline.p.steps[0].n"},
		{"float arg", `pipeline: p: {input: "S", steps: [{op: "mystery", x: 1.5}]}`, "pipeline.p.steps[0].x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileProgram(compileString(t, tt.src))
			require.Error(t, err)

			var cerr *CompileError
			require.True(t, errors.As(err, &cerr), "got %T: %v", err, err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestCompileProgramCUEError(t *testing.T) {
	v := cuecontext.New().CompileString(`
		kind: int: size: 4
		kind: int: size: 8
	`)

	_, err := CompileProgram(v)
	require.Error(t, err)
	var cerr *CompileError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "cue", cerr.Field)
	assert.True(t, cerr.Pos.IsValid())
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "kind.int.size", Message: "size is required"}
	assert.Equal(t, "kind.int.size: size is required", err.Error())
}

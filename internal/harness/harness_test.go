package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/engine"
	"github.com/roach88/kindseq/internal/ir"
)

const basicSpecs = "../../testdata/specs/basic"

func ptr[T any](v T) *T { return &v }

func TestRun_MemoSharing(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/memo_sharing.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 4)
	assert.Equal(t, 2, result.MemoRows)

	assert.Equal(t, PhaseSetup, result.Trace[0].Phase)
	assert.False(t, result.Trace[0].Cached)
	assert.Equal(t, PhaseCase, result.Trace[1].Phase)
	assert.True(t, result.Trace[1].Cached)
	assert.Equal(t, result.Trace[0].Key, result.Trace[1].Key, "structurally equal pipelines share a key")
	assert.Equal(t, result.Trace[0].Seq, result.Trace[1].Seq)
}

func TestRun_ContractErrorsAreOutcomes(t *testing.T) {
	scenario := &Scenario{
		Name:  "contract",
		Specs: basicSpecs,
		Cases: []Case{
			{Pipeline: "empty_head", Expect: &ExpectClause{Error: string(ir.ErrCodeEmptySequence)}},
			{Pipeline: "too_far", Expect: &ExpectClause{Error: string(ir.ErrCodeOutOfBounds)}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, string(ir.ErrCodeEmptySequence), result.Trace[0].Code)
	assert.Empty(t, result.Trace[0].Error)
	assert.Equal(t, 2, result.MemoRows)
}

func TestRun_Expectations(t *testing.T) {
	tests := []struct {
		name    string
		c       Case
		wantErr string
	}{
		{"type matches", Case{Pipeline: "small", Expect: &ExpectClause{Type: "type_list<int, char>"}}, ""},
		{"type differs", Case{Pipeline: "small", Expect: &ExpectClause{Type: "tuple<int, char>"}}, "expected type tuple<int, char>"},
		{"int matches", Case{Pipeline: "length", Expect: &ExpectClause{Int: ptr(int64(4))}}, ""},
		{"int differs", Case{Pipeline: "length", Expect: &ExpectClause{Int: ptr(int64(5))}}, "expected int 5"},
		{"int on a kind", Case{Pipeline: "small", Expect: &ExpectClause{Int: ptr(int64(2))}}, "got kind"},
		{"bool matches", Case{Pipeline: "all_atoms", Expect: &ExpectClause{Bool: ptr(false)}}, ""},
		{"bool differs", Case{Pipeline: "all_atoms", Expect: &ExpectClause{Bool: ptr(true)}}, "expected bool true"},
		{"error differs", Case{Pipeline: "empty_head", Expect: &ExpectClause{Error: "OUT_OF_BOUNDS"}}, "expected OUT_OF_BOUNDS error, got EMPTY_SEQUENCE"},
		{"error expected", Case{Pipeline: "small", Expect: &ExpectClause{Error: "OUT_OF_BOUNDS"}}, "expected OUT_OF_BOUNDS error"},
		{"cached on first run", Case{Pipeline: "small", Expect: &ExpectClause{Cached: ptr(true)}}, "expected cached=true, got cached=false"},
		{"no expectation", Case{Pipeline: "small"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{Name: "expect", Specs: basicSpecs, Cases: []Case{tt.c}}

			result, err := Run(scenario)
			require.NoError(t, err)

			if tt.wantErr == "" {
				assert.True(t, result.Pass, "errors: %v", result.Errors)
				return
			}
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.wantErr)
		})
	}
}

func TestRun_UnknownPipelineFailsCase(t *testing.T) {
	scenario := &Scenario{
		Name:  "unknown",
		Specs: basicSpecs,
		Cases: []Case{{Pipeline: "missing"}, {Pipeline: "small"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Trace, 2, "later cases still run")
	assert.Equal(t, string(engine.ErrCodeUnknownPipeline), result.Trace[0].Code)
	assert.Contains(t, result.Trace[0].Error, "no such pipeline")
	assert.Contains(t, result.Errors[0], "cases[0] missing")
}

func TestRun_SetupRuntimeErrorAborts(t *testing.T) {
	scenario := &Scenario{
		Name:  "setup",
		Specs: basicSpecs,
		Setup: []string{"missing"},
		Cases: []Case{{Pipeline: "small"}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0] missing")
}

func TestRun_MissingSpecs(t *testing.T) {
	scenario := &Scenario{Name: "missing", Specs: filepath.Join(t.TempDir(), "nope"), Cases: []Case{{Pipeline: "x"}}}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load specs")
}

func TestRun_InvalidProgram(t *testing.T) {
	scenario := &Scenario{Name: "broken", Specs: "../../testdata/specs/broken", Cases: []Case{{Pipeline: "bad_op"}}}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid program")
}

func TestRun_WithRegistry(t *testing.T) {
	dir := t.TempDir()
	src := `
kind: {
	int:  size: 4
	char: size: 1
}
sequence: S: kinds: ["int", "char", "char"]
pipeline: chars: {
	input: "S"
	terminal: {op: "count_if", arg: "is_char"}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "program.cue"), []byte(src), 0o644))
	scenario := &Scenario{
		Name:  "registry",
		Specs: dir,
		Cases: []Case{{Pipeline: "chars", Expect: &ExpectClause{Int: ptr(int64(2))}}},
	}

	_, err := Run(scenario)
	require.Error(t, err, "default registry has no is_char")
	assert.Contains(t, err.Error(), "is_char")

	reg := engine.DefaultRegistry()
	reg.RegisterPredicate("is_char", func(k ir.Kind) bool { return k.String() == "char" })

	result, err := Run(scenario, WithRegistry(reg))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/terminals.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario, first).Marshal()
	require.NoError(t, err)
	b, err := Snapshot(scenario, second).Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	assert.NotNil(t, r.Trace)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}

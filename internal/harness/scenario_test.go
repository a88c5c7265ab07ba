package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "specs"), 0o755))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/memo_sharing.yaml")
	require.NoError(t, err)

	assert.Equal(t, "memo_sharing", scenario.Name)
	assert.Equal(t, "memo-sharing-run", scenario.RunID)
	assert.Equal(t, filepath.Join("../../testdata/scenarios", "../specs/basic"), scenario.Specs)
	assert.Equal(t, []string{"reversed"}, scenario.Setup)
	require.Len(t, scenario.Cases, 3)

	first := scenario.Cases[0]
	assert.Equal(t, "reversed_copy", first.Pipeline)
	require.NotNil(t, first.Expect)
	assert.Equal(t, "type_list<long, char, double, int>", first.Expect.Type)
	require.NotNil(t, first.Expect.Cached)
	assert.True(t, *first.Expect.Cached)

	require.Len(t, scenario.Assertions, 4)
	assert.Equal(t, AssertTraceOrder, scenario.Assertions[0].Type)
	assert.Equal(t, []string{"reversed", "reversed_copy", "small"}, scenario.Assertions[0].Pipelines)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	abs, err := filepath.Abs("../../testdata")
	require.NoError(t, err)

	scenario, err := LoadScenarioWithBasePath("../../testdata/scenarios/terminals.yaml", filepath.Join(abs, "scenarios"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, "specs", "basic"), scenario.Specs)
}

func TestLoadScenario_ExpectForms(t *testing.T) {
	path := writeScenario(t, `
name: forms
description: each outcome form
specs: specs
cases:
  - pipeline: a
    expect: {int: 0}
  - pipeline: b
    expect: {bool: false}
  - pipeline: c
    expect: {error: OUT_OF_BOUNDS}
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	require.NotNil(t, scenario.Cases[0].Expect.Int)
	assert.Equal(t, int64(0), *scenario.Cases[0].Expect.Int)
	require.NotNil(t, scenario.Cases[1].Expect.Bool)
	assert.False(t, *scenario.Cases[1].Expect.Bool)
	assert.Equal(t, "OUT_OF_BOUNDS", scenario.Cases[2].Expect.Error)
	assert.Nil(t, scenario.Cases[2].Expect.Cached)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\nspecs: specs\ncase:\n  - pipeline: a\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "malformed",
			content: "name: [unterminated\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: d\nspecs: specs\ncases:\n  - pipeline: a\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nspecs: specs\ncases:\n  - pipeline: a\n",
			wantErr: "description is required",
		},
		{
			name:    "missing specs",
			content: "name: x\ndescription: d\ncases:\n  - pipeline: a\n",
			wantErr: "specs directory is required",
		},
		{
			name:    "specs not found",
			content: "name: x\ndescription: d\nspecs: elsewhere\ncases:\n  - pipeline: a\n",
			wantErr: "specs directory not found",
		},
		{
			name:    "specs is a file",
			content: "name: x\ndescription: d\nspecs: scenario.yaml\ncases:\n  - pipeline: a\n",
			wantErr: "specs is not a directory",
		},
		{
			name:    "no cases",
			content: "name: x\ndescription: d\nspecs: specs\n",
			wantErr: "cases list is required",
		},
		{
			name:    "case without pipeline",
			content: "name: x\ndescription: d\nspecs: specs\ncases:\n  - expect: {int: 1}\n",
			wantErr: "cases[0]: pipeline is required",
		},
		{
			name:    "empty setup entry",
			content: "name: x\ndescription: d\nspecs: specs\nsetup: ['']\ncases:\n  - pipeline: a\n",
			wantErr: "setup[0]: pipeline name is required",
		},
		{
			name:    "two outcomes",
			content: "name: x\ndescription: d\nspecs: specs\ncases:\n  - pipeline: a\n    expect: {int: 1, bool: true}\n",
			wantErr: "at most one of type, int, bool and error",
		},
		{
			name:    "empty expect",
			content: "name: x\ndescription: d\nspecs: specs\ncases:\n  - pipeline: a\n    expect: {}\n",
			wantErr: "expect is empty",
		},
		{
			name:    "unknown assertion",
			content: "name: x\ndescription: d\nspecs: specs\ncases:\n  - pipeline: a\nassertions:\n  - type: trace_magic\n",
			wantErr: `unknown assertion type "trace_magic"`,
		},
		{
			name:    "assertion without type",
			content: "name: x\ndescription: d\nspecs: specs\ncases:\n  - pipeline: a\nassertions:\n  - pipeline: a\n",
			wantErr: "assertions[0]: type is required",
		},
		{
			name:    "trace_contains without pipeline",
			content: "name: x\ndescription: d\nspecs: specs\ncases:\n  - pipeline: a\nassertions:\n  - type: trace_contains\n",
			wantErr: "pipeline is required for trace_contains",
		},
		{
			name:    "trace_order without pipelines",
			content: "name: x\ndescription: d\nspecs: specs\ncases:\n  - pipeline: a\nassertions:\n  - type: trace_order\n",
			wantErr: "pipelines list is required",
		},
		{
			name:    "negative memo_rows",
			content: "name: x\ndescription: d\nspecs: specs\ncases:\n  - pipeline: a\nassertions:\n  - type: memo_rows\n    count: -1\n",
			wantErr: "count must be non-negative for memo_rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

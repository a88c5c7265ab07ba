package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../../testdata/scenarios"

func TestRunDir_Scenarios(t *testing.T) {
	result, err := RunDir(scenariosDir, "")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Passed, "failures: %+v", result.Failures)
	assert.Zero(t, result.Failed)
	assert.Empty(t, result.Failures)
}

func TestFindScenarios(t *testing.T) {
	all, err := FindScenarios(scenariosDir, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "contract_errors.yaml", filepath.Base(all[0]))

	filtered, err := FindScenarios(scenariosDir, "memo_*")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "memo_sharing.yaml", filepath.Base(filtered[0]))

	_, err = FindScenarios(scenariosDir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestRunDir_CollectsFailures(t *testing.T) {
	dir := t.TempDir()
	specs, err := filepath.Abs("../../testdata/specs/basic")
	require.NoError(t, err)

	bad := "name: wrong\ndescription: wrong expectation\nspecs: " + specs + "\ncases:\n  - pipeline: length\n    expect: {int: 99}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(bad), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbled.yml"), []byte("name: [\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	result, err := RunDir(dir, "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Passed)
	require.Len(t, result.Failures, 2)
	assert.Contains(t, result.Failures[0].Error, "failed to load scenario")
	assert.Equal(t, "wrong", result.Failures[1].Name)
	assert.Contains(t, result.Failures[1].Error, "expected int 99")
}

func TestRunDir_MissingDir(t *testing.T) {
	_, err := RunDir(filepath.Join(t.TempDir(), "absent"), "")
	assert.Error(t, err)
}

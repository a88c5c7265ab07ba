package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResponse struct {
	Status string     `json:"status"`
	Data   TestResult `json:"data"`
	Error  *CLIError  `json:"error"`
}

// scenarioDir writes one scenario against the basic program into a fresh
// directory.
func scenarioDir(t *testing.T, name, cases string) string {
	t.Helper()
	specs, err := filepath.Abs(basicSpecs)
	require.NoError(t, err)

	dir := t.TempDir()
	content := "name: " + name + "\ndescription: cli scenario\nspecs: " + specs + "\nrun_id: cli-run\ncases:\n" + cases
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o644))
	return dir
}

func TestTestCommand_Scenarios(t *testing.T) {
	out, err := executeCommand(t, "test", scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ contract_errors\n")
	assert.Contains(t, out, "✓ memo_sharing\n")
	assert.Contains(t, out, "✓ terminals\n")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_FilterJSON(t *testing.T) {
	out, err := executeCommand(t, "test", scenariosDir, "--filter", "memo_*", "--format", "json")
	require.NoError(t, err)

	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "memo_sharing", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "missing", resp.Data.Scenarios[0].Golden)
}

func TestTestCommand_Failure(t *testing.T) {
	dir := scenarioDir(t, "wrong", "  - pipeline: length\n    expect: {int: 7}\n")

	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "expected int 7")

	out, err = executeCommand(t, "test", dir, "--format", "json")
	require.Error(t, err)
	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTestCommand_Golden(t *testing.T) {
	dir := scenarioDir(t, "golden_case", "  - pipeline: small\n  - pipeline: small\n    expect: {cached: true}\n")
	goldenPath := filepath.Join(dir, "golden", "golden_case.golden")

	out, err := executeCommand(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ golden_case (golden updated)")

	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Equal(t,
		`{"run_id":"cli-run","scenario_name":"golden_case","trace":[`+
			`{"cached":false,"phase":"case","pipeline":"small","seq":1,"terminal":"type","value":"type_list<int, char>"},`+
			`{"cached":true,"phase":"case","pipeline":"small","seq":1,"terminal":"type","value":"type_list<int, char>"}]}`,
		string(data))

	out, err = executeCommand(t, "test", dir, "--format", "json")
	require.NoError(t, err)
	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"golden_case","trace":[]}`), 0o644))
	out, err = executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_LoadFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: [\n"), 0o644))

	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_NoScenarios(t *testing.T) {
	out, err := executeCommand(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := executeCommand(t, "test", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_MissingArgs(t *testing.T) {
	_, err := executeCommand(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "memo.golden"), goldenFilePath(filepath.Join("scenarios", "memo.yaml")))
}

package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/engine"
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/store"
)

// populatedDB evaluates every pipeline of the basic program into a fresh
// database.
func populatedDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "memo.db")
	_, err := executeCommand(t, "eval", basicSpecs, "--db", db)
	require.NoError(t, err)
	return db
}

func TestReplayCommand_Deterministic(t *testing.T) {
	db := populatedDB(t)

	out, err := executeCommand(t, "replay", basicSpecs, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All 10 row(s) verified deterministic")
}

func TestReplayCommand_JSON(t *testing.T) {
	db := populatedDB(t)

	out, err := executeCommand(t, "replay", basicSpecs, "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   engine.ReplayReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 10, resp.Data.Checked)
	assert.Empty(t, resp.Data.Mismatches)
}

func TestReplayCommand_Mismatch(t *testing.T) {
	db := populatedDB(t)
	ctx := context.Background()

	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.WriteRun(ctx, ir.Run{ID: "tamper", EngineVersion: "test", IRVersion: ir.IRVersion}))

	entries, err := st.ListResults(ctx)
	require.NoError(t, err)
	forged := entries[0]
	forged.Key = "forged"
	forged.RunID = "tamper"
	forged.Seq = 99
	_, err = st.PutResult(ctx, forged)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := executeCommand(t, "replay", basicSpecs, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "key differs")
	assert.Contains(t, out, "stored:     forged")
	assert.Contains(t, out, "1 of 11 row(s) differ")

	out, err = executeCommand(t, "replay", basicSpecs, "--db", db, "--format", "json")
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_NONDETERMINISTIC", resp.Error.Code)
}

func TestReplayCommand_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "memo.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := executeCommand(t, "replay", basicSpecs, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No memo rows found in database.")
}

func TestReplayCommand_MissingDatabase(t *testing.T) {
	out, err := executeCommand(t, "replay", basicSpecs, "--db", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/ir"
)

const testRunID = "test-run"

// createTestStore opens a fresh file-backed store with testRunID registered.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.WriteRun(context.Background(), ir.Run{
		ID:            testRunID,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}))
	return s
}

// createTestEntry builds a memo row with valid canonical JSON columns.
func createTestEntry(key string, seq int64) ir.MemoEntry {
	return ir.MemoEntry{
		Key:      key,
		Pipeline: "p-" + key,
		Spec:     `{"input":{"container":"type_list","kinds":[]},"steps":[]}`,
		Result:   `{"value":{"atom":"int","size":4}}`,
		RunID:    testRunID,
		Seq:      seq,
	}
}

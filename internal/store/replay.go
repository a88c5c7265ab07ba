package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/kindseq/internal/ir"
)

// ErrRunNotFound is returned by GetRunState for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunState is everything one run wrote, for replay and inspection.
type RunState struct {
	Run     ir.Run
	Entries []ir.MemoEntry // seq order
	LastSeq int64          // 0 when the run wrote nothing
}

// GetRunState loads a run and the memo rows it first wrote.
func (s *Store) GetRunState(ctx context.Context, runID string) (RunState, error) {
	state := RunState{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, engine_version, ir_version
		FROM runs
		WHERE id = ?
	`, runID).Scan(&state.Run.ID, &state.Run.EngineVersion, &state.Run.IRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return state, fmt.Errorf("get run state %q: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return state, fmt.Errorf("get run state: %w", err)
	}

	entries, err := s.ListRunResults(ctx, runID)
	if err != nil {
		return state, fmt.Errorf("get run state: %w", err)
	}
	state.Entries = entries

	for _, e := range entries {
		if e.Seq > state.LastSeq {
			state.LastSeq = e.Seq
		}
	}
	return state, nil
}

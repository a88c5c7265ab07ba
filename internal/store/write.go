package store

import (
	"context"
	"fmt"

	"github.com/roach88/kindseq/internal/ir"
)

// WriteRun records an evaluator session.
// Uses ON CONFLICT(id) DO NOTHING: reopening a run is a no-op.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, engine_version, ir_version)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.EngineVersion, run.IRVersion)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// PutResult inserts a memo row and reports whether it was new.
//
// Rows are write-once: if the key already exists the stored row is kept
// and inserted is false. The referenced run must exist (foreign key).
func (s *Store) PutResult(ctx context.Context, entry ir.MemoEntry) (inserted bool, err error) {
	if entry.Key == "" {
		return false, fmt.Errorf("put result: empty key")
	}

	spec, err := canonicalize("spec", entry.Spec)
	if err != nil {
		return false, fmt.Errorf("put result: %w", err)
	}
	result, err := canonicalize("result", entry.Result)
	if err != nil {
		return false, fmt.Errorf("put result: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO memo_results (key, pipeline, spec, result, run_id, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`, entry.Key, entry.Pipeline, spec, result, entry.RunID, entry.Seq)
	if err != nil {
		return false, fmt.Errorf("put result: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("put result: rows affected: %w", err)
	}
	return n > 0, nil
}

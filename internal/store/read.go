package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/queryir"
	"github.com/roach88/kindseq/internal/querysql"
)

const memoColumns = `key, pipeline, spec, result, run_id, seq`

// GetResult returns the memo row stored under key.
// found is false (with a nil error) when no row exists.
func (s *Store) GetResult(ctx context.Context, key string) (entry ir.MemoEntry, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+memoColumns+`
		FROM memo_results
		WHERE key = ?
	`, key)

	entry, err = scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.MemoEntry{}, false, nil
	}
	if err != nil {
		return ir.MemoEntry{}, false, fmt.Errorf("get result: %w", err)
	}
	return entry, true, nil
}

// ListResults returns every memo row ordered by seq ASC, key ASC COLLATE BINARY.
// Returns an empty slice (not nil) for an empty table.
func (s *Store) ListResults(ctx context.Context) ([]ir.MemoEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memoColumns+`
		FROM memo_results
		ORDER BY seq ASC, key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return collectEntries(rows)
}

// ListRunResults returns the memo rows first written by runID, in seq order.
func (s *Store) ListRunResults(ctx context.Context, runID string) ([]ir.MemoEntry, error) {
	entries, err := s.FindResults(ctx, queryir.MemoRows(queryir.Equals{Field: "run_id", Value: runID}))
	if err != nil {
		return nil, fmt.Errorf("list run results: %w", err)
	}
	return entries, nil
}

// FindResults runs a memo row query, typically built with queryir.MemoRows
// or queryir.MemoRowsOfEngine. The query must produce the full memo
// columns in schema order. Rows come back in seq order.
func (s *Store) FindResults(ctx context.Context, q queryir.Query) ([]ir.MemoEntry, error) {
	if cols := queryir.OutputColumns(q); !slices.Equal(cols, queryir.ColumnNames(queryir.TableMemo)) {
		return nil, fmt.Errorf("find results: query must select %s, got %v", memoColumns, cols)
	}

	query, params, err := querysql.NewSQLCompiler().Compile(q)
	if err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}
	return collectEntries(rows)
}

// Count returns the number of memo rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memo_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq stored, or 0 for an empty table.
// The engine resumes its logical clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM memo_results`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// ReadRuns returns every recorded run ordered by id.
func (s *Store) ReadRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, engine_version, ir_version
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		var r ir.Run
		if err := rows.Scan(&r.ID, &r.EngineVersion, &r.IRVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (ir.MemoEntry, error) {
	var e ir.MemoEntry
	err := row.Scan(&e.Key, &e.Pipeline, &e.Spec, &e.Result, &e.RunID, &e.Seq)
	return e, err
}

func collectEntries(rows *sql.Rows) ([]ir.MemoEntry, error) {
	defer rows.Close()

	entries := []ir.MemoEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memo row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memo rows: %w", err)
	}
	return entries, nil
}

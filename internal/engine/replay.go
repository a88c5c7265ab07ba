package engine

import (
	"context"
	"fmt"
)

// Mismatch is one memo row whose recomputation disagrees with what was
// stored.
type Mismatch struct {
	Key        string `json:"key"`
	Pipeline   string `json:"pipeline"`
	Field      string `json:"field"` // "spec", "key" or "result"
	Stored     string `json:"stored"`
	Recomputed string `json:"recomputed"`
}

// ReplayReport summarizes a Replay.
type ReplayReport struct {
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether every row reproduced.
func (r ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay recomputes every row of the persistent memo table and compares
// it with what was stored. It checks determinism: a resolved pipeline
// must always produce the same key and the same canonical result.
//
// Replay reads stored specs only. It bypasses the memo table, does not
// advance the clock and writes nothing. Rows written by other programs are
// checked too, since a stored spec does not depend on its program.
func (e *Engine) Replay(ctx context.Context) (ReplayReport, error) {
	if e.store == nil {
		return ReplayReport{}, &RuntimeError{Code: ErrCodeNoStore, Message: "replay needs a persistent store"}
	}

	entries, err := e.store.ListResults(ctx)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	report := ReplayReport{Mismatches: []Mismatch{}}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		mismatch := func(field, recomputed string) {
			stored := entry.Result
			switch field {
			case "spec":
				stored = entry.Spec
			case "key":
				stored = entry.Key
			}
			report.Mismatches = append(report.Mismatches, Mismatch{
				Key:        entry.Key,
				Pipeline:   entry.Pipeline,
				Field:      field,
				Stored:     stored,
				Recomputed: recomputed,
			})
		}

		rp, err := DecodeResolved(entry.Spec)
		if err != nil {
			mismatch("spec", err.Error())
			continue
		}
		rp.Name = entry.Pipeline

		key, err := rp.Key()
		if err != nil {
			mismatch("key", err.Error())
			continue
		}
		if key != entry.Key {
			mismatch("key", key)
			continue
		}

		value, err := e.compute(rp)
		if err != nil {
			mismatch("result", err.Error())
			continue
		}
		text, err := value.Marshal()
		if err != nil {
			mismatch("result", err.Error())
			continue
		}
		if text != entry.Result {
			mismatch("result", text)
		}
	}

	e.logger.Debug().
		Int("checked", report.Checked).
		Int("mismatches", len(report.Mismatches)).
		Msg("replay finished")

	return report, nil
}

// Package store provides SQLite-backed persistence for the memo table.
//
// Two tables are kept:
//   - runs: one row per evaluator session (run ID, engine and IR versions)
//   - memo_results: one row per resolved pipeline, keyed by ir.PipelineKey
//
// Rows are write-once. PutResult uses ON CONFLICT(key) DO NOTHING, so a
// pipeline evaluated twice (in the same run or a later one) keeps its first
// row, and the caller learns whether it inserted.
//
// Ordering uses the seq column (the engine's logical clock), never wall
// time. Every list query sorts by seq ASC, key ASC COLLATE BINARY so reads
// are identical across replays. FindResults runs filtered reads expressed
// in the queryir package and compiled by querysql.
//
// Spec and result columns hold RFC 8785 canonical JSON produced by
// ir.MarshalCanonical. PutResult re-canonicalizes both before insert.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: memo rows must reference a known run
package store

// Package engine evaluates declared pipelines with a memo table.
//
// ARCHITECTURE:
//
// Evaluation of one pipeline:
//  1. Resolve: every kind and sequence name is expanded to its structural
//     form, predicate/mapper/folder names are parsed against the Registry
//     (kind arguments expanded too), optional arguments get defaults.
//  2. Key: ir.PipelineKey of the canonical resolved form. Names never enter
//     the key, so two declarations with the same meaning share a row.
//  3. Memo: the key is looked up in the in-memory LRU, then the store.
//  4. On a miss the lazy pipeline is built and its terminal runs. The
//     result is stamped with the next logical seq and written back.
//
// Contract violations (OUT_OF_BOUNDS, MIXED_MODES, ...) are deterministic,
// so they are memoized as Values like any other result. Only failures to
// evaluate at all (unknown names, unresolved references, store errors)
// surface as Go errors.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Memo rows are ordered by seq from Clock.Next(), never by wall time.
//
// Structural Idempotency:
// The store keeps the first row per key (ON CONFLICT DO NOTHING). Running a
// program twice, or two programs sharing a pipeline, leaves one row.
//
// Replay:
// Stored specs are self-contained, so Replay recomputes every row without
// the program that wrote it and reports any difference in key or result.
package engine

// Package harness runs conformance scenarios against kindseq programs.
//
// A scenario names a directory holding a CUE program, evaluates some of its
// pipelines through a real engine backed by an in-memory memo table, and
// checks the outcomes.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: reverse_and_filter
//	description: "Reversal is memoized under the structural key"
//	specs: ../specs/basic
//	run_id: scenario-run
//	setup:
//	  - reversed
//	cases:
//	  - pipeline: reversed
//	    expect:
//	      type: "type_list<long, char, double, int>"
//	      cached: true
//	  - pipeline: empty_head
//	    expect:
//	      error: EMPTY_SEQUENCE
//	assertions:
//	  - type: trace_order
//	    pipelines: [reversed, empty_head]
//	  - type: memo_rows
//	    count: 2
//
// # Assertion Types
//
//   - trace_contains: a pipeline appears in the trace, optionally with a value
//   - trace_order: pipelines first appear in the given order
//   - trace_count: a pipeline appears exactly N times
//   - memo_rows: the memo table holds exactly N rows
//   - cache_hits: exactly N evaluations were served by the memo table
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory SQLite store, a fixed run ID and a
// logical clock starting at zero, so the same scenario always produces the
// same trace. RunWithGolden compares that trace with a golden file under
// testdata/golden.
package harness

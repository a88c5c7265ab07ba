package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/store"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Phase: PhaseSetup, Pipeline: "reversed", Value: "type_list<char, int>", Seq: 1},
		{Phase: PhaseCase, Pipeline: "small", Value: "type_list<int>", Seq: 2},
		{Phase: PhaseCase, Pipeline: "reversed", Value: "type_list<char, int>", Seq: 1, Cached: true},
		{Phase: PhaseCase, Pipeline: "broken", Error: "no such pipeline", Code: "UNKNOWN_PIPELINE"},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Pipeline: "small"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Pipeline: "small", Value: "type_list<int>"}))

	err := assertTraceContains(trace, Assertion{Pipeline: "small", Value: "type_list<char>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline small with value type_list<char>")

	err = assertTraceContains(trace, Assertion{Pipeline: "absent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in trace")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Pipelines: []string{"reversed", "small"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Pipelines: []string{"reversed", "broken"}}))

	err := assertTraceOrder(trace, Assertion{Pipelines: []string{"small", "reversed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "small (pos 2) should be before reversed (pos 1)")

	err = assertTraceOrder(trace, Assertion{Pipelines: []string{"reversed", "absent"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing pipeline: absent")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Pipeline: "reversed", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Pipeline: "absent", Count: 0}))

	err := assertTraceCount(trace, Assertion{Pipeline: "small", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 evaluations of small")
	assert.Contains(t, err.Error(), "Actual: 1 evaluations")
}

func TestAssertCacheHits(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertCacheHits(trace, Assertion{Count: 1}))

	err := assertCacheHits(trace, Assertion{Count: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Actual: 1 memo hits")
}

func TestAssertMemoRows(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()

	assert.NoError(t, assertMemoRows(ctx, st, Assertion{Count: 0}))

	require.NoError(t, st.WriteRun(ctx, ir.Run{ID: "r", EngineVersion: "test", IRVersion: ir.IRVersion}))
	_, err = st.PutResult(ctx, ir.MemoEntry{Key: "k", Pipeline: "p", Spec: "{}", Result: `{"int":1}`, RunID: "r", Seq: 1})
	require.NoError(t, err)

	assert.NoError(t, assertMemoRows(ctx, st, Assertion{Count: 1}))
	err = assertMemoRows(ctx, st, Assertion{Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 memo rows")
}

func TestAssertionError_ListsTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCacheHits,
		Expected: "2 memo hits",
		Actual:   "1 memo hits",
		Trace:    sampleTrace(),
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: cache_hits")
	assert.Contains(t, msg, "[3] case reversed = type_list<char, int> (cached)")
	assert.Contains(t, msg, "[4] case broken = no such pipeline")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	for _, ev := range sampleTrace() {
		result.AddTrace(ev)
	}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceContains, Pipeline: "small"},
		{Type: AssertTraceCount, Pipeline: "small", Count: 5},
		{Type: AssertMemoRows, Count: 0},
		{Type: "bogus"},
	}, nil)

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "5 evaluations of small")
	assert.Contains(t, errs[1], "memo_rows requires database context")
	assert.Contains(t, errs[2], `unknown assertion type "bogus"`)
}

package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/kindseq/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			cached := ""
			if event.Cached {
				cached = " (cached)"
			}
			fmt.Fprintf(&buf, "  [%d] %s %s = %s%s\n", i+1, event.Phase, event.Pipeline, describeEvent(event), cached)
		}
	}

	return buf.String()
}

func describeEvent(ev TraceEvent) string {
	if ev.Error != "" {
		return ev.Error
	}
	return ev.Value
}

// assertTraceContains checks if the trace contains an evaluation of the
// pipeline, with the given rendered value when one is specified.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Pipeline != assertion.Pipeline {
			continue
		}
		if assertion.Value == "" || assertion.Value == event.Value {
			return nil
		}
	}

	expected := "pipeline " + assertion.Pipeline
	if assertion.Value != "" {
		expected += " with value " + assertion.Value
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if pipelines first appear in the specified order.
// Pipelines don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Pipeline]; !seen {
			positions[event.Pipeline] = i + 1 // 1-indexed for readability
		}
	}

	for _, name := range assertion.Pipelines {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all pipelines present: %v", assertion.Pipelines),
				Actual:   fmt.Sprintf("missing pipeline: %s", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Pipelines); i++ {
		prev := assertion.Pipelines[i-1]
		curr := assertion.Pipelines[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("pipelines in order: %v", assertion.Pipelines),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the pipeline was evaluated exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Pipeline == assertion.Pipeline {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d evaluations of %s", assertion.Count, assertion.Pipeline),
			Actual:   fmt.Sprintf("%d evaluations", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertCacheHits checks the number of evaluations served by the memo table.
func assertCacheHits(trace []TraceEvent, assertion Assertion) error {
	hits := 0
	for _, event := range trace {
		if event.Cached {
			hits++
		}
	}

	if hits != assertion.Count {
		return &AssertionError{
			Type:     AssertCacheHits,
			Expected: fmt.Sprintf("%d memo hits", assertion.Count),
			Actual:   fmt.Sprintf("%d memo hits", hits),
			Trace:    trace,
		}
	}
	return nil
}

// assertMemoRows checks the number of rows in the memo table.
func assertMemoRows(ctx context.Context, st *store.Store, assertion Assertion) error {
	n, err := st.Count(ctx)
	if err != nil {
		return &AssertionError{
			Type:     AssertMemoRows,
			Expected: fmt.Sprintf("%d memo rows", assertion.Count),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	if n != assertion.Count {
		return &AssertionError{
			Type:     AssertMemoRows,
			Expected: fmt.Sprintf("%d memo rows", assertion.Count),
			Actual:   fmt.Sprintf("%d memo rows", n),
		}
	}
	return nil
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for memo_rows assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertCacheHits:
			err = assertCacheHits(result.Trace, assertion)
		case AssertMemoRows:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: memo_rows requires database context", i)
			} else {
				err = assertMemoRows(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

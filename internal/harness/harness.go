package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/kindseq/internal/compiler"
	"github.com/roach88/kindseq/internal/engine"
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/store"
	"github.com/roach88/kindseq/internal/testutil"
)

// Harness is the test execution engine.
// It runs one scenario against a fresh engine and in-memory memo table.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger zerolog.Logger
}

// Option configures Run.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	registry *engine.Registry
}

// WithLogger routes engine and harness logs to l. The default discards them.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRegistry evaluates the scenario with a custom registry.
func WithRegistry(r *engine.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with a
// fixed run ID, so the same scenario always yields the same trace.
//
// Execution flow:
// 1. Load, compile and validate the CUE program in scenario.Specs
// 2. Create a fresh in-memory store and engine
// 3. Evaluate setup pipelines
// 4. Evaluate cases and check their expectations
// 5. Evaluate assertions against the trace and the memo table
//
// The error is non-nil only when the scenario cannot run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = engine.DefaultRegistry()
	}

	prog, err := compiler.LoadDir(scenario.Specs)
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}
	if verrs := compiler.Validate(prog, o.registry); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, fmt.Errorf("invalid program: %w", errors.Join(errs...))
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	eng, err := engine.New(ctx, prog,
		engine.WithStore(st),
		engine.WithRegistry(o.registry),
		engine.WithRunID(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		engine.WithLogger(o.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{store: st, engine: eng, logger: o.logger}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	h.executeCases(ctx, scenario.Cases, result)

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	if result.MemoRows, err = st.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count memo rows: %w", err)
	}

	return result, nil
}

// executeSetup evaluates setup pipelines. Contract errors are ordinary
// outcomes here; runtime errors abort the run.
func (h *Harness) executeSetup(ctx context.Context, setup []string, result *Result) error {
	for i, name := range setup {
		r, err := h.engine.Evaluate(ctx, name)
		if err != nil {
			return fmt.Errorf("setup[%d] %s: %w", i, name, err)
		}
		result.AddTrace(traceEvent(PhaseSetup, r))

		h.logger.Debug().
			Int("step", i).
			Str("pipeline", name).
			Bool("cached", r.Cached).
			Msg("setup pipeline evaluated")
	}
	return nil
}

// executeCases evaluates every case and checks its expectation.
func (h *Harness) executeCases(ctx context.Context, cases []Case, result *Result) {
	for i, c := range cases {
		r, err := h.engine.Evaluate(ctx, c.Pipeline)
		if err != nil {
			ev := TraceEvent{Phase: PhaseCase, Pipeline: c.Pipeline, Error: err.Error()}
			var rerr *engine.RuntimeError
			if errors.As(err, &rerr) {
				ev.Code = string(rerr.Code)
			}
			result.AddTrace(ev)
			result.AddError(fmt.Sprintf("cases[%d] %s: %v", i, c.Pipeline, err))
			continue
		}

		result.AddTrace(traceEvent(PhaseCase, r))
		for _, msg := range checkExpect(c.Expect, r) {
			result.AddError(fmt.Sprintf("cases[%d] %s: %s", i, c.Pipeline, msg))
		}

		h.logger.Debug().
			Int("case", i).
			Str("pipeline", c.Pipeline).
			Str("value", r.Value.String()).
			Bool("cached", r.Cached).
			Msg("case evaluated")
	}
}

func traceEvent(phase string, r engine.Result) TraceEvent {
	ev := TraceEvent{
		Phase:    phase,
		Pipeline: r.Pipeline,
		Terminal: r.Terminal,
		Value:    r.Value.String(),
		Cached:   r.Cached,
		Seq:      r.Seq,
		Key:      r.Key,
	}
	if r.Value.Failed() {
		ev.Code = string(r.Value.Code)
	}
	return ev
}

// checkExpect compares a result with its expectation and describes every
// difference.
func checkExpect(e *ExpectClause, r engine.Result) []string {
	if e == nil {
		return nil
	}

	var errs []string
	v := r.Value
	describe := func() string {
		if v.Failed() {
			return fmt.Sprintf("%s error %q", v.Code, v.Message)
		}
		return fmt.Sprintf("%s %s", v.Type, v.String())
	}

	switch {
	case e.Type != "":
		if v.Type != engine.ValueKind || v.String() != e.Type {
			errs = append(errs, fmt.Sprintf("expected type %s, got %s", e.Type, describe()))
		}
	case e.Int != nil:
		if v.Type != engine.ValueInt || v.Int != *e.Int {
			errs = append(errs, fmt.Sprintf("expected int %d, got %s", *e.Int, describe()))
		}
	case e.Bool != nil:
		if v.Type != engine.ValueBool || v.Bool != *e.Bool {
			errs = append(errs, fmt.Sprintf("expected bool %t, got %s", *e.Bool, describe()))
		}
	case e.Error != "":
		if !v.Failed() || v.Code != ir.ContractErrorCode(e.Error) {
			errs = append(errs, fmt.Sprintf("expected %s error, got %s", e.Error, describe()))
		}
	}

	if e.Cached != nil && r.Cached != *e.Cached {
		errs = append(errs, fmt.Sprintf("expected cached=%t, got cached=%t", *e.Cached, r.Cached))
	}
	return errs
}

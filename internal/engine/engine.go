package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roach88/kindseq/internal/compiler"
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/store"
)

// Engine evaluates the pipelines of one compiled program.
//
// Each evaluation resolves the pipeline into its structural form, looks
// the form's key up in the memo table, and only on a miss builds the lazy
// pipeline and runs its terminal. Fresh results are stamped by the logical
// clock and written back.
//
// Thread-safety: all methods are safe for concurrent use; evaluations are
// serialized.
type Engine struct {
	mu sync.Mutex

	prog     *ir.Program
	resolver *compiler.Resolver
	registry *Registry
	memo     *memo
	store    *store.Store
	clock    *Clock
	runIDs   RunIDGenerator
	runID    string
	logger   zerolog.Logger

	maxSteps  int
	cacheSize int
	stats     Stats
}

// Stats counts memo activity since the engine was created.
type Stats struct {
	Hits     int // served from the LRU or the store
	Computed int // evaluated and written back
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithStore persists the memo table. Without a store, results live only in
// the in-memory LRU.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithCacheSize sets the in-memory LRU capacity. Values below 1 select
// the default.
//
// Default: 256 results (DefaultCacheSize)
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// WithRunID sets the run ID generator.
//
// Default: UUIDv7Generator. Tests use testutil.FixedRunIDGenerator.
func WithRunID(gen RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = gen
	}
}

// WithRegistry replaces the default predicate, mapper and folder registry.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithClock sets the logical clock. By default the clock resumes after the
// highest seq in the store (or starts at 0).
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithMaxSteps sets the maximum steps per pipeline. Zero disables the check.
//
// Default: 1000 steps (DefaultMaxSteps)
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// New creates an engine for prog. When a store is configured, the run is
// registered in it and the clock resumes after its last seq.
func New(ctx context.Context, prog *ir.Program, opts ...Option) (*Engine, error) {
	e := &Engine{
		prog:      prog,
		resolver:  compiler.NewResolver(prog),
		logger:    zerolog.Nop(),
		maxSteps:  DefaultMaxSteps,
		cacheSize: DefaultCacheSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = DefaultRegistry()
	}
	if e.runIDs == nil {
		e.runIDs = UUIDv7Generator{}
	}
	e.runID = e.runIDs.Generate()
	e.memo = newMemo(e.cacheSize, e.store)

	if e.store != nil {
		err := e.store.WriteRun(ctx, ir.Run{
			ID:            e.runID,
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("new engine: %w", err)
		}
		if e.clock == nil {
			last, err := e.store.LastSeq(ctx)
			if err != nil {
				return nil, fmt.Errorf("new engine: %w", err)
			}
			e.clock = NewClockAt(last)
		}
	}
	if e.clock == nil {
		e.clock = NewClock()
	}

	e.logger.Debug().
		Str("run_id", e.runID).
		Int("pipelines", len(prog.Pipelines)).
		Int64("seq", e.clock.Current()).
		Bool("persistent", e.store != nil).
		Msg("engine started")

	return e, nil
}

// RunID returns the ID of this engine session.
func (e *Engine) RunID() string {
	return e.runID
}

// Registry returns the registry the engine resolves names against.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Stats returns memo counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Result is one evaluated pipeline.
type Result struct {
	Pipeline string
	Key      string // memo key
	Terminal string
	Value    Value
	Cached   bool  // served from the memo table
	Seq      int64 // seq of the memo row
}

// Evaluate evaluates the named pipeline.
//
// Contract violations are reported in Result.Value (see Value.Failed), not
// as an error. The error is non-nil only when the pipeline cannot be
// evaluated at all: unknown pipeline or name, unresolved reference,
// StepsExceededError, or a store failure.
func (e *Engine) Evaluate(ctx context.Context, name string) (Result, error) {
	for _, spec := range e.prog.Pipelines {
		if spec.Name == name {
			return e.EvaluateSpec(ctx, spec)
		}
	}
	return Result{}, &RuntimeError{
		Code:     ErrCodeUnknownPipeline,
		Message:  "no such pipeline",
		Pipeline: name,
	}
}

// Resolve expands the named pipeline without evaluating it. The result's
// Key is the memo key Evaluate would use.
func (e *Engine) Resolve(name string) (ResolvedPipeline, error) {
	for _, spec := range e.prog.Pipelines {
		if spec.Name == name {
			e.mu.Lock()
			defer e.mu.Unlock()
			return resolvePipeline(spec, e.resolver, e.registry)
		}
	}
	return ResolvedPipeline{}, &RuntimeError{
		Code:     ErrCodeUnknownPipeline,
		Message:  "no such pipeline",
		Pipeline: name,
	}
}

// EvaluateAll evaluates every pipeline of the program in order. It stops
// at the first error.
func (e *Engine) EvaluateAll(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(e.prog.Pipelines))
	for _, spec := range e.prog.Pipelines {
		r, err := e.EvaluateSpec(ctx, spec)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// EvaluateSpec evaluates a pipeline that need not be declared in the
// program. Its references still resolve against the program.
func (e *Engine) EvaluateSpec(ctx context.Context, spec ir.PipelineSpec) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := checkSteps(spec.Name, len(spec.Steps), e.maxSteps); err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rp, err := resolvePipeline(spec, e.resolver, e.registry)
	if err != nil {
		return Result{}, err
	}
	key, err := rp.Key()
	if err != nil {
		return Result{}, fmt.Errorf("evaluate %s: %w", spec.Name, err)
	}

	result := Result{Pipeline: spec.Name, Key: key, Terminal: rp.Terminal.Op}

	hit, found, err := e.memo.get(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate %s: %w", spec.Name, err)
	}
	if found {
		e.stats.Hits++
		result.Value = hit.value
		result.Cached = true
		result.Seq = hit.seq
		e.logResult(result)
		return result, nil
	}

	value, err := e.compute(rp)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate %s: %w", spec.Name, err)
	}

	specText, err := rp.Marshal()
	if err != nil {
		return Result{}, err
	}
	valueText, err := value.Marshal()
	if err != nil {
		return Result{}, err
	}

	result.Value = value
	result.Seq = e.clock.Next()
	err = e.memo.put(ctx, ir.MemoEntry{
		Key:      key,
		Pipeline: spec.Name,
		Spec:     specText,
		Result:   valueText,
		RunID:    e.runID,
		Seq:      result.Seq,
	}, value)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate %s: %w", spec.Name, err)
	}

	e.stats.Computed++
	e.logResult(result)
	return result, nil
}

func (e *Engine) logResult(r Result) {
	ev := e.logger.Debug()
	if r.Value.Failed() {
		ev = e.logger.Info().Str("code", string(r.Value.Code))
	}
	ev.Str("pipeline", r.Pipeline).
		Str("key", r.Key[:12]).
		Str("terminal", r.Terminal).
		Bool("cached", r.Cached).
		Int64("seq", r.Seq).
		Str("value", r.Value.String()).
		Msg("pipeline evaluated")
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/kindseq/internal/engine"
	"github.com/roach88/kindseq/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database  string // optional persistent memo table
	CacheSize int

	// RunIDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// EvalResult is one evaluated pipeline.
type EvalResult struct {
	Pipeline string `json:"pipeline"`
	Terminal string `json:"terminal"`
	Type     string `json:"type"`           // kind, int, bool or error
	Value    string `json:"value"`          // rendered value or error message
	Code     string `json:"code,omitempty"` // contract error code
	Cached   bool   `json:"cached"`
	Seq      int64  `json:"seq"`
	Key      string `json:"key"`
}

// EvalSummary holds the results of an eval invocation.
type EvalSummary struct {
	RunID   string       `json:"run_id"`
	Results []EvalResult `json:"results"`
	Hits    int          `json:"hits"`
	Misses  int          `json:"computed"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <specs-dir> [pipeline...]",
		Short: "Evaluate pipelines of a CUE program",
		Long: `Evaluate the named pipelines, or every pipeline when none is named.

Results are memoized by the structure of the resolved pipeline. With --db
the memo table persists in a SQLite database across invocations, and
later runs are served from it.

A contract violation such as OUT_OF_BOUNDS is an ordinary result and does
not fail the command.

Examples:
  kindseq eval ./specs
  kindseq eval ./specs reversed small --db ./memo.db
  kindseq eval ./specs --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite memo database")
	cmd.Flags().IntVar(&opts.CacheSize, "cache-size", engine.DefaultCacheSize, "in-memory memo entries")

	return cmd
}

func runEval(opts *EvalOptions, specsDir string, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := formatter.Logger()

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := engine.DefaultRegistry()
	loaded, err := LoadSpecs(specsDir, registry)
	if err != nil {
		return loadFailure(formatter, err)
	}
	if err := requireValid(formatter, loaded); err != nil {
		return err
	}
	logger.Info().Str("dir", specsDir).Int("pipelines", len(loaded.Program.Pipelines)).Msg("program loaded")

	engOpts := []engine.Option{
		engine.WithRegistry(registry),
		engine.WithLogger(logger),
		engine.WithCacheSize(opts.CacheSize),
	}
	if opts.RunIDs != nil {
		engOpts = append(engOpts, engine.WithRunID(opts.RunIDs))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		engOpts = append(engOpts, engine.WithStore(st))
	}

	eng, err := engine.New(ctx, loaded.Program, engOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	if len(names) == 0 {
		for _, spec := range loaded.Program.Pipelines {
			names = append(names, spec.Name)
		}
	}

	summary := EvalSummary{RunID: eng.RunID(), Results: make([]EvalResult, 0, len(names))}
	for _, name := range names {
		r, err := eng.Evaluate(ctx, name)
		if err != nil {
			_ = formatter.Error(ErrCodeEvalFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to evaluate %s", name), err)
		}
		summary.Results = append(summary.Results, toEvalResult(r))
	}
	stats := eng.Stats()
	summary.Hits, summary.Misses = stats.Hits, stats.Computed

	if opts.Format == "json" {
		return formatter.Respond(CLIResponse{Status: "ok", Data: summary, RunID: summary.RunID})
	}
	return outputEvalText(formatter, summary)
}

func toEvalResult(r engine.Result) EvalResult {
	out := EvalResult{
		Pipeline: r.Pipeline,
		Terminal: r.Terminal,
		Type:     string(r.Value.Type),
		Value:    r.Value.String(),
		Cached:   r.Cached,
		Seq:      r.Seq,
		Key:      r.Key,
	}
	if r.Value.Failed() {
		out.Code = string(r.Value.Code)
	}
	return out
}

func outputEvalText(formatter *OutputFormatter, summary EvalSummary) error {
	w := formatter.Writer
	for _, r := range summary.Results {
		cached := ""
		if r.Cached {
			cached = " (cached)"
		}
		if r.Code != "" {
			fmt.Fprintf(w, "✗ %s: %s: %s%s\n", r.Pipeline, r.Code, r.Value, cached)
			continue
		}
		fmt.Fprintf(w, "✓ %s = %s%s\n", r.Pipeline, r.Value, cached)
	}
	fmt.Fprintf(w, "\n%d evaluated, %d memo hit(s), %d computed\n", len(summary.Results), summary.Hits, summary.Misses)
	return nil
}

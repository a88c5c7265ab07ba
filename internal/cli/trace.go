package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kindseq/internal/engine"
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/queryir"
	"github.com/roach88/kindseq/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	RunID     string // optional - rows first written by this run
	Pipeline  string // optional - filter to one pipeline name
	KeyPrefix string // optional - memo keys starting with this prefix
	Engine    string // optional - rows written by runs of this engine version
}

// TraceEntry is one memo row in the timeline.
type TraceEntry struct {
	Seq      int64  `json:"seq"`
	RunID    string `json:"run_id"`
	Pipeline string `json:"pipeline"`
	Key      string `json:"key"`
	Value    string `json:"value"` // rendered result
	Code     string `json:"code,omitempty"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Rows           int `json:"rows"`
	Runs           int `json:"runs"`
	ContractErrors int `json:"contract_errors"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Runs     []ir.Run     `json:"runs"`
	Timeline []TraceEntry `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the memo table timeline",
		Long: `Show the rows of a persistent memo table in logical clock order.

Every row records the run that first computed it. Later runs that hit the
row write nothing, so a run's own timeline lists only what it computed.

Examples:
  kindseq trace --db ./memo.db
  kindseq trace --db ./memo.db --run 0192f8a0-...
  kindseq trace --db ./memo.db --pipeline reversed --format json
  kindseq trace --db ./memo.db --key 3f2a --engine 0.1.0`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite memo database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only rows written by this run")
	cmd.Flags().StringVar(&opts.Pipeline, "pipeline", "", "only rows of this pipeline name")
	cmd.Flags().StringVar(&opts.KeyPrefix, "key", "", "only rows whose memo key starts with this prefix")
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "only rows written by runs of this engine version")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(opts.Database); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	result, err := buildTrace(ctx, st, opts)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read memo table", err)
	}

	if opts.Format == "json" {
		return formatter.Respond(CLIResponse{Status: "ok", Data: result})
	}
	return outputTraceText(formatter, result)
}

// buildTrace reads the runs and the memo rows matching the filter flags.
func buildTrace(ctx context.Context, st *store.Store, opts *TraceOptions) (TraceResult, error) {
	result := TraceResult{Runs: []ir.Run{}, Timeline: []TraceEntry{}}

	if opts.RunID != "" {
		state, err := st.GetRunState(ctx, opts.RunID)
		if err != nil {
			return result, err
		}
		result.Runs = append(result.Runs, state.Run)
	} else {
		runs, err := st.ReadRuns(ctx)
		if err != nil {
			return result, err
		}
		result.Runs = append(result.Runs, runs...)
	}

	entries, err := st.FindResults(ctx, traceQuery(opts))
	if err != nil {
		return result, err
	}

	for _, e := range entries {
		entry := TraceEntry{
			Seq:      e.Seq,
			RunID:    e.RunID,
			Pipeline: e.Pipeline,
			Key:      e.Key,
			Value:    e.Result,
		}
		if v, err := engine.DecodeValue(e.Result); err == nil {
			entry.Value = v.String()
			if v.Failed() {
				entry.Code = string(v.Code)
				result.Stats.ContractErrors++
			}
		}
		result.Timeline = append(result.Timeline, entry)
	}

	result.Stats.Rows = len(result.Timeline)
	result.Stats.Runs = len(result.Runs)
	return result, nil
}

// traceQuery turns the filter flags into a memo row query.
func traceQuery(opts *TraceOptions) queryir.Query {
	var preds []queryir.Predicate
	if opts.RunID != "" {
		preds = append(preds, queryir.Equals{Field: "run_id", Value: opts.RunID})
	}
	if opts.Pipeline != "" {
		preds = append(preds, queryir.Equals{Field: "pipeline", Value: opts.Pipeline})
	}
	if opts.KeyPrefix != "" {
		preds = append(preds, queryir.HasPrefix{Field: "key", Prefix: opts.KeyPrefix})
	}

	var filter queryir.Predicate
	if len(preds) > 0 {
		filter = queryir.And{Predicates: preds}
	}
	if opts.Engine != "" {
		return queryir.MemoRowsOfEngine(opts.Engine, filter)
	}
	return queryir.MemoRows(filter)
}

func outputTraceText(formatter *OutputFormatter, result TraceResult) error {
	w := formatter.Writer

	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No memo rows found.")
		return nil
	}

	fmt.Fprintln(w, "Timeline:")
	for _, e := range result.Timeline {
		value := e.Value
		if e.Code != "" {
			value = e.Code + ": " + e.Value
		}
		fmt.Fprintf(w, "  [%d] %s = %s\n", e.Seq, e.Pipeline, value)
		if formatter.Verbose {
			fmt.Fprintf(w, "      key %s, run %s\n", e.Key, e.RunID)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%d row(s) from %d run(s), %d contract error(s)\n",
		result.Stats.Rows, result.Stats.Runs, result.Stats.ContractErrors)
	return nil
}

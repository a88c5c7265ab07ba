package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kindseq/internal/engine"
	"github.com/roach88/kindseq/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <specs-dir>",
		Short: "Recompute the memo table and verify determinism",
		Long: `Recompute every row of a persistent memo table and compare it with
what was stored.

Each row carries its resolved pipeline, so rows written by other programs
are checked too. The program in <specs-dir> supplies the registry names
the stored pipelines refer to.

Exit codes:
  0 - Every row reproduced
  1 - At least one row differs
  2 - Command error (database not found, etc.)

Examples:
  kindseq replay ./specs --db ./memo.db
  kindseq replay ./specs --db ./memo.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite memo database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	registry := engine.DefaultRegistry()
	loaded, err := LoadSpecs(specsDir, registry)
	if err != nil {
		return loadFailure(formatter, err)
	}
	if err := requireValid(formatter, loaded); err != nil {
		return err
	}

	if _, err := os.Stat(opts.Database); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	eng, err := engine.New(ctx, loaded.Program,
		engine.WithStore(st),
		engine.WithRegistry(registry),
		engine.WithLogger(formatter.Logger()),
	)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	report, err := eng.Replay(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, report)
	}
	return outputReplayText(formatter, report)
}

func outputReplayJSON(formatter *OutputFormatter, report engine.ReplayReport) error {
	resp := CLIResponse{Status: "ok", Data: report}
	if !report.OK() {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    "E_NONDETERMINISTIC",
			Message: fmt.Sprintf("%d of %d row(s) did not reproduce", len(report.Mismatches), report.Checked),
		}
	}
	if err := formatter.Respond(resp); err != nil {
		return err
	}

	if !report.OK() {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(formatter *OutputFormatter, report engine.ReplayReport) error {
	w := formatter.Writer

	if report.Checked == 0 {
		fmt.Fprintln(w, "No memo rows found in database.")
		return nil
	}

	for _, m := range report.Mismatches {
		fmt.Fprintf(w, "✗ %s [%s] %s differs\n", m.Pipeline, shortKey(m.Key), m.Field)
		fmt.Fprintf(w, "  stored:     %s\n", m.Stored)
		fmt.Fprintf(w, "  recomputed: %s\n", m.Recomputed)
	}

	if report.OK() {
		fmt.Fprintf(w, "✓ All %d row(s) verified deterministic\n", report.Checked)
		return nil
	}

	fmt.Fprintf(w, "✗ Determinism verification failed: %d of %d row(s) differ\n", len(report.Mismatches), report.Checked)
	return NewExitError(ExitFailure, "determinism verification failed")
}

package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/kindseq/internal/compiler"
	"github.com/roach88/kindseq/internal/engine"
	"github.com/roach88/kindseq/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledPipeline is one pipeline with its resolved form and memo key.
type CompiledPipeline struct {
	Name     string `json:"name"`
	Input    string `json:"input"` // rendered input sequence
	Steps    int    `json:"steps"`
	Terminal string `json:"terminal"`
	Key      string `json:"key"`
}

// CompilationResult holds the compiled program.
type CompilationResult struct {
	Kinds     map[string]int64   `json:"kinds"`     // atom sizes
	Sequences map[string]string  `json:"sequences"` // rendered expansions
	Pipelines []CompiledPipeline `json:"pipelines"`

	resolved []engine.ResolvedPipeline
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Resolve a CUE program to canonical pipelines",
		Long: `Compile a CUE program and resolve every pipeline against it.

Each pipeline is expanded into the structural form the memo table stores
and keyed by the hash of its canonical encoding. With --output the
canonical encodings are written to a file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	registry := engine.DefaultRegistry()
	loaded, err := LoadSpecs(specsDir, registry)
	if err != nil {
		return loadFailure(formatter, err)
	}
	if err := requireValid(formatter, loaded); err != nil {
		return err
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)

	result, err := compileProgram(cmd.Context(), loaded.Program, registry, formatter)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}

	if opts.Output != "" {
		if err := writeResolved(result, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func compileProgram(ctx context.Context, prog *ir.Program, registry *engine.Registry, formatter *OutputFormatter) (*CompilationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &CompilationResult{
		Kinds:     make(map[string]int64, len(prog.Kinds)),
		Sequences: make(map[string]string, len(prog.Sequences)),
		Pipelines: make([]CompiledPipeline, 0, len(prog.Pipelines)),
	}
	for name, atom := range prog.Kinds {
		result.Kinds[name] = atom.Size
	}

	resolver := compiler.NewResolver(prog)
	for name := range prog.Sequences {
		s, err := resolver.Sequence(name)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", name, err)
		}
		result.Sequences[name] = s.String()
	}

	eng, err := engine.New(ctx, prog, engine.WithRegistry(registry), engine.WithLogger(formatter.Logger()))
	if err != nil {
		return nil, err
	}
	for _, spec := range prog.Pipelines {
		formatter.VerboseLog("Resolving pipeline: %s", spec.Name)

		rp, err := eng.Resolve(spec.Name)
		if err != nil {
			return nil, err
		}
		key, err := rp.Key()
		if err != nil {
			return nil, err
		}
		result.Pipelines = append(result.Pipelines, CompiledPipeline{
			Name:     spec.Name,
			Input:    rp.Input.String(),
			Steps:    len(rp.Steps),
			Terminal: rp.Terminal.Op,
			Key:      key,
		})
		result.resolved = append(result.resolved, rp)
	}

	return result, nil
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d kind(s), %d sequence(s), %d pipeline(s)\n\n",
		len(result.Kinds), len(result.Sequences), len(result.Pipelines))

	if len(result.Sequences) > 0 {
		fmt.Fprintln(w, "Sequences:")
		for _, name := range slices.Sorted(maps.Keys(result.Sequences)) {
			fmt.Fprintf(w, "  %s = %s\n", name, result.Sequences[name])
		}
		fmt.Fprintln(w)
	}

	if len(result.Pipelines) > 0 {
		fmt.Fprintln(w, "Pipelines:")
		for _, p := range result.Pipelines {
			fmt.Fprintf(w, "  %s: %s, %d step(s) → %s [%s]\n", p.Name, p.Input, p.Steps, p.Terminal, shortKey(p.Key))
		}
		fmt.Fprintln(w)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote canonical pipelines to %s\n", outputFile)
	}

	return nil
}

// writeResolved writes the canonical encoding of every resolved pipeline,
// keyed by pipeline name.
func writeResolved(result *CompilationResult, filename string) error {
	pipelines := make(map[string]any, len(result.resolved))
	for _, rp := range result.resolved {
		pipelines[rp.Name] = rp.Encode()
	}

	data, err := ir.MarshalCanonical(map[string]any{
		"ir_version": ir.IRVersion,
		"pipelines":  pipelines,
	})
	if err != nil {
		return fmt.Errorf("marshaling pipelines: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// shortKey abbreviates a memo key for text output.
func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

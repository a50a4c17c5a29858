package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roach88/gqlc/internal/cache"
	"github.com/roach88/gqlc/internal/compiler"
	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/engine"
	"github.com/roach88/gqlc/internal/metrics"
	"github.com/roach88/gqlc/internal/printer"
	"github.com/roach88/gqlc/internal/syntax"
	"github.com/roach88/gqlc/internal/transforms"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Metadata   bool     // print required metadata comments
	MetricsOut string   // Prometheus text file written after the run
	Stages     []string // pipeline stage names; empty means the default pipeline
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [documents...]",
		Short: "Compile documents and print the transformed programs",
		Long: `Compile GraphQL documents against the schema.

Each document is built into the IR independently, run through the
default transform pipeline and printed. A rejected document prints its
sorted diagnostics instead; other documents are unaffected. Files and
directories given as arguments replace the config's document list.`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Metadata, "metadata", false, "print @required bubbling metadata as comments")
	cmd.Flags().StringVar(&opts.MetricsOut, "metrics-out", "", "write pipeline metrics to this file in Prometheus text format")
	cmd.Flags().StringSliceVar(&opts.Stages, "stages", nil, "pipeline stages to run, in order (default skip_unreachable,required_directive)")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
	logger := newLogger(formatter.GetErrWriter(), opts.Verbose)

	stages, err := resolveStages(opts.Stages)
	if err != nil {
		return commandError(formatter, err)
	}

	project, err := LoadProject(opts.RootOptions, args)
	if err != nil {
		return commandError(formatter, err)
	}
	formatter.VerboseLog("Found %d document(s)", len(project.Inputs))

	var store *cache.Cache
	if project.Cache != "" {
		store, err = cache.Open(project.Cache)
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error(), Err: err})
		}
		defer store.Close()
		logger.Debug("cache opened", "path", project.Cache, "run_id", store.RunID())
	}

	reg := prometheus.NewRegistry()
	pipeline := engine.New(stages,
		engine.WithLogger(logger),
		engine.WithMetrics(metrics.New(reg)),
	)

	reports, err := compileProject(ctx, project, pipeline, store, opts.Metadata, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "compile failed", err)
	}

	if opts.MetricsOut != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsOut, reg); err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing metrics: %v", err), Err: err})
		}
	}

	if err := formatter.Documents(reports, project.Sources()); err != nil {
		return err
	}
	return failureExit(reports)
}

// compileProject produces one report per input, in input order. Documents
// with a cache hit are not recompiled; every fresh result that is a
// program or a diagnostic set is written back.
func compileProject(
	ctx context.Context,
	project *Project,
	pipeline *engine.Engine,
	store *cache.Cache,
	metadata bool,
	logger *slog.Logger,
) ([]DocumentReport, error) {
	reports := make([]DocumentReport, len(project.Inputs))
	keys := make([]string, len(project.Inputs))

	var (
		pending    []*syntax.Document
		pendingIdx []int
	)
	for i, in := range project.Inputs {
		if in.Doc == nil {
			reports[i] = newReport(in.Key, "", in.Err)
			continue
		}
		if store != nil {
			key, err := cache.Key(project.Schema.Fingerprint(), in.Doc, project.Flags, pipeline.Stages())
			if err != nil {
				logger.Warn("cache key failed", "source", in.Key, "error", err)
			} else {
				keys[i] = key
				entry, hit, err := store.Get(ctx, key)
				switch {
				case err != nil:
					logger.Warn("cache read failed", "source", in.Key, "error", err)
				case hit:
					reports[i] = reportFromEntry(in.Key, entry, metadata)
					continue
				}
			}
		}
		pending = append(pending, in.Doc)
		pendingIdx = append(pendingIdx, i)
	}

	results, err := compiler.CompileAll(ctx, project.Schema, pending, pipeline, project.Flags, project.Parallelism)
	if err != nil {
		return nil, err
	}
	if err := compiler.Errors(results); err != nil {
		logger.Debug("documents rejected", "count", len(multierr.Errors(err)), "error", err)
	}

	for j, r := range results {
		i := pendingIdx[j]
		var entry cache.Entry
		if r.Err == nil {
			entry.Output = printer.PrintProgram(r.Program)
			entry.Annotated = printer.PrintProgram(r.Program, printer.WithMetadata())
		} else if ds, ok := diag.As(r.Err); ok {
			entry.Diagnostics = ds.Sorted()
		}

		output := entry.Output
		if metadata {
			output = entry.Annotated
		}
		reports[i] = newReport(r.Key, output, r.Err)

		cacheable := r.Err == nil || entry.Failed()
		if store != nil && keys[i] != "" && cacheable {
			if err := store.Put(ctx, keys[i], r.Key, entry); err != nil {
				logger.Warn("cache write failed", "source", r.Key, "error", err)
			}
		}
	}
	return reports, nil
}

// resolveStages maps stage names to transforms. No names selects the
// default pipeline.
func resolveStages(names []string) ([]engine.Transform, error) {
	if len(names) == 0 {
		return transforms.DefaultStages(), nil
	}
	stages := make([]engine.Transform, 0, len(names))
	for _, name := range names {
		t, ok := transforms.ByName(name)
		if !ok {
			return nil, &LoadError{Code: ErrCodeStage, Message: fmt.Sprintf("unknown stage %q", name)}
		}
		stages = append(stages, t)
	}
	return stages, nil
}

func reportFromEntry(source diag.SourceKey, e cache.Entry, metadata bool) DocumentReport {
	var r DocumentReport
	switch {
	case e.Failed():
		r = newReport(source, "", e.Diagnostics)
	case metadata:
		r = newReport(source, e.Annotated, nil)
	default:
		r = newReport(source, e.Output, nil)
	}
	r.Cached = true
	return r
}

// failureExit returns an ExitFailure error when any document failed.
func failureExit(reports []DocumentReport) error {
	failed := 0
	for i := range reports {
		if reports[i].Failed() {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d of %d document(s) failed", failed, len(reports)))
}

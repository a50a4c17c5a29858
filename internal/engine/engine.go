package engine

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/metrics"
)

// Transform is one pipeline stage. Transform must not modify p; it returns
// a new Program or an error. A diag.Diagnostics error rejects the program.
type Transform interface {
	Name() string
	Transform(p *ir.Program, flags config.FeatureFlags) (*ir.Program, error)
}

// TransformFunc is the signature of a stage body.
type TransformFunc func(p *ir.Program, flags config.FeatureFlags) (*ir.Program, error)

type funcTransform struct {
	name string
	fn   TransformFunc
}

func (f funcTransform) Name() string { return f.name }

func (f funcTransform) Transform(p *ir.Program, flags config.FeatureFlags) (*ir.Program, error) {
	return f.fn(p, flags)
}

// Func adapts fn into a named Transform.
func Func(name string, fn TransformFunc) Transform {
	return funcTransform{name: name, fn: fn}
}

// StageError wraps a non-diagnostic failure from a stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Engine applies its stages in order.
type Engine struct {
	stages  []Transform // fixed at construction
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics records stage outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// New creates an Engine running stages in the given order. The slice is
// copied so later changes by the caller do not affect the pipeline.
func New(stages []Transform, opts ...Option) *Engine {
	e := &Engine{
		stages: slices.Clone(stages),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stages returns the stage names in execution order.
func (e *Engine) Stages() []string {
	names := make([]string, len(e.stages))
	for i, s := range e.stages {
		names[i] = s.Name()
	}
	return names
}

// Run threads p through every stage. It returns the final Program, or the
// sorted diagnostics of the first stage that rejected its input. The input
// Program is never modified.
//
// A stage returning a nil Program without an error violates the Transform
// contract and panics.
func (e *Engine) Run(p *ir.Program, flags config.FeatureFlags) (*ir.Program, error) {
	if p == nil {
		panic("engine: Run called with a nil program")
	}

	current := p
	for _, stage := range e.stages {
		name := stage.Name()
		e.logger.Debug("stage starting", "stage", name)

		start := time.Now()
		next, err := stage.Transform(current, flags)
		elapsed := time.Since(start)

		if err != nil {
			if ds, ok := diag.As(err); ok {
				e.metrics.ObserveStage(name, metrics.OutcomeDiagnostics, elapsed)
				e.metrics.ObserveDiagnostics(ds)
				e.logger.Info("stage rejected program",
					"stage", name,
					"diagnostics", len(ds),
				)
				return nil, ds.Sorted()
			}
			e.metrics.ObserveStage(name, metrics.OutcomeError, elapsed)
			e.logger.Error("stage failed", "stage", name, "error", err)
			return nil, &StageError{Stage: name, Err: err}
		}
		if next == nil {
			panic(fmt.Sprintf("engine: stage %q returned neither a program nor an error", name))
		}

		e.metrics.ObserveStage(name, metrics.OutcomeSuccess, elapsed)
		e.logger.Debug("stage finished",
			"stage", name,
			"duration", elapsed,
			"diagnostics", 0,
		)
		current = next
	}
	return current, nil
}

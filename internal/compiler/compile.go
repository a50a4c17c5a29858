package compiler

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/engine"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/schema"
	"github.com/roach88/gqlc/internal/syntax"
)

// Compile builds doc against s and runs it through pipeline. The result is
// either the transformed Program or the diagnostics of the builder or of
// the first rejecting stage.
func Compile(s *schema.Schema, doc *syntax.Document, pipeline *engine.Engine, flags config.FeatureFlags) (*ir.Program, error) {
	p, err := Build(s, doc)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(p, flags)
}

// Result is the outcome of compiling one document.
type Result struct {
	Key     diag.SourceKey
	Program *ir.Program
	Err     error
}

// CompileAll compiles each document independently and in parallel, at
// most limit at a time (GOMAXPROCS when limit <= 0). results[i] belongs to
// docs[i]; a failing document never affects another. The returned error is
// non-nil only when ctx is cancelled before every document started.
func CompileAll(
	ctx context.Context,
	s *schema.Schema,
	docs []*syntax.Document,
	pipeline *engine.Engine,
	flags config.FeatureFlags,
	limit int,
) ([]Result, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, doc := range docs {
		results[i].Key = doc.Key
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			results[i].Program, results[i].Err = Compile(s, doc, pipeline, flags)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("compile cancelled: %w", err)
	}
	return results, nil
}

// Errors combines the failures of results, in document order.
func Errors(results []Result) error {
	var err error
	for _, r := range results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Key, r.Err))
		}
	}
	return err
}

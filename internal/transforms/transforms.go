// Package transforms holds the semantic transform stages run by the
// engine.
package transforms

import (
	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/engine"
	"github.com/roach88/gqlc/internal/ir"
)

// NoOpName is the pipeline name of the identity stage.
const NoOpName = "noop"

// NoOp returns its input unchanged.
func NoOp() engine.Transform {
	return engine.Func(NoOpName, func(p *ir.Program, _ config.FeatureFlags) (*ir.Program, error) {
		return p, nil
	})
}

// DefaultStages is the pipeline used by the CLI.
func DefaultStages() []engine.Transform {
	return []engine.Transform{
		SkipUnreachable(),
		RequiredDirective(),
	}
}

// ByName resolves a stage name.
func ByName(name string) (engine.Transform, bool) {
	switch name {
	case NoOpName:
		return NoOp(), true
	case SkipUnreachableName:
		return SkipUnreachable(), true
	case RequiredDirectiveName:
		return RequiredDirective(), true
	default:
		return nil, false
	}
}

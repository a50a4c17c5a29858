package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/gqlc/internal/compiler"
	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/engine"
	"github.com/roach88/gqlc/internal/printer"
	"github.com/roach88/gqlc/internal/syntax"
	"github.com/roach88/gqlc/internal/testutil"
	"github.com/roach88/gqlc/internal/transforms"
)

const fixtureExt = ".graphql"

// LoadFixture reads one fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	fileName := filepath.Base(path)
	return &Fixture{
		Name:     strings.TrimSuffix(fileName, fixtureExt),
		FileName: fileName,
		Content:  string(data),
	}, nil
}

// LoadFixtures reads every .graphql file in dir, sorted by name.
func LoadFixtures(dir string) ([]*Fixture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+fixtureExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	sort.Strings(paths)

	fixtures := make([]*Fixture, 0, len(paths))
	for _, path := range paths {
		f, err := LoadFixture(path)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// fixtureFlags enables the required transform for every definition.
func fixtureFlags() config.FeatureFlags {
	return config.FeatureFlags{EnableRequiredTransformForPrefix: config.Prefix("")}
}

// TransformFixture compiles the fixture against the test schema, extended
// by any SDL after the %extensions% marker, and runs the required-directive
// transform on every definition.
//
// On success it returns the fragments then the operations, printed with
// their required metadata and joined by a blank line. A rejected document
// yields a *DiagnosticsError whose message is the sorted diagnostic
// rendering. Any other error means the fixture itself could not be run.
func TransformFixture(f *Fixture) (string, error) {
	base, ext, _, err := syntax.SplitExtensions(f.Content)
	if err != nil {
		return "", fmt.Errorf("invalid fixture %s: %w", f.FileName, err)
	}

	s, err := testutil.LoadSchema(ext)
	if err != nil {
		return "", fmt.Errorf("load schema for %s: %w", f.FileName, err)
	}

	key := diag.SourceKey(f.FileName)
	sources := diag.Sources{key: base}

	doc, err := syntax.Parse(key, base)
	if err != nil {
		return "", rejected(err, sources)
	}

	pipeline := engine.New([]engine.Transform{transforms.RequiredDirective()})
	p, err := compiler.Compile(s, doc, pipeline, fixtureFlags())
	if err != nil {
		return "", rejected(err, sources)
	}
	return printer.PrintProgram(p, printer.WithMetadata()), nil
}

func rejected(err error, sources diag.Sources) error {
	ds, ok := diag.As(err)
	if !ok {
		return err
	}
	return &DiagnosticsError{Rendered: ds.SortedString(sources), Diagnostics: ds}
}

// Package testutil provides the shared test schema and helpers for
// building and comparing programs in tests.
package testutil

import (
	_ "embed"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/schema"
	"github.com/roach88/gqlc/internal/syntax"
)

// SchemaSourceName is the source key of the test schema.
const SchemaSourceName = "schema.graphql"

// ExtensionsSourceName is the source key of fixture schema extensions.
const ExtensionsSourceName = "extensions.graphql"

//go:embed testdata/schema.graphql
var schemaSDL string

// SchemaSDL returns the test schema text.
func SchemaSDL() string {
	return schemaSDL
}

var loadBase = sync.OnceValues(func() (*schema.Schema, error) {
	return schema.Load(&ast.Source{Name: SchemaSourceName, Input: schemaSDL})
})

// LoadSchema returns the test schema, extended with ext when it is not
// empty. The unextended schema is loaded once and shared.
func LoadSchema(ext string) (*schema.Schema, error) {
	if ext == "" {
		return loadBase()
	}
	return schema.Load(
		&ast.Source{Name: SchemaSourceName, Input: schemaSDL},
		&ast.Source{Name: ExtensionsSourceName, Input: ext},
	)
}

// Schema returns the shared test schema.
func Schema(t testing.TB) *schema.Schema {
	t.Helper()
	s, err := LoadSchema("")
	require.NoError(t, err)
	return s
}

// SchemaWithExtensions returns the test schema extended with ext.
func SchemaWithExtensions(t testing.TB, ext string) *schema.Schema {
	t.Helper()
	s, err := LoadSchema(ext)
	require.NoError(t, err)
	return s
}

// ParseDocument parses text under key and fails the test on a syntax
// error.
func ParseDocument(t testing.TB, key, text string) *syntax.Document {
	t.Helper()
	doc, err := syntax.Parse(diag.SourceKey(key), text)
	require.NoError(t, err)
	return doc
}

// ProgramSnapshot exposes a Program's arena and definitions for cmp.
type ProgramSnapshot struct {
	Nodes      []ir.Selection
	Fragments  []*ir.Fragment
	Operations []*ir.Operation
}

// Snapshot captures p.
func Snapshot(p *ir.Program) ProgramSnapshot {
	s := ProgramSnapshot{
		Nodes:      make([]ir.Selection, p.Len()),
		Fragments:  p.Fragments(),
		Operations: p.Operations(),
	}
	for i := range s.Nodes {
		s.Nodes[i] = p.Node(ir.SelectionID(i))
	}
	return s
}

// ProgramOptions compares programs structurally: schema definitions by
// identity, types by their printed form, and source locations ignored.
func ProgramOptions() []cmp.Option {
	return []cmp.Option{
		cmpopts.IgnoreTypes(diag.Location{}),
		cmpopts.EquateEmpty(),
		cmp.Comparer(func(a, b *ast.Definition) bool { return a == b }),
		cmp.Comparer(func(a, b *ast.FieldDefinition) bool { return a == b }),
		cmp.Comparer(func(a, b *ast.DirectiveDefinition) bool { return a == b }),
		cmp.Comparer(func(a, b *ast.Type) bool {
			if a == nil || b == nil {
				return a == b
			}
			return a.String() == b.String()
		}),
	}
}

// DiffPrograms returns a human-readable diff, empty when a and b are
// structurally equal.
func DiffPrograms(a, b *ir.Program) string {
	return cmp.Diff(Snapshot(a), Snapshot(b), ProgramOptions()...)
}

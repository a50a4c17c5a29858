package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlc/internal/diag"
)

func TestParse(t *testing.T) {
	text := "fragment F on User {\n  name\n}\n\nquery Q {\n  me {\n    ...F\n  }\n}\n"
	doc, err := Parse("q.graphql", text)
	require.NoError(t, err)

	assert.Equal(t, diag.SourceKey("q.graphql"), doc.Key)
	require.Len(t, doc.AST.Fragments, 1)
	require.Len(t, doc.AST.Operations, 1)
	assert.Equal(t, "F", doc.AST.Fragments[0].Name)
	assert.Equal(t, "Q", doc.AST.Operations[0].Name)
	assert.Equal(t, diag.Sources{"q.graphql": text}, doc.Sources())

	field := doc.AST.Fragments[0].SelectionSet[0]
	loc := diag.FromPosition(field.GetPosition())
	assert.Equal(t, diag.Location{Source: "q.graphql", Start: 23, End: 27, Line: 2, Column: 3}, loc)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("bad.graphql", "fragment F on User {\n  name(\n}\n")
	require.Error(t, err)

	ds, ok := diag.As(err)
	require.True(t, ok)
	require.Len(t, ds, 1)
	assert.Equal(t, diag.ErrSyntax, ds[0].Code)
	assert.Equal(t, diag.SourceKey("bad.graphql"), ds[0].Location.Source)
	assert.Equal(t, 3, ds[0].Location.Line)
}

func TestSplitExtensions(t *testing.T) {
	base, ext, ok, err := SplitExtensions("fragment F on User { name }\n%extensions%\nextend type User { nick: String }\n")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fragment F on User { name }\n", base)
	assert.Equal(t, "extend type User { nick: String }", ext)

	base, ext, ok, err = SplitExtensions("query Q { me { id } }")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "query Q { me { id } }", base)
	assert.Empty(t, ext)
}

func TestSplitExtensions_MultipleMarkers(t *testing.T) {
	_, _, _, err := SplitExtensions("query Q { me { id } }\n%extensions%\nextend type User { a: Int }\n%extensions%\nextend type User { b: Int }")
	assert.ErrorIs(t, err, ErrMultipleExtensions)
}

func TestMergeSources(t *testing.T) {
	a := &Document{Key: "a", Text: "A"}
	b := &Document{Key: "b", Text: "B"}
	assert.Equal(t, diag.Sources{"a": "A", "b": "B"}, MergeSources(a, nil, b))
}

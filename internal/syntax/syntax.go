// Package syntax adapts gqlparser's query parser. It produces untyped
// documents consumed once by the IR builder.
package syntax

import (
	"errors"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/roach88/gqlc/internal/diag"
)

// ExtensionsMarker separates a fixture's document from its schema
// extension.
const ExtensionsMarker = "%extensions%"

// Document is one parsed source file.
type Document struct {
	Key  diag.SourceKey
	Text string
	AST  *ast.QueryDocument
}

// Parse parses text as an executable document. A parse failure is returned
// as diag.Diagnostics holding one E001 diagnostic.
func Parse(key diag.SourceKey, text string) (*Document, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: string(key), Input: text})
	if err != nil {
		return nil, diag.FromParserError(diag.ErrSyntax, key, err)
	}
	return &Document{Key: key, Text: text, AST: doc}, nil
}

// Sources returns the source map for rendering diagnostic excerpts.
func (d *Document) Sources() diag.Sources {
	return diag.Sources{d.Key: d.Text}
}

// MergeSources combines the source maps of several documents.
func MergeSources(docs ...*Document) diag.Sources {
	out := make(diag.Sources, len(docs))
	for _, d := range docs {
		if d != nil {
			out[d.Key] = d.Text
		}
	}
	return out
}

// ErrMultipleExtensions is returned for content with more than one
// extensions marker.
var ErrMultipleExtensions = errors.New("more than one " + ExtensionsMarker + " marker")

// SplitExtensions splits fixture content on the extensions marker. The
// base keeps its original offsets so diagnostics line up with the file.
// When the marker is absent, ext is empty and ok is false. Content with a
// second marker is rejected with ErrMultipleExtensions.
func SplitExtensions(content string) (base, ext string, ok bool, err error) {
	base, ext, ok = strings.Cut(content, ExtensionsMarker)
	if !ok {
		return content, "", false, nil
	}
	if strings.Contains(ext, ExtensionsMarker) {
		return "", "", false, ErrMultipleExtensions
	}
	return base, strings.TrimSpace(ext), true, nil
}

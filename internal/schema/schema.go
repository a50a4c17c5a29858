// Package schema wraps a gqlparser type system as the read-only Schema
// Model consumed by the IR builder and transforms.
//
// A Schema is immutable after construction and safe to share between
// goroutines. Every loaded schema carries the compiler's built-in
// extension (the RequiredFieldAction enum and the @required directive).
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/roach88/gqlc/internal/canonical"
	"github.com/roach88/gqlc/internal/diag"
)

// BuiltinSourceName names the source holding the compiler's extension.
const BuiltinSourceName = "<gqlc builtins>"

// RequiredDirective is the directive handled by the required transform.
const RequiredDirective = "required"

// RequiredActionEnum is the enum type of @required's action argument.
const RequiredActionEnum = "RequiredFieldAction"

const builtinSDL = `enum RequiredFieldAction {
  THROW
  LOG
  CATCH
}

directive @required(action: RequiredFieldAction!) on FIELD
`

// Schema is the immutable type universe.
type Schema struct {
	ast         *ast.Schema
	fingerprint string
}

var typenameField = &ast.FieldDefinition{
	Name: "__typename",
	Type: ast.NonNullNamedType("String", nil),
}

// Load parses SDL sources together with the built-in extension. Failures
// are returned as diag.Diagnostics with code E002.
func Load(sources ...*ast.Source) (*Schema, error) {
	all := make([]*ast.Source, 0, len(sources)+1)
	all = append(all, sources...)
	all = append(all, &ast.Source{Name: BuiltinSourceName, Input: builtinSDL, BuiltIn: true})

	fallback := diag.SourceKey(BuiltinSourceName)
	if len(sources) > 0 {
		fallback = diag.SourceKey(sources[0].Name)
	}
	s, err := gqlparser.LoadSchema(all...)
	if err != nil {
		return nil, diag.FromParserError(diag.ErrSchemaLoad, fallback, err)
	}
	if err := checkExtensions(all); err != nil {
		return nil, err
	}

	parts := make(canonical.Array, 0, len(sources))
	for _, src := range sources {
		parts = append(parts, canonical.Object{
			"name":  canonical.String(src.Name),
			"input": canonical.String(src.Input),
		})
	}
	fp, err := canonical.Hash(canonical.DomainSchema, parts)
	if err != nil {
		return nil, fmt.Errorf("fingerprint schema: %w", err)
	}
	return &Schema{ast: s, fingerprint: fp}, nil
}

// checkExtensions reports every type extension whose target is not defined
// by any source. gqlparser creates such types from the extension alone.
func checkExtensions(sources []*ast.Source) error {
	doc, err := parser.ParseSchemas(append([]*ast.Source{validator.Prelude}, sources...)...)
	if err != nil {
		return diag.FromParserError(diag.ErrSchemaLoad, diag.SourceKey(sources[0].Name), err)
	}

	defined := make(map[string]bool, len(doc.Definitions))
	for _, def := range doc.Definitions {
		defined[def.Name] = true
	}
	var diags diag.Collector
	for _, ext := range doc.Extensions {
		if !defined[ext.Name] {
			diags.Errorf(diag.ErrSchemaLoad, diag.FromPosition(ext.Position),
				"cannot extend type '%s' because it is not defined", ext.Name)
		}
	}
	return diags.Err()
}

// FromAST wraps an already validated schema. The fingerprint is derived
// from the type system itself since no SDL text is available.
func FromAST(s *ast.Schema) *Schema {
	return &Schema{ast: s, fingerprint: canonical.MustHash(canonical.DomainSchema, structuralDigest(s))}
}

// AST exposes the underlying gqlparser schema. Callers must not modify it.
func (s *Schema) AST() *ast.Schema { return s.ast }

// Fingerprint is a stable content hash of the schema.
func (s *Schema) Fingerprint() string { return s.fingerprint }

// Type returns the named type definition, or nil.
func (s *Schema) Type(name string) *ast.Definition {
	return s.ast.Types[name]
}

// RootType returns the root type for an operation kind, or nil when the
// schema does not support it.
func (s *Schema) RootType(op ast.Operation) *ast.Definition {
	switch op {
	case ast.Query, "":
		return s.ast.Query
	case ast.Mutation:
		return s.ast.Mutation
	case ast.Subscription:
		return s.ast.Subscription
	default:
		return nil
	}
}

// Field looks up a field on a composite type. __typename is defined on
// every composite type.
func (s *Schema) Field(parent *ast.Definition, name string) *ast.FieldDefinition {
	if parent == nil {
		return nil
	}
	if name == typenameField.Name && parent.IsCompositeType() {
		return typenameField
	}
	if parent.Kind == ast.Union {
		return nil
	}
	return parent.Fields.ForName(name)
}

// Directive returns the named directive definition, or nil.
func (s *Schema) Directive(name string) *ast.DirectiveDefinition {
	return s.ast.Directives[name]
}

// PossibleTypes lists the object types a value of def can have at runtime.
func (s *Schema) PossibleTypes(def *ast.Definition) []*ast.Definition {
	if def == nil {
		return nil
	}
	if def.Kind == ast.Object {
		return []*ast.Definition{def}
	}
	return s.ast.GetPossibleTypes(def)
}

// CanSpread reports whether a fragment typed fragType may be spread inside
// a selection set of type parent, i.e. whether their possible types
// overlap.
func (s *Schema) CanSpread(parent, fragType *ast.Definition) bool {
	if parent == nil || fragType == nil {
		return false
	}
	if parent.Name == fragType.Name {
		return true
	}
	inParent := make(map[string]struct{})
	for _, def := range s.PossibleTypes(parent) {
		inParent[def.Name] = struct{}{}
	}
	for _, def := range s.PossibleTypes(fragType) {
		if _, ok := inParent[def.Name]; ok {
			return true
		}
	}
	return false
}

// IsInputType reports whether t names a scalar, enum or input object.
func (s *Schema) IsInputType(t *ast.Type) bool {
	def := s.Type(t.Name())
	if def == nil {
		return false
	}
	switch def.Kind {
	case ast.Scalar, ast.Enum, ast.InputObject:
		return true
	default:
		return false
	}
}

// IsLeaf reports whether the named type of t is a scalar or enum.
func (s *Schema) IsLeaf(t *ast.Type) bool {
	def := s.Type(t.Name())
	return def != nil && def.IsLeafType()
}

// IsVariableUsageAllowed applies the variable-in-allowed-position rule: a
// nullable variable may flow into a non-null location only when either
// side supplies a default.
func (s *Schema) IsVariableUsageAllowed(varType *ast.Type, varHasDefault bool, locType *ast.Type, locHasDefault bool) bool {
	if locType.NonNull && !varType.NonNull {
		if !varHasDefault && !locHasDefault {
			return false
		}
		return isSubType(varType, nullable(locType))
	}
	return isSubType(varType, locType)
}

func isSubType(sub, super *ast.Type) bool {
	if super.NonNull {
		if !sub.NonNull {
			return false
		}
		return isSubType(nullable(sub), nullable(super))
	}
	if sub.NonNull {
		return isSubType(nullable(sub), super)
	}
	if super.Elem != nil {
		return sub.Elem != nil && isSubType(sub.Elem, super.Elem)
	}
	if sub.Elem != nil {
		return false
	}
	return sub.NamedType == super.NamedType
}

func nullable(t *ast.Type) *ast.Type {
	c := *t
	c.NonNull = false
	return &c
}

// IsNullable reports whether a field of type t may resolve to null.
func IsNullable(t *ast.Type) bool {
	return t != nil && !t.NonNull
}

// IsList reports whether t is a list type, ignoring non-null wrapping.
func IsList(t *ast.Type) bool {
	return t != nil && t.Elem != nil
}

func structuralDigest(s *ast.Schema) []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		def := s.Types[name]
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s", def.Kind, def.Name)
		for _, f := range def.Fields {
			fmt.Fprintf(&b, " %s:%s", f.Name, f.Type.String())
		}
		for _, v := range def.EnumValues {
			fmt.Fprintf(&b, " %s", v.Name)
		}
		out = append(out, b.String())
	}
	return out
}

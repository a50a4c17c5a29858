// Package compiler turns parsed documents into a type-checked ir.Program
// and drives the end-to-end compile pipeline.
//
// The IR builder is fail-slow: every definition is visited and every
// selection checked, and the full diagnostic set is returned together. A
// Program is produced only when no diagnostic was found.
package compiler

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/schema"
	"github.com/roach88/gqlc/internal/syntax"
)

// Build type-checks every definition of docs against s. It returns either
// a Program or a diag.Diagnostics error holding every problem found.
func Build(s *schema.Schema, docs ...*syntax.Document) (*ir.Program, error) {
	b := &builder{
		schema:    s,
		pb:        ir.NewProgramBuilder(s),
		fragments: make(map[string]*ast.FragmentDefinition),
	}

	var fragments []*ast.FragmentDefinition
	var operations []*ast.OperationDefinition
	opNames := make(map[string]*ast.OperationDefinition)

	// E203: definition names are unique per namespace
	for _, doc := range docs {
		if doc == nil || doc.AST == nil {
			panic("compiler: Build called with an unparsed document")
		}
		for _, f := range doc.AST.Fragments {
			if first, dup := b.fragments[f.Name]; dup {
				b.diags.Errorf(diag.ErrDuplicateDefinition, diag.FromPosition(f.Position),
					"duplicate fragment '%s'", f.Name).
					WithRelated(diag.FromPosition(first.Position), "first defined here")
				continue
			}
			b.fragments[f.Name] = f
			fragments = append(fragments, f)
		}
		for _, op := range doc.AST.Operations {
			if op.Name != "" {
				if first, dup := opNames[op.Name]; dup {
					b.diags.Errorf(diag.ErrDuplicateDefinition, diag.FromPosition(op.Position),
						"duplicate operation '%s'", op.Name).
						WithRelated(diag.FromPosition(first.Position), "first defined here")
					continue
				}
				opNames[op.Name] = op
			}
			operations = append(operations, op)
		}
	}

	for _, f := range fragments {
		d := b.newDef()
		if frag := d.buildFragment(f); frag != nil {
			b.pb.AddFragment(frag)
		}
		b.diags.Merge(&d.diags)
	}

	b.checkFragmentCycles()

	for _, op := range operations {
		d := b.newDef()
		if o := d.buildOperation(op); o != nil {
			b.pb.AddOperation(o)
		}
		b.diags.Merge(&d.diags)
	}

	if err := b.diags.Err(); err != nil {
		return nil, err
	}
	return b.pb.Build(), nil
}

// builder holds state shared by every definition of one Build call.
type builder struct {
	schema *schema.Schema
	pb     *ir.ProgramBuilder
	diags  diag.Collector

	// fragments maps each name to its first definition.
	fragments map[string]*ast.FragmentDefinition
}

// defBuilder checks one definition and accumulates its own diagnostics
// and variable usages.
type defBuilder struct {
	*builder
	diags  diag.Collector
	usages []ir.VariableUsage
}

func (b *builder) newDef() *defBuilder {
	return &defBuilder{builder: b}
}

func (d *defBuilder) buildFragment(f *ast.FragmentDefinition) *ir.Fragment {
	loc := diag.FromPosition(f.Position)
	typeCond := d.resolveTypeCondition(f.TypeCondition, f.Position)
	directives, _, _ := d.buildDirectives(f.Directives, ast.LocationFragmentDefinition)
	if typeCond == nil {
		return nil
	}
	selections := d.buildSelectionSet(typeCond, f.SelectionSet)
	return &ir.Fragment{
		Name:                f.Name,
		TypeCondition:       typeCond,
		Directives:          directives,
		Selections:          selections,
		UsedGlobalVariables: d.usages,
		Loc:                 loc,
	}
}

func (d *defBuilder) buildOperation(op *ast.OperationDefinition) *ir.Operation {
	loc := diag.FromPosition(op.Position)

	// E201: operations must be named
	named := op.Name != ""
	if !named {
		d.diags.Errorf(diag.ErrExpectedOperationName, loc, "%s operation must be named", operationKind(op.Operation))
	}

	// E202: schema must define the root type
	root := d.schema.RootType(op.Operation)
	if root == nil {
		d.diags.Errorf(diag.ErrUnsupportedOperation, loc,
			"schema does not define a root type for %s operations", operationKind(op.Operation))
	}

	vars, declared := d.buildVariableDefinitions(op.VariableDefinitions)
	directives, _, _ := d.buildDirectives(op.Directives, operationLocation(op.Operation))
	if root == nil {
		return nil
	}
	selections := d.buildSelectionSet(root, op.SelectionSet)
	d.checkVariableUsages(op.Name, selections, vars, declared)

	if !named {
		return nil
	}
	return &ir.Operation{
		Kind:                operationKind(op.Operation),
		Name:                op.Name,
		Type:                root,
		VariableDefinitions: vars,
		Directives:          directives,
		Selections:          selections,
		Loc:                 loc,
	}
}

// resolveTypeCondition checks that name is a composite type.
func (d *defBuilder) resolveTypeCondition(name string, pos *ast.Position) *ast.Definition {
	def := d.schema.Type(name)

	// E204: type must exist
	if def == nil {
		d.diags.Errorf(diag.ErrUnknownType, diag.FromPosition(pos), "unknown type '%s'", name)
		return nil
	}

	// E205: type conditions must be composite
	if !def.IsCompositeType() {
		d.diags.Errorf(diag.ErrInvalidTypeCondition, diag.FromPosition(pos),
			"fragment cannot condition on non-composite type '%s'", name)
		return nil
	}
	return def
}

func operationKind(op ast.Operation) ast.Operation {
	if op == "" {
		return ast.Query
	}
	return op
}

func operationLocation(op ast.Operation) ast.DirectiveLocation {
	switch operationKind(op) {
	case ast.Mutation:
		return ast.LocationMutation
	case ast.Subscription:
		return ast.LocationSubscription
	default:
		return ast.LocationQuery
	}
}

// unreachable reports a caller contract violation.
func unreachable(format string, args ...any) {
	panic(fmt.Sprintf("compiler: "+format, args...))
}

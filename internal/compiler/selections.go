package compiler

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
)

// buildSelectionSet checks every selection of set against parent and
// returns the ids of the nodes that could be built.
func (d *defBuilder) buildSelectionSet(parent *ast.Definition, set ast.SelectionSet) []ir.SelectionID {
	var ids []ir.SelectionID
	for _, sel := range set {
		var id ir.SelectionID
		switch sel := sel.(type) {
		case *ast.Field:
			id = d.buildField(parent, sel)
		case *ast.FragmentSpread:
			id = d.buildFragmentSpread(parent, sel)
		case *ast.InlineFragment:
			id = d.buildInlineFragment(parent, sel)
		default:
			unreachable("unrecognized selection %T", sel)
		}
		if id != ir.NoSelection {
			ids = append(ids, id)
		}
	}
	return ids
}

func (d *defBuilder) buildField(parent *ast.Definition, f *ast.Field) ir.SelectionID {
	loc := diag.FromPosition(f.Position)
	fieldDef := d.schema.Field(parent, f.Name)
	directives, conds, action := d.buildDirectives(f.Directives, ast.LocationField)

	// E206: field must exist on the parent type
	if fieldDef == nil {
		d.diags.Errorf(diag.ErrUnknownField, loc, "unknown field '%s' on type '%s'", f.Name, parent.Name)
		return ir.NoSelection
	}

	owner := "field '" + parent.Name + "." + f.Name + "'"
	args := d.buildArguments(fieldDef.Arguments, f.Arguments, owner, loc)

	var children []ir.SelectionID
	childType := d.schema.Type(fieldDef.Type.Name())
	switch {
	case childType != nil && childType.IsCompositeType():
		// E207: composite fields need a selection set
		if len(f.SelectionSet) == 0 {
			d.diags.Errorf(diag.ErrMissingSelections, loc,
				"field '%s' of type '%s' must have a selection of subfields", f.Name, fieldDef.Type.String())
			return ir.NoSelection
		}
		children = d.buildSelectionSet(childType, f.SelectionSet)
	case len(f.SelectionSet) > 0:
		// E208: leaf fields must not have a selection set
		d.diags.Errorf(diag.ErrUnexpectedSelections, loc,
			"field '%s' must not have a selection since type '%s' has no subfields", f.Name, fieldDef.Type.String())
		return ir.NoSelection
	}

	alias := f.Alias
	if alias == "" {
		alias = f.Name
	}
	id := d.pb.Add(ir.Selection{
		Kind:           ir.KindField,
		Loc:            loc,
		Parent:         parent,
		Alias:          alias,
		Name:           f.Name,
		Definition:     fieldDef,
		Type:           fieldDef.Type,
		Arguments:      args,
		RequiredAction: action,
		Directives:     directives,
		Children:       children,
	})
	return d.wrapConditions(parent, conds, []ir.SelectionID{id})
}

func (d *defBuilder) buildFragmentSpread(parent *ast.Definition, s *ast.FragmentSpread) ir.SelectionID {
	loc := diag.FromPosition(s.Position)
	directives, conds, _ := d.buildDirectives(s.Directives, ast.LocationFragmentSpread)

	// E213: spread fragments must be defined
	def, ok := d.fragments[s.Name]
	if !ok {
		d.diags.Errorf(diag.ErrUndefinedFragment, loc, "unknown fragment '%s'", s.Name)
		return ir.NoSelection
	}

	// E214: the fragment's type must overlap the parent type. Invalid type
	// conditions are reported on the fragment itself.
	if fragType := d.schema.Type(def.TypeCondition); fragType != nil && fragType.IsCompositeType() {
		if !d.schema.CanSpread(parent, fragType) {
			d.diags.Errorf(diag.ErrInvalidFragmentSpread, loc,
				"fragment '%s' cannot be spread here: objects of type '%s' can never be of type '%s'",
				s.Name, parent.Name, fragType.Name).
				WithRelated(diag.FromPosition(def.Position), "fragment defined here")
			return ir.NoSelection
		}
	}

	id := d.pb.Add(ir.Selection{
		Kind:       ir.KindFragmentSpread,
		Loc:        loc,
		Parent:     parent,
		Fragment:   s.Name,
		Directives: directives,
	})
	return d.wrapConditions(parent, conds, []ir.SelectionID{id})
}

func (d *defBuilder) buildInlineFragment(parent *ast.Definition, f *ast.InlineFragment) ir.SelectionID {
	loc := diag.FromPosition(f.Position)
	directives, conds, _ := d.buildDirectives(f.Directives, ast.LocationInlineFragment)

	childParent := parent
	var typeCond *ast.Definition
	if f.TypeCondition != "" {
		typeCond = d.resolveTypeCondition(f.TypeCondition, f.Position)
		if typeCond == nil {
			return ir.NoSelection
		}
		// E214: the type condition must overlap the parent type
		if !d.schema.CanSpread(parent, typeCond) {
			d.diags.Errorf(diag.ErrInvalidFragmentSpread, loc,
				"inline fragment cannot be spread here: objects of type '%s' can never be of type '%s'",
				parent.Name, typeCond.Name)
			return ir.NoSelection
		}
		childParent = typeCond
	}

	children := d.buildSelectionSet(childParent, f.SelectionSet)

	// A bare guard such as `... @include(if: $x) { ... }` is the condition
	// itself.
	if typeCond == nil && len(directives) == 0 && len(conds) > 0 {
		return d.wrapConditions(parent, conds, children)
	}

	id := d.pb.Add(ir.Selection{
		Kind:          ir.KindInlineFragment,
		Loc:           loc,
		Parent:        parent,
		TypeCondition: typeCond,
		Directives:    directives,
		Children:      children,
	})
	return d.wrapConditions(parent, conds, []ir.SelectionID{id})
}

// wrapConditions nests inner under one Condition node per guard, the first
// guard outermost. With no guards inner must hold exactly one node.
func (d *defBuilder) wrapConditions(parent *ast.Definition, conds []condition, inner []ir.SelectionID) ir.SelectionID {
	if len(conds) == 0 {
		if len(inner) != 1 {
			unreachable("wrapConditions without guards needs one node, got %d", len(inner))
		}
		return inner[0]
	}
	children := inner
	var id ir.SelectionID
	for i := len(conds) - 1; i >= 0; i-- {
		c := conds[i]
		id = d.pb.Add(ir.Selection{
			Kind:     ir.KindCondition,
			Loc:      c.loc,
			Parent:   parent,
			If:       c.value,
			Passing:  c.passing,
			Children: children,
		})
		children = []ir.SelectionID{id}
	}
	return id
}

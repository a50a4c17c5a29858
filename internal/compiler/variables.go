package compiler

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
)

// buildVariableDefinitions resolves operation variables to schema input
// types. Invalid definitions are reported and left out of vars but still
// listed in declared.
func (d *defBuilder) buildVariableDefinitions(list ast.VariableDefinitionList) (vars []ir.VariableDefinition, declared map[string]bool) {
	declared = make(map[string]bool, len(list))
	seen := make(map[string]*ast.VariableDefinition, len(list))
	for _, vd := range list {
		loc := diag.FromPosition(vd.Position)
		directives, _, _ := d.buildDirectives(vd.Directives, ast.LocationVariableDefinition)
		declared[vd.Variable] = true

		// E221: variable names are unique
		if first, dup := seen[vd.Variable]; dup {
			d.diags.Errorf(diag.ErrDuplicateVariable, loc, "duplicate variable '$%s'", vd.Variable).
				WithRelated(diag.FromPosition(first.Position), "first defined here")
			continue
		}
		seen[vd.Variable] = vd

		// E204: the named type must exist
		if d.schema.Type(vd.Type.Name()) == nil {
			d.diags.Errorf(diag.ErrUnknownType, loc, "unknown type '%s'", vd.Type.Name())
			continue
		}

		// E220: variables carry input types
		if !d.schema.IsInputType(vd.Type) {
			d.diags.Errorf(diag.ErrInvalidVariableType, loc,
				"variable '$%s' cannot be of non-input type '%s'", vd.Variable, vd.Type.String())
			continue
		}

		def := ir.VariableDefinition{
			Name:       vd.Variable,
			Type:       vd.Type,
			Directives: directives,
			Loc:        loc,
		}
		if vd.DefaultValue != nil {
			v := d.buildValue(vd.DefaultValue, vd.Type, false, true)
			def.Default = &v
		}
		vars = append(vars, def)
	}
	return vars, declared
}

// checkVariableUsages checks every usage reachable from roots, including
// usages inside transitively spread fragments, against vars. Names in
// declared whose definition was invalid are already reported.
func (d *defBuilder) checkVariableUsages(opName string, roots []ir.SelectionID, vars []ir.VariableDefinition, declared map[string]bool) {
	byName := make(map[string]ir.VariableDefinition, len(vars))
	for _, v := range vars {
		byName[v.Name] = v
	}
	used := make(map[string]bool)

	for _, u := range d.reachableUsages(roots) {
		used[u.Name] = true
		def, ok := byName[u.Name]
		if !ok {
			if declared[u.Name] {
				continue
			}
			// E222: usages need a definition
			d.diags.Errorf(diag.ErrUndefinedVariable, u.Loc,
				"variable '$%s' is not defined by %s", u.Name, describeOperation(opName))
			continue
		}
		// E224: variable type must fit the usage position
		if !d.schema.IsVariableUsageAllowed(def.Type, def.Default != nil, u.Type, u.HasDefault) {
			d.diags.Errorf(diag.ErrVariableTypeMismatch, u.Loc,
				"variable '$%s' of type '%s' used in position expecting type '%s'",
				u.Name, def.Type.String(), u.Type.String()).
				WithRelated(def.Loc, "variable defined here")
		}
	}

	// E223: every definition must be used
	for _, v := range vars {
		if !used[v.Name] {
			d.diags.Errorf(diag.ErrUnusedVariable, v.Loc,
				"variable '$%s' is never used in %s", v.Name, describeOperation(opName))
		}
	}
}

// reachableUsages returns the definition's own usages followed by those of
// every fragment reachable through spreads under roots, breadth first.
// Cycles are tolerated; they are reported separately.
func (d *defBuilder) reachableUsages(roots []ir.SelectionID) []ir.VariableUsage {
	usages := append([]ir.VariableUsage(nil), d.usages...)
	queue := ir.FragmentSpreads(d.pb, roots)
	visited := make(map[string]bool)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true
		frag := d.pb.Fragment(name)
		if frag == nil {
			continue
		}
		usages = append(usages, frag.UsedGlobalVariables...)
		queue = append(queue, ir.FragmentSpreads(d.pb, frag.Selections)...)
	}
	return usages
}

func describeOperation(name string) string {
	if name == "" {
		return "anonymous operation"
	}
	return "operation '" + name + "'"
}

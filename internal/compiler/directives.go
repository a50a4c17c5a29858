package compiler

import (
	"slices"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/schema"
)

// condition is a resolved @include or @skip guard.
type condition struct {
	value   ir.Value
	passing bool
	loc     diag.Location
}

// buildDirectives checks directive applications at location. Guards are
// returned separately as conditions in application order; the @required
// action, when present and valid, is resolved into action. Every other
// directive (including @required itself) is kept in directives.
func (d *defBuilder) buildDirectives(list ast.DirectiveList, location ast.DirectiveLocation) (directives []ir.Directive, conds []condition, action ir.RequiredAction) {
	seen := make(map[string]*ast.Directive)
	for _, dir := range list {
		loc := diag.FromPosition(dir.Position)
		def := d.schema.Directive(dir.Name)

		// E216: directive must be defined
		if def == nil {
			d.diags.Errorf(diag.ErrUnknownDirective, loc, "unknown directive '@%s'", dir.Name)
			continue
		}

		// E217: directive must be allowed at this location
		if !slices.Contains(def.Locations, location) {
			d.diags.Errorf(diag.ErrMisplacedDirective, loc,
				"directive '@%s' may not be used on %s", dir.Name, location)
			continue
		}

		// E218: non-repeatable directives appear at most once
		if first, dup := seen[dir.Name]; dup && !def.IsRepeatable {
			d.diags.Errorf(diag.ErrRepeatedDirective, loc,
				"directive '@%s' can only be used once at this location", dir.Name).
				WithRelated(diag.FromPosition(first.Position), "first used here")
			continue
		}
		seen[dir.Name] = dir

		owner := "directive '@" + dir.Name + "'"
		var args []ir.Argument
		if dir.Name == schema.RequiredDirective {
			var ok bool
			args, action, ok = d.buildRequired(def, dir, loc)
			if !ok {
				continue
			}
		} else {
			args = d.buildArguments(def.Arguments, dir.Arguments, owner, loc)
		}

		switch dir.Name {
		case "include", "skip":
			if arg, ok := findArgument(args, "if"); ok {
				conds = append(conds, condition{value: arg.Value, passing: dir.Name == "include", loc: loc})
			}
			continue
		}
		directives = append(directives, ir.Directive{
			Name:       dir.Name,
			Arguments:  args,
			Definition: def,
			Loc:        loc,
		})
	}
	return directives, conds, action
}

// buildRequired resolves @required's action once, at build time, into the
// closed action set.
func (d *defBuilder) buildRequired(def *ast.DirectiveDefinition, dir *ast.Directive, loc diag.Location) ([]ir.Argument, ir.RequiredAction, bool) {
	var rest ast.ArgumentList
	var actionArg *ast.Argument
	for _, a := range dir.Arguments {
		if a.Name != "action" {
			rest = append(rest, a)
			continue
		}
		// E210: arguments are unique
		if actionArg != nil {
			d.diags.Errorf(diag.ErrDuplicateArgument, diag.FromPosition(a.Position), "duplicate argument 'action'").
				WithRelated(diag.FromPosition(actionArg.Position), "first given here")
			continue
		}
		actionArg = a
	}

	restDefs := slices.DeleteFunc(slices.Clone(def.Arguments), func(a *ast.ArgumentDefinition) bool {
		return a.Name == "action"
	})
	args := d.buildArguments(restDefs, rest, "directive '@required'", loc)

	// E211: action is mandatory
	if actionArg == nil {
		d.diags.Errorf(diag.ErrMissingRequiredArgument, loc,
			"missing required argument 'action' on directive '@required'")
		return nil, 0, false
	}
	actionLoc := diag.FromPosition(actionArg.Position)
	v := actionArg.Value

	// E240: action must be a literal
	if v.Kind == ast.Variable {
		d.diags.Errorf(diag.ErrRequiredActionNotLiteral, actionLoc,
			"@required action must be a literal value, found variable '$%s'", v.Raw)
		return nil, 0, false
	}

	// E241: action must be one of the closed set
	action, ok := ir.ParseRequiredAction(v.Raw)
	if v.Kind != ast.EnumValue || !ok {
		d.diags.Errorf(diag.ErrUnknownRequiredAction, actionLoc,
			"unknown @required action %s, expected one of THROW, LOG, CATCH", v.String())
		return nil, 0, false
	}

	actionDef := def.Arguments.ForName("action")
	args = append([]ir.Argument{{
		Name:  "action",
		Value: ir.Value{Kind: ir.ValueEnum, Raw: v.Raw, Loc: diag.FromPosition(v.Position)},
		Type:  actionDef.Type,
		Loc:   actionLoc,
	}}, args...)
	return args, action, true
}

func findArgument(args []ir.Argument, name string) (ir.Argument, bool) {
	for _, a := range args {
		if a.Name == name {
			return a, true
		}
	}
	return ir.Argument{}, false
}

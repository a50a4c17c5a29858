package compiler

import (
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
)

// buildArguments checks args against defs. owner names the field or
// directive for messages and ownerLoc anchors missing-argument errors.
func (d *defBuilder) buildArguments(defs ast.ArgumentDefinitionList, args ast.ArgumentList, owner string, ownerLoc diag.Location) []ir.Argument {
	var out []ir.Argument
	seen := make(map[string]*ast.Argument, len(args))
	for _, a := range args {
		loc := diag.FromPosition(a.Position)

		// E210: arguments are unique
		if first, dup := seen[a.Name]; dup {
			d.diags.Errorf(diag.ErrDuplicateArgument, loc, "duplicate argument '%s'", a.Name).
				WithRelated(diag.FromPosition(first.Position), "first given here")
			continue
		}
		seen[a.Name] = a

		// E209: argument must be defined
		def := defs.ForName(a.Name)
		if def == nil {
			d.diags.Errorf(diag.ErrUnknownArgument, loc, "unknown argument '%s' on %s", a.Name, owner)
			continue
		}

		out = append(out, ir.Argument{
			Name:  a.Name,
			Value: d.buildValue(a.Value, def.Type, def.DefaultValue != nil, false),
			Type:  def.Type,
			Loc:   loc,
		})
	}

	// E211: non-null arguments without default must be given
	for _, def := range defs {
		if def.Type.NonNull && def.DefaultValue == nil {
			if _, ok := seen[def.Name]; !ok {
				d.diags.Errorf(diag.ErrMissingRequiredArgument, ownerLoc,
					"missing required argument '%s' on %s", def.Name, owner)
			}
		}
	}
	return out
}

// buildValue converts v and checks it against expected. Variable
// references are recorded as usages unless constOnly is set, in which case
// they are rejected.
func (d *defBuilder) buildValue(v *ast.Value, expected *ast.Type, locHasDefault, constOnly bool) ir.Value {
	loc := diag.FromPosition(v.Position)

	if v.Kind == ast.Variable {
		if constOnly {
			// E212: defaults are constant
			d.diags.Errorf(diag.ErrInvalidValue, loc, "unexpected variable '$%s' in constant value", v.Raw)
		} else {
			d.usages = append(d.usages, ir.VariableUsage{
				Name:       v.Raw,
				Type:       expected,
				HasDefault: locHasDefault,
				Loc:        loc,
			})
		}
		return ir.Value{Kind: ir.ValueVariable, Raw: v.Raw, Loc: loc}
	}

	switch v.Kind {
	case ast.NullValue:
		// E212: null only fits nullable types
		if expected.NonNull {
			d.invalidValue(v, expected)
		}
		return ir.Value{Kind: ir.ValueNull, Loc: loc}

	case ast.ListValue:
		if expected.Elem == nil {
			d.invalidValue(v, expected)
			return d.convertUnchecked(v)
		}
		items := make([]ir.Value, 0, len(v.Children))
		for _, child := range v.Children {
			items = append(items, d.buildValue(child.Value, expected.Elem, false, constOnly))
		}
		return ir.Value{Kind: ir.ValueList, List: items, Loc: loc}
	}

	// A single value is coerced to a one-element list.
	if expected.Elem != nil {
		return d.buildValue(v, expected.Elem, false, constOnly)
	}

	def := d.schema.Type(expected.NamedType)
	if def == nil {
		// Unknown types are reported where they are declared.
		return d.convertUnchecked(v)
	}

	switch def.Kind {
	case ast.Scalar:
		if !scalarAccepts(def.Name, v) {
			d.invalidValue(v, expected)
		}
		return d.convertUnchecked(v)

	case ast.Enum:
		if v.Kind != ast.EnumValue || def.EnumValues.ForName(v.Raw) == nil {
			d.invalidValue(v, expected)
		}
		return ir.Value{Kind: ir.ValueEnum, Raw: v.Raw, Loc: loc}

	case ast.InputObject:
		if v.Kind != ast.ObjectValue {
			d.invalidValue(v, expected)
			return d.convertUnchecked(v)
		}
		return d.buildInputObject(v, def, constOnly)

	default:
		d.invalidValue(v, expected)
		return d.convertUnchecked(v)
	}
}

func (d *defBuilder) buildInputObject(v *ast.Value, def *ast.Definition, constOnly bool) ir.Value {
	out := ir.Value{Kind: ir.ValueObject, Loc: diag.FromPosition(v.Position)}
	seen := make(map[string]bool, len(v.Children))
	for _, child := range v.Children {
		loc := diag.FromPosition(child.Position)
		if seen[child.Name] {
			d.diags.Errorf(diag.ErrInvalidValue, loc, "duplicate field '%s' in input object '%s'", child.Name, def.Name)
			continue
		}
		seen[child.Name] = true

		fieldDef := def.Fields.ForName(child.Name)
		if fieldDef == nil {
			d.diags.Errorf(diag.ErrInvalidValue, loc, "unknown field '%s' on input type '%s'", child.Name, def.Name)
			continue
		}
		out.Fields = append(out.Fields, ir.ObjectField{
			Name:  child.Name,
			Value: d.buildValue(child.Value, fieldDef.Type, fieldDef.DefaultValue != nil, constOnly),
			Loc:   loc,
		})
	}
	for _, fieldDef := range def.Fields {
		if fieldDef.Type.NonNull && fieldDef.DefaultValue == nil && !seen[fieldDef.Name] {
			d.diags.Errorf(diag.ErrInvalidValue, out.Loc,
				"missing required field '%s' of input type '%s'", fieldDef.Name, def.Name)
		}
	}
	return out
}

// E212: literal does not match the expected type
func (d *defBuilder) invalidValue(v *ast.Value, expected *ast.Type) {
	d.diags.Errorf(diag.ErrInvalidValue, diag.FromPosition(v.Position),
		"expected value of type '%s', found %s", expected.String(), v.String())
}

func scalarAccepts(name string, v *ast.Value) bool {
	switch name {
	case "Int":
		if v.Kind != ast.IntValue {
			return false
		}
		_, err := strconv.ParseInt(v.Raw, 10, 32)
		return err == nil
	case "Float":
		return v.Kind == ast.IntValue || v.Kind == ast.FloatValue
	case "String":
		return v.Kind == ast.StringValue || v.Kind == ast.BlockValue
	case "Boolean":
		return v.Kind == ast.BooleanValue
	case "ID":
		return v.Kind == ast.StringValue || v.Kind == ast.BlockValue || v.Kind == ast.IntValue
	default:
		// Custom scalars accept any literal.
		return true
	}
}

// convertUnchecked converts v without type checks. Nested variables are
// not recorded as usages since no expected type is known for them.
func (d *defBuilder) convertUnchecked(v *ast.Value) ir.Value {
	loc := diag.FromPosition(v.Position)
	switch v.Kind {
	case ast.Variable:
		return ir.Value{Kind: ir.ValueVariable, Raw: v.Raw, Loc: loc}
	case ast.IntValue:
		return ir.Value{Kind: ir.ValueInt, Raw: v.Raw, Loc: loc}
	case ast.FloatValue:
		return ir.Value{Kind: ir.ValueFloat, Raw: v.Raw, Loc: loc}
	case ast.StringValue, ast.BlockValue:
		return ir.Value{Kind: ir.ValueString, Raw: v.Raw, Loc: loc}
	case ast.BooleanValue:
		return ir.Value{Kind: ir.ValueBoolean, Raw: v.Raw, Loc: loc}
	case ast.NullValue:
		return ir.Value{Kind: ir.ValueNull, Loc: loc}
	case ast.EnumValue:
		return ir.Value{Kind: ir.ValueEnum, Raw: v.Raw, Loc: loc}
	case ast.ListValue:
		out := ir.Value{Kind: ir.ValueList, Loc: loc}
		for _, child := range v.Children {
			out.List = append(out.List, d.convertUnchecked(child.Value))
		}
		return out
	case ast.ObjectValue:
		out := ir.Value{Kind: ir.ValueObject, Loc: loc}
		for _, child := range v.Children {
			out.Fields = append(out.Fields, ir.ObjectField{
				Name:  child.Name,
				Value: d.convertUnchecked(child.Value),
				Loc:   diag.FromPosition(child.Position),
			})
		}
		return out
	default:
		unreachable("unrecognized value kind %d", v.Kind)
		return ir.Value{}
	}
}

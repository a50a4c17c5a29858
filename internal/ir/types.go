package ir

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/schema"
)

// SelectionID addresses a node in a Program's selection arena.
type SelectionID int32

// NoSelection is the sentinel for "no node".
const NoSelection SelectionID = -1

// SelectionKind discriminates Selection.
type SelectionKind uint8

const (
	KindField SelectionKind = iota + 1
	KindFragmentSpread
	KindInlineFragment
	KindCondition
)

func (k SelectionKind) String() string {
	switch k {
	case KindField:
		return "Field"
	case KindFragmentSpread:
		return "FragmentSpread"
	case KindInlineFragment:
		return "InlineFragment"
	case KindCondition:
		return "Condition"
	default:
		return fmt.Sprintf("SelectionKind(%d)", uint8(k))
	}
}

// Selection is one arena node. Which fields are meaningful depends on Kind:
//
//	Field:          Alias, Name, Definition, Type, Arguments, RequiredAction
//	FragmentSpread: Fragment
//	InlineFragment: TypeCondition (nil when omitted)
//	Condition:      If, Passing
//
// Parent is the type of the enclosing selection set for every kind.
// Children is empty for leaf fields and fragment spreads.
type Selection struct {
	Kind SelectionKind
	Loc  diag.Location

	Parent *ast.Definition

	// Alias is the response key; it equals Name when the field is not
	// aliased.
	Alias      string
	Name       string
	Definition *ast.FieldDefinition
	Type       *ast.Type
	Arguments  []Argument

	// RequiredAction is the @required action resolved at build time, zero
	// when the field carries no @required.
	RequiredAction RequiredAction

	// Required is bubbling metadata attached to a field that absorbs
	// required violations of its descendants.
	Required *RequiredMetadata

	Fragment string

	TypeCondition *ast.Definition

	// If is the guard value; Passing is the value of If for which the
	// children are selected (true for @include, false for @skip).
	If      Value
	Passing bool

	Directives []Directive
	Children   []SelectionID
}

// ResponseKey is the key a field contributes to the response.
func (s Selection) ResponseKey() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// ChildType returns the type of the selection set nested under s, or nil
// for leaves and spreads.
func (s Selection) ChildType(sch *schema.Schema) *ast.Definition {
	switch s.Kind {
	case KindField:
		if s.Type == nil {
			return nil
		}
		return sch.Type(s.Type.Name())
	case KindInlineFragment:
		if s.TypeCondition != nil {
			return s.TypeCondition
		}
		return s.Parent
	case KindCondition:
		return s.Parent
	default:
		return nil
	}
}

// Argument is a type-checked argument application.
type Argument struct {
	Name  string
	Value Value
	// Type is the declared input type; nil for undefined arguments that
	// never reach a built Program.
	Type *ast.Type
	Loc  diag.Location
}

// Directive is a directive application with checked arguments.
type Directive struct {
	Name       string
	Arguments  []Argument
	Definition *ast.DirectiveDefinition
	Loc        diag.Location
}

// Argument returns the named argument of d.
func (d Directive) Argument(name string) (Argument, bool) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// VariableDefinition is an operation variable resolved to a schema input
// type.
type VariableDefinition struct {
	Name       string
	Type       *ast.Type
	Default    *Value
	Directives []Directive
	Loc        diag.Location
}

// VariableUsage records a variable reference and the input type expected
// at its location.
type VariableUsage struct {
	Name string
	Type *ast.Type
	// HasDefault is set when the location itself has a default value.
	HasDefault bool
	Loc        diag.Location
}

// Fragment is a named fragment definition.
type Fragment struct {
	Name          string
	TypeCondition *ast.Definition
	Directives    []Directive
	Selections    []SelectionID

	// UsedGlobalVariables lists every variable referenced directly by the
	// fragment's own selections, in first-use order.
	UsedGlobalVariables []VariableUsage

	Required *RequiredMetadata
	Loc      diag.Location
}

// Operation is a named query, mutation or subscription.
type Operation struct {
	Kind                ast.Operation
	Name                string
	Type                *ast.Definition
	VariableDefinitions []VariableDefinition
	Directives          []Directive
	Selections          []SelectionID
	Required            *RequiredMetadata
	Loc                 diag.Location
}

// Variable returns the named variable definition.
func (o *Operation) Variable(name string) (VariableDefinition, bool) {
	for _, v := range o.VariableDefinitions {
		if v.Name == name {
			return v, true
		}
	}
	return VariableDefinition{}, false
}

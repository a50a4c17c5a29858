package ir

import (
	"github.com/roach88/gqlc/internal/diag"
)

// ValueKind discriminates Value.
type ValueKind uint8

const (
	ValueNull ValueKind = iota + 1
	ValueInt
	ValueFloat
	ValueString
	ValueBoolean
	ValueEnum
	ValueList
	ValueObject
	ValueVariable
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "Null"
	case ValueInt:
		return "Int"
	case ValueFloat:
		return "Float"
	case ValueString:
		return "String"
	case ValueBoolean:
		return "Boolean"
	case ValueEnum:
		return "Enum"
	case ValueList:
		return "List"
	case ValueObject:
		return "Object"
	case ValueVariable:
		return "Variable"
	default:
		return "Invalid"
	}
}

// Value is a type-checked argument or default value.
//
// Raw holds the literal text for Int, Float and Boolean, the decoded
// contents for String, the value name for Enum and the variable name
// (without $) for Variable.
type Value struct {
	Kind   ValueKind
	Raw    string
	List   []Value
	Fields []ObjectField
	Loc    diag.Location
}

// ObjectField is one entry of an input object literal, in source order.
type ObjectField struct {
	Name  string
	Value Value
	Loc   diag.Location
}

// IsConstant reports whether v contains no variable references.
func (v Value) IsConstant() bool {
	stack := []Value{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch cur.Kind {
		case ValueVariable:
			return false
		case ValueList:
			stack = append(stack, cur.List...)
		case ValueObject:
			for _, f := range cur.Fields {
				stack = append(stack, f.Value)
			}
		}
	}
	return true
}

// Variables returns the names of variables referenced by v in source
// order.
func (v Value) Variables() []string {
	var names []string
	stack := []Value{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch cur.Kind {
		case ValueVariable:
			names = append(names, cur.Raw)
		case ValueList:
			for i := len(cur.List) - 1; i >= 0; i-- {
				stack = append(stack, cur.List[i])
			}
		case ValueObject:
			for i := len(cur.Fields) - 1; i >= 0; i-- {
				stack = append(stack, cur.Fields[i].Value)
			}
		}
	}
	return names
}

// BoolLiteral returns the boolean held by a constant Boolean value.
func (v Value) BoolLiteral() (value, ok bool) {
	if v.Kind != ValueBoolean {
		return false, false
	}
	return v.Raw == "true", true
}

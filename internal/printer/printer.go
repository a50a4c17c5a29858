// Package printer renders a Program as canonical GraphQL text.
//
// Output is deterministic: definitions in source order, two-space
// indentation, arguments and directives in IR order. A chain of Condition
// nodes guarding a single field or fragment spread is printed as guard
// directives on that selection; any other Condition is printed as an
// inline fragment carrying the guard. The IR builder turns both forms back
// into the same Conditions.
package printer

import (
	"strings"

	"github.com/roach88/gqlc/internal/ir"
)

type options struct {
	metadata bool
}

// Option configures printing.
type Option func(*options)

// WithMetadata prints required bubbling metadata as a comment line at the
// top of each boundary's selection set.
func WithMetadata() Option {
	return func(o *options) {
		o.metadata = true
	}
}

// PrintProgram prints every fragment, then every operation, separated by
// one blank line.
func PrintProgram(p *ir.Program, opts ...Option) string {
	var parts []string
	for _, f := range p.Fragments() {
		parts = append(parts, PrintFragment(p, f, opts...))
	}
	for _, o := range p.Operations() {
		parts = append(parts, PrintOperation(p, o, opts...))
	}
	return strings.Join(parts, "\n\n")
}

// PrintFragment prints one fragment definition of p.
func PrintFragment(p *ir.Program, f *ir.Fragment, opts ...Option) string {
	w := newWriter(p, opts)
	w.WriteString("fragment ")
	w.WriteString(f.Name)
	w.WriteString(" on ")
	w.WriteString(f.TypeCondition.Name)
	w.directives(f.Directives)
	w.selectionSet(f.Selections, f.Required)
	return w.String()
}

// PrintOperation prints one operation definition of p.
func PrintOperation(p *ir.Program, o *ir.Operation, opts ...Option) string {
	w := newWriter(p, opts)
	w.WriteString(string(o.Kind))
	w.WriteByte(' ')
	w.WriteString(o.Name)
	if len(o.VariableDefinitions) > 0 {
		w.WriteByte('(')
		for i, v := range o.VariableDefinitions {
			if i > 0 {
				w.WriteString(", ")
			}
			w.WriteByte('$')
			w.WriteString(v.Name)
			w.WriteString(": ")
			w.WriteString(v.Type.String())
			if v.Default != nil {
				w.WriteString(" = ")
				w.value(*v.Default)
			}
			w.directives(v.Directives)
		}
		w.WriteByte(')')
	}
	w.directives(o.Directives)
	w.selectionSet(o.Selections, o.Required)
	return w.String()
}

type writer struct {
	strings.Builder
	p    *ir.Program
	opts options
}

func newWriter(p *ir.Program, opts []Option) *writer {
	w := &writer{p: p}
	for _, opt := range opts {
		opt(&w.opts)
	}
	return w
}

type frame struct {
	id    ir.SelectionID
	depth int
	close bool
}

// selectionSet prints " {", the children of a definition root and the
// closing brace. The tree is walked with an explicit stack.
func (w *writer) selectionSet(roots []ir.SelectionID, meta *ir.RequiredMetadata) {
	w.WriteString(" {\n")
	w.metadata(meta, 1)

	stack := make([]frame, 0, len(roots))
	pushChildren := func(ids []ir.SelectionID, depth int) {
		for i := len(ids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: ids[i], depth: depth})
		}
	}
	pushChildren(roots, 1)

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if fr.close {
			w.indent(fr.depth)
			w.WriteString("}\n")
			continue
		}

		sel, guards := w.fold(w.p.Node(fr.id))
		w.indent(fr.depth)
		w.selectionHead(sel)
		for _, g := range guards {
			w.guard(g)
		}
		if len(sel.Children) == 0 {
			w.WriteByte('\n')
			continue
		}
		w.WriteString(" {\n")
		w.metadata(sel.Required, fr.depth+1)
		stack = append(stack, frame{depth: fr.depth, close: true})
		pushChildren(sel.Children, fr.depth+1)
	}
	w.WriteByte('}')
}

func (w *writer) selectionHead(sel ir.Selection) {
	switch sel.Kind {
	case ir.KindField:
		if sel.Alias != "" && sel.Alias != sel.Name {
			w.WriteString(sel.Alias)
			w.WriteString(": ")
		}
		w.WriteString(sel.Name)
		w.arguments(sel.Arguments)
		w.directives(sel.Directives)
	case ir.KindFragmentSpread:
		w.WriteString("...")
		w.WriteString(sel.Fragment)
		w.directives(sel.Directives)
	case ir.KindInlineFragment:
		w.WriteString("...")
		if sel.TypeCondition != nil {
			w.WriteString(" on ")
			w.WriteString(sel.TypeCondition.Name)
		}
		w.directives(sel.Directives)
	case ir.KindCondition:
		w.WriteString("...")
		w.guard(sel)
	default:
		panic("printer: unrecognized selection kind " + sel.Kind.String())
	}
}

// fold unwraps a chain of single-child Conditions ending in a field or a
// fragment spread. It returns that selection and the guards, outermost
// first. Any other selection is returned unchanged with no guards.
func (w *writer) fold(sel ir.Selection) (ir.Selection, []ir.Selection) {
	var guards []ir.Selection
	cur := sel
	for cur.Kind == ir.KindCondition && len(cur.Children) == 1 {
		guards = append(guards, cur)
		cur = w.p.Node(cur.Children[0])
	}
	if len(guards) == 0 || (cur.Kind != ir.KindField && cur.Kind != ir.KindFragmentSpread) {
		return sel, nil
	}
	return cur, guards
}

// guard prints a Condition as its @include or @skip directive.
func (w *writer) guard(sel ir.Selection) {
	w.WriteString(" @")
	if sel.Passing {
		w.WriteString("include")
	} else {
		w.WriteString("skip")
	}
	w.WriteString("(if: ")
	w.value(sel.If)
	w.WriteByte(')')
}

func (w *writer) metadata(meta *ir.RequiredMetadata, depth int) {
	if !w.opts.metadata || meta == nil {
		return
	}
	w.indent(depth)
	w.WriteString("# ")
	w.WriteString(meta.String())
	w.WriteByte('\n')
}

func (w *writer) indent(depth int) {
	for range depth {
		w.WriteString("  ")
	}
}

func (w *writer) arguments(args []ir.Argument) {
	if len(args) == 0 {
		return
	}
	w.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(a.Name)
		w.WriteString(": ")
		w.value(a.Value)
	}
	w.WriteByte(')')
}

func (w *writer) directives(dirs []ir.Directive) {
	for _, d := range dirs {
		w.WriteString(" @")
		w.WriteString(d.Name)
		w.arguments(d.Arguments)
	}
}

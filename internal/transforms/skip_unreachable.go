package transforms

import (
	"slices"

	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/engine"
	"github.com/roach88/gqlc/internal/ir"
)

// SkipUnreachableName is the pipeline name of the skip-unreachable stage.
const SkipUnreachableName = "skip_unreachable"

// SkipUnreachable removes selections guarded by a constant condition that
// never passes and inlines the children of constant conditions that always
// pass. Selection sets left empty are removed with their owner, and so are
// fragments and operations that end up with no selections, together with
// every spread of a removed fragment. Operation variables with no usage
// left are dropped.
func SkipUnreachable() engine.Transform {
	return engine.Func(SkipUnreachableName, skipUnreachable)
}

func skipUnreachable(p *ir.Program, _ config.FeatureFlags) (*ir.Program, error) {
	pb := p.Derive()
	removed := make(map[string]bool)

	// Removing a fragment can empty the fragments that spread it, so
	// iterate until no more fragments disappear.
	for {
		changed := false
		for _, f := range p.Fragments() {
			if removed[f.Name] {
				continue
			}
			if roots, _ := pruneSelections(pb, f.Selections, removed); len(roots) == 0 {
				removed[f.Name] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	dirty := len(removed) > 0
	for _, f := range p.Fragments() {
		if removed[f.Name] {
			pb.RemoveFragment(f.Name)
			continue
		}
		roots, changed := pruneSelections(pb, f.Selections, removed)
		if changed {
			cp := *f
			cp.Selections = roots
			used := variablesUsed(pb, f.Directives, roots, false)
			cp.UsedGlobalVariables = slices.DeleteFunc(slices.Clone(f.UsedGlobalVariables), func(u ir.VariableUsage) bool {
				return !used[u.Name]
			})
			pb.SetFragment(&cp)
			dirty = true
		}
	}
	for _, o := range p.Operations() {
		roots, changed := pruneSelections(pb, o.Selections, removed)
		if len(roots) == 0 {
			pb.RemoveOperation(o.Name)
			dirty = true
			continue
		}

		used := variablesUsed(pb, o.Directives, roots, true)
		vars := slices.DeleteFunc(slices.Clone(o.VariableDefinitions), func(v ir.VariableDefinition) bool {
			return !used[v.Name]
		})
		if changed || len(vars) != len(o.VariableDefinitions) {
			cp := *o
			cp.Selections = roots
			cp.VariableDefinitions = vars
			pb.SetOperation(&cp)
			dirty = true
		}
	}

	if !dirty {
		return p, nil
	}
	return pb.Build(), nil
}

type pruneFrame struct {
	id   ir.SelectionID
	exit bool
}

// pruneSelections rewrites the trees under roots bottom-up with an explicit
// work list. Each node is replaced by zero or more nodes: zero when it is
// unreachable or emptied, its children when it is an always-passing
// condition, otherwise itself (re-added when its children changed).
func pruneSelections(pb *ir.ProgramBuilder, roots []ir.SelectionID, removed map[string]bool) ([]ir.SelectionID, bool) {
	replaced := make(map[ir.SelectionID][]ir.SelectionID)

	stack := make([]pruneFrame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, pruneFrame{id: roots[i]})
	}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sel := pb.Node(fr.id)

		if !fr.exit {
			if sel.Kind == ir.KindCondition {
				if v, ok := sel.If.BoolLiteral(); ok && v != sel.Passing {
					replaced[fr.id] = nil
					continue
				}
			}
			stack = append(stack, pruneFrame{id: fr.id, exit: true})
			for i := len(sel.Children) - 1; i >= 0; i-- {
				stack = append(stack, pruneFrame{id: sel.Children[i]})
			}
			continue
		}

		switch sel.Kind {
		case ir.KindFragmentSpread:
			if removed[sel.Fragment] {
				replaced[fr.id] = nil
			} else {
				replaced[fr.id] = []ir.SelectionID{fr.id}
			}
			continue
		case ir.KindField:
			if len(sel.Children) == 0 {
				replaced[fr.id] = []ir.SelectionID{fr.id}
				continue
			}
		}

		children := collect(replaced, sel.Children)
		switch {
		case len(children) == 0:
			replaced[fr.id] = nil
		case sel.Kind == ir.KindCondition && isConstant(sel.If):
			replaced[fr.id] = children
		case slices.Equal(children, sel.Children):
			replaced[fr.id] = []ir.SelectionID{fr.id}
		default:
			sel.Children = children
			replaced[fr.id] = []ir.SelectionID{pb.Add(sel)}
		}
	}

	out := collect(replaced, roots)
	return out, !slices.Equal(out, roots)
}

// variablesUsed returns the names of variables referenced by dirs and by
// the trees under roots. With follow set, the fragments reachable through
// spreads are included, as they currently stand in pb.
func variablesUsed(pb *ir.ProgramBuilder, dirs []ir.Directive, roots []ir.SelectionID, follow bool) map[string]bool {
	used := make(map[string]bool)
	addValue := func(v ir.Value) {
		for _, name := range v.Variables() {
			used[name] = true
		}
	}
	addDirectives := func(ds []ir.Directive) {
		for _, d := range ds {
			for _, a := range d.Arguments {
				addValue(a.Value)
			}
		}
	}

	addDirectives(dirs)
	visited := make(map[string]bool)
	queue := [][]ir.SelectionID{roots}
	for len(queue) > 0 {
		ids := queue[0]
		queue = queue[1:]
		ir.Walk(pb, ids, func(_ ir.SelectionID, sel ir.Selection) bool {
			for _, a := range sel.Arguments {
				addValue(a.Value)
			}
			addDirectives(sel.Directives)
			switch sel.Kind {
			case ir.KindCondition:
				addValue(sel.If)
			case ir.KindFragmentSpread:
				if !follow || visited[sel.Fragment] {
					break
				}
				visited[sel.Fragment] = true
				if f := pb.Fragment(sel.Fragment); f != nil {
					addDirectives(f.Directives)
					queue = append(queue, f.Selections)
				}
			}
			return true
		})
	}
	return used
}

func collect(replaced map[ir.SelectionID][]ir.SelectionID, ids []ir.SelectionID) []ir.SelectionID {
	var out []ir.SelectionID
	for _, id := range ids {
		out = append(out, replaced[id]...)
	}
	return out
}

func isConstant(v ir.Value) bool {
	_, ok := v.BoolLiteral()
	return ok
}

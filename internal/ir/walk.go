package ir

// NodeSource is anything that resolves selection ids; both Program and
// ProgramBuilder implement it.
type NodeSource interface {
	Node(id SelectionID) Selection
}

// Walk visits the trees under roots in pre-order, document order. visit
// returns false to skip a node's children. Fragment spreads are not
// followed. The traversal uses an explicit stack.
func Walk(src NodeSource, roots []SelectionID, visit func(id SelectionID, sel Selection) bool) {
	stack := make([]SelectionID, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sel := src.Node(id)
		if !visit(id, sel) {
			continue
		}
		for i := len(sel.Children) - 1; i >= 0; i-- {
			stack = append(stack, sel.Children[i])
		}
	}
}

// FragmentSpreads returns the names of fragments spread directly under
// roots, in document order, without duplicates.
func FragmentSpreads(src NodeSource, roots []SelectionID) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(src, roots, func(_ SelectionID, sel Selection) bool {
		if sel.Kind == KindFragmentSpread && !seen[sel.Fragment] {
			seen[sel.Fragment] = true
			names = append(names, sel.Fragment)
		}
		return true
	})
	return names
}

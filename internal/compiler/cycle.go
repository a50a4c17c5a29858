package compiler

import (
	"strings"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
)

// spreadGraph maps fragment name → fragments it spreads, in document
// order.
type spreadGraph struct {
	order []string
	edges map[string][]string
}

// checkFragmentCycles reports every group of fragments that spread each
// other (E215).
//
// The algorithm:
//  1. Build fragment → spread dependency graph from the built selections
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop, anchored at its member
//     defined first
//
// Nodes and edges are visited in source order so the reported path is
// stable.
func (b *builder) checkFragmentCycles() {
	graph := spreadGraph{edges: make(map[string][]string)}
	for _, f := range b.pb.Fragments() {
		graph.order = append(graph.order, f.Name)
		graph.edges[f.Name] = ir.FragmentSpreads(b.pb, f.Selections)
	}

	position := make(map[string]int, len(graph.order))
	for i, name := range graph.order {
		position[name] = i
	}

	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		start := scc[0]
		for _, name := range scc[1:] {
			if position[name] < position[start] {
				start = name
			}
		}
		path := reconstructCyclePath(start, scc, graph)
		frag := b.pb.Fragment(start)
		b.diags.Errorf(diag.ErrFragmentCycle, frag.Loc,
			"fragment '%s' spreads itself: %s", start, strings.Join(path, " -> "))
	}
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph spreadGraph) bool {
	for _, neighbor := range graph.edges[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Edges to fragments that were not built are ignored. Recursion depth is
// bounded by the number of fragments.
func tarjanSCC(graph spreadGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph.edges[v] {
			if _, known := graph.edges[w]; !known {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range graph.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath follows edges inside the SCC from start until it
// returns to start.
func reconstructCyclePath(start string, scc []string, graph spreadGraph) []string {
	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)
	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph.edges[current] {
			if neighbor == start {
				next = neighbor
				break
			}
			if next == "" && inSCC[neighbor] && !visited[neighbor] {
				next = neighbor
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}

package ir

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"github.com/roach88/gqlc/internal/schema"
)

// Program is an immutable, type-checked collection of fragments and
// operations for one compilation unit. Accessors return shared data that
// callers must not modify; use Derive to produce a changed Program.
type Program struct {
	schema     *schema.Schema
	nodes      []Selection
	fragments  []*Fragment
	operations []*Operation
	fragIndex  map[string]int
	opIndex    map[string]int
}

// Schema returns the schema the program was checked against.
func (p *Program) Schema() *schema.Schema { return p.schema }

// Node returns the selection at id. It panics on an out-of-range id.
func (p *Program) Node(id SelectionID) Selection { return p.nodes[id] }

// Len returns the arena size.
func (p *Program) Len() int { return len(p.nodes) }

// Fragment returns the named fragment, or nil.
func (p *Program) Fragment(name string) *Fragment {
	if i, ok := p.fragIndex[name]; ok {
		return p.fragments[i]
	}
	return nil
}

// Operation returns the named operation, or nil.
func (p *Program) Operation(name string) *Operation {
	if i, ok := p.opIndex[name]; ok {
		return p.operations[i]
	}
	return nil
}

// Fragments returns fragments in source order.
func (p *Program) Fragments() []*Fragment { return slices.Clone(p.fragments) }

// Operations returns operations in source order.
func (p *Program) Operations() []*Operation { return slices.Clone(p.operations) }

// Derive starts a builder seeded with p's contents. The builder owns
// copies of the arena and definitions, so p is never affected.
func (p *Program) Derive() *ProgramBuilder {
	b := &ProgramBuilder{
		schema:     p.schema,
		nodes:      slices.Clone(p.nodes),
		fragments:  make([]*Fragment, len(p.fragments)),
		operations: make([]*Operation, len(p.operations)),
	}
	for i, f := range p.fragments {
		c := *f
		b.fragments[i] = &c
	}
	for i, o := range p.operations {
		c := *o
		b.operations[i] = &c
	}
	return b
}

// ProgramBuilder assembles a Program. It is not safe for concurrent use.
type ProgramBuilder struct {
	schema     *schema.Schema
	nodes      []Selection
	fragments  []*Fragment
	operations []*Operation
}

// NewProgramBuilder returns an empty builder bound to s.
func NewProgramBuilder(s *schema.Schema) *ProgramBuilder {
	return &ProgramBuilder{schema: s}
}

// Schema returns the builder's schema.
func (b *ProgramBuilder) Schema() *schema.Schema { return b.schema }

// Add appends sel to the arena and returns its id.
func (b *ProgramBuilder) Add(sel Selection) SelectionID {
	id, err := safecast.Conv[int32](len(b.nodes))
	if err != nil {
		panic(fmt.Errorf("selection arena overflow: %w", err))
	}
	b.nodes = append(b.nodes, sel)
	return SelectionID(id)
}

// Set replaces the node at id.
func (b *ProgramBuilder) Set(id SelectionID, sel Selection) {
	b.nodes[id] = sel
}

// Node returns the node at id.
func (b *ProgramBuilder) Node(id SelectionID) Selection {
	return b.nodes[id]
}

// AddFragment appends a fragment definition.
func (b *ProgramBuilder) AddFragment(f *Fragment) {
	b.fragments = append(b.fragments, f)
}

// AddOperation appends an operation definition.
func (b *ProgramBuilder) AddOperation(o *Operation) {
	b.operations = append(b.operations, o)
}

// Fragments returns the builder's fragments in insertion order.
func (b *ProgramBuilder) Fragments() []*Fragment { return slices.Clone(b.fragments) }

// Operations returns the builder's operations in insertion order.
func (b *ProgramBuilder) Operations() []*Operation { return slices.Clone(b.operations) }

// Fragment returns the named fragment, or nil.
func (b *ProgramBuilder) Fragment(name string) *Fragment {
	for _, f := range b.fragments {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// SetFragment replaces the fragment with the same name. It panics when no
// such fragment exists.
func (b *ProgramBuilder) SetFragment(f *Fragment) {
	i := slices.IndexFunc(b.fragments, func(x *Fragment) bool { return x.Name == f.Name })
	if i < 0 {
		panic(fmt.Sprintf("ir: SetFragment: unknown fragment %q", f.Name))
	}
	b.fragments[i] = f
}

// SetOperation replaces the operation with the same name. It panics when
// no such operation exists.
func (b *ProgramBuilder) SetOperation(o *Operation) {
	i := slices.IndexFunc(b.operations, func(x *Operation) bool { return x.Name == o.Name })
	if i < 0 {
		panic(fmt.Sprintf("ir: SetOperation: unknown operation %q", o.Name))
	}
	b.operations[i] = o
}

// RemoveFragment drops the named fragment if present.
func (b *ProgramBuilder) RemoveFragment(name string) {
	b.fragments = slices.DeleteFunc(b.fragments, func(f *Fragment) bool { return f.Name == name })
}

// RemoveOperation drops the named operation if present.
func (b *ProgramBuilder) RemoveOperation(name string) {
	b.operations = slices.DeleteFunc(b.operations, func(o *Operation) bool { return o.Name == name })
}

// Build freezes the builder into a Program. The arena is compacted: only
// nodes reachable from a definition are kept, numbered in pre-order over
// fragments then operations. Build panics when two fragments or two
// operations share a name; the IR builder reports those as diagnostics
// before they can get here.
func (b *ProgramBuilder) Build() *Program {
	p := &Program{
		schema:     b.schema,
		fragments:  make([]*Fragment, len(b.fragments)),
		operations: make([]*Operation, len(b.operations)),
		fragIndex:  make(map[string]int, len(b.fragments)),
		opIndex:    make(map[string]int, len(b.operations)),
	}
	c := compactor{src: b.nodes}

	for i, f := range b.fragments {
		if _, dup := p.fragIndex[f.Name]; dup {
			panic(fmt.Sprintf("ir: duplicate fragment %q", f.Name))
		}
		cp := *f
		cp.Selections = c.copyRoots(f.Selections)
		p.fragments[i] = &cp
		p.fragIndex[f.Name] = i
	}
	for i, o := range b.operations {
		if _, dup := p.opIndex[o.Name]; dup {
			panic(fmt.Sprintf("ir: duplicate operation %q", o.Name))
		}
		cp := *o
		cp.Selections = c.copyRoots(o.Selections)
		p.operations[i] = &cp
		p.opIndex[o.Name] = i
	}
	p.nodes = c.dst
	return p
}

type compactor struct {
	src []Selection
	dst []Selection
}

type compactFrame struct {
	old  SelectionID
	slot *SelectionID
}

// copyRoots copies the subtrees under roots into dst in pre-order and
// returns the new root ids.
func (c *compactor) copyRoots(roots []SelectionID) []SelectionID {
	if len(roots) == 0 {
		return nil
	}
	out := make([]SelectionID, len(roots))
	stack := make([]compactFrame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, compactFrame{old: roots[i], slot: &out[i]})
	}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id, err := safecast.Conv[int32](len(c.dst))
		if err != nil {
			panic(fmt.Errorf("selection arena overflow: %w", err))
		}
		*fr.slot = SelectionID(id)

		node := c.src[fr.old]
		oldChildren := node.Children
		if len(oldChildren) > 0 {
			node.Children = make([]SelectionID, len(oldChildren))
		} else {
			node.Children = nil
		}
		c.dst = append(c.dst, node)
		for i := len(oldChildren) - 1; i >= 0; i-- {
			stack = append(stack, compactFrame{old: oldChildren[i], slot: &node.Children[i]})
		}
	}
	return out
}

package transforms

import (
	"slices"

	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/engine"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/schema"
)

// RequiredDirectiveName is the pipeline name of the required transform.
const RequiredDirectiveName = "required_directive"

// RequiredDirective bubbles @required fields to their absorbing boundary.
//
// For every field carrying @required in a definition whose name matches
// the configured prefix:
//  1. A non-nullable field is rejected with E301
//  2. Otherwise the boundary is the nearest ancestor field whose type is
//     nullable or a list and which does not carry @required itself, or
//     the definition root
//  3. The boundary receives the response-key path from itself to the field
//     and the field's action; its combined action is the most severe one
//
// Metadata of applicable definitions is recomputed from scratch, so running
// the stage twice yields the same Program.
func RequiredDirective() engine.Transform {
	return engine.Func(RequiredDirectiveName, requiredDirective)
}

func requiredDirective(p *ir.Program, flags config.FeatureFlags) (*ir.Program, error) {
	if !flags.RequiredTransformEnabled() {
		return p, nil
	}

	var diags diag.Collector
	var results []requiredResult
	for _, f := range p.Fragments() {
		if !flags.RequiredTransformApplies(f.Name) {
			continue
		}
		r := analyzeRequired(p, f.Selections, &diags)
		r.fragment = f.Name
		results = append(results, r)
	}
	for _, o := range p.Operations() {
		if !flags.RequiredTransformApplies(o.Name) {
			continue
		}
		r := analyzeRequired(p, o.Selections, &diags)
		r.operation = o.Name
		results = append(results, r)
	}

	if err := diags.Err(); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return p, nil
	}

	pb := p.Derive()
	for _, r := range results {
		for _, id := range r.fields {
			sel := pb.Node(id)
			sel.Required = r.meta[id]
			pb.Set(id, sel)
		}
		switch {
		case r.fragment != "":
			f := *p.Fragment(r.fragment)
			f.Required = r.root
			pb.SetFragment(&f)
		default:
			o := *p.Operation(r.operation)
			o.Required = r.root
			pb.SetOperation(&o)
		}
	}
	return pb.Build(), nil
}

// requiredResult is the metadata computed for one definition.
type requiredResult struct {
	fragment  string
	operation string

	// fields lists every field of the definition, so stale metadata from
	// an earlier run is cleared.
	fields []ir.SelectionID
	meta   map[ir.SelectionID]*ir.RequiredMetadata
	root   *ir.RequiredMetadata
}

// requiredFrame is one work-list entry. boundary is the absorbing field
// for the node's descendants' paths (NoSelection for the definition root)
// and path holds response keys from that boundary down to the node.
type requiredFrame struct {
	id       ir.SelectionID
	boundary ir.SelectionID
	path     []string
	exit     bool
}

// analyzeRequired walks the definition's tree post-order in document order
// with an explicit work list. Fragment spreads are not followed: each
// fragment is analyzed as its own definition.
func analyzeRequired(p *ir.Program, roots []ir.SelectionID, diags *diag.Collector) requiredResult {
	r := requiredResult{meta: make(map[ir.SelectionID]*ir.RequiredMetadata)}
	attach := func(boundary ir.SelectionID, path []string, action ir.RequiredAction) {
		entry := ir.RequiredPath{Path: path, Action: action}
		var m *ir.RequiredMetadata
		if boundary == ir.NoSelection {
			if r.root == nil {
				r.root = &ir.RequiredMetadata{}
			}
			m = r.root
		} else {
			if r.meta[boundary] == nil {
				r.meta[boundary] = &ir.RequiredMetadata{}
			}
			m = r.meta[boundary]
		}
		m.Paths = append(m.Paths, entry)
		m.Action = ir.MostSevere(m.Action, action)
	}

	stack := make([]requiredFrame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, requiredFrame{id: roots[i], boundary: ir.NoSelection})
	}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sel := p.Node(fr.id)

		if fr.exit {
			if sel.RequiredAction != 0 && schema.IsNullable(sel.Type) {
				attach(fr.boundary, fr.path, sel.RequiredAction)
			}
			continue
		}

		childBoundary, childPath := fr.boundary, fr.path
		switch sel.Kind {
		case ir.KindField:
			r.fields = append(r.fields, fr.id)
			path := append(slices.Clip(fr.path), sel.ResponseKey())

			if sel.RequiredAction != 0 {
				if !schema.IsNullable(sel.Type) {
					reportNonNullable(diags, sel)
				}
				stack = append(stack, requiredFrame{id: fr.id, boundary: fr.boundary, path: path, exit: true})
			}

			if sel.RequiredAction == 0 && (schema.IsNullable(sel.Type) || schema.IsList(sel.Type)) {
				childBoundary, childPath = fr.id, nil
			} else {
				childPath = path
			}
		case ir.KindInlineFragment, ir.KindCondition:
			// transparent
		case ir.KindFragmentSpread:
			continue
		default:
			panic("transforms: unrecognized selection kind " + sel.Kind.String())
		}

		for i := len(sel.Children) - 1; i >= 0; i-- {
			stack = append(stack, requiredFrame{id: sel.Children[i], boundary: childBoundary, path: childPath})
		}
	}
	return r
}

func reportNonNullable(diags *diag.Collector, sel ir.Selection) {
	loc := sel.Loc
	for _, d := range sel.Directives {
		if d.Name == schema.RequiredDirective {
			loc = d.Loc
			break
		}
	}
	d := diags.Errorf(diag.ErrInvalidRequiredOnNonNullable, loc,
		"@required is not allowed on non-nullable field '%s.%s' of type '%s'",
		sel.Parent.Name, sel.Name, sel.Type.String())
	if sel.Definition != nil && sel.Definition.Position != nil {
		d.WithRelated(diag.FromPosition(sel.Definition.Position), "field defined here")
	}
}

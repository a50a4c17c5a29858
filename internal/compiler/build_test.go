package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/syntax"
	"github.com/roach88/gqlc/internal/testutil"
)

func build(t *testing.T, text string) (*ir.Program, error) {
	t.Helper()
	doc := testutil.ParseDocument(t, "doc.graphql", text)
	return Build(testutil.Schema(t), doc)
}

func mustBuild(t *testing.T, text string) *ir.Program {
	t.Helper()
	p, err := build(t, text)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func buildDiagnostics(t *testing.T, text string) diag.Diagnostics {
	t.Helper()
	p, err := build(t, text)
	require.Error(t, err)
	assert.Nil(t, p, "no program alongside diagnostics")
	ds, ok := diag.As(err)
	require.True(t, ok, "expected diagnostics, got %v", err)
	return ds
}

func TestBuild_Diagnostics(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		codes []diag.Code
	}{
		{"anonymous operation", `query { me { id } }`, []diag.Code{diag.ErrExpectedOperationName}},
		{"missing root type", `subscription S { me { id } }`, []diag.Code{diag.ErrUnsupportedOperation}},
		{
			"duplicate fragment",
			"fragment F on User { id }\nfragment F on User { name }\nquery Q { me { ...F } }",
			[]diag.Code{diag.ErrDuplicateDefinition},
		},
		{
			"duplicate operation",
			"query Q { me { id } }\nquery Q { me { name } }",
			[]diag.Code{diag.ErrDuplicateDefinition},
		},
		{"unknown type condition", `fragment F on Missing { id }`, []diag.Code{diag.ErrUnknownType}},
		{"leaf type condition", `fragment F on Role { id }`, []diag.Code{diag.ErrInvalidTypeCondition}},
		{"unknown field", `query Q { me { nope } }`, []diag.Code{diag.ErrUnknownField}},
		{"composite without selections", `query Q { me }`, []diag.Code{diag.ErrMissingSelections}},
		{"leaf with selections", `query Q { me { name { x } } }`, []diag.Code{diag.ErrUnexpectedSelections}},
		{"unknown argument", `query Q { me { friends(bogus: 1) { id } } }`, []diag.Code{diag.ErrUnknownArgument}},
		{
			"duplicate argument",
			`query Q { me { friends(first: 1, first: 2) { id } } }`,
			[]diag.Code{diag.ErrDuplicateArgument},
		},
		{"missing required argument", `query Q { user { id } }`, []diag.Code{diag.ErrMissingRequiredArgument}},
		{"wrong scalar", `query Q { me { friends(first: "x") { id } } }`, []diag.Code{diag.ErrInvalidValue}},
		{"int out of range", `query Q { me { friends(first: 3000000000) { id } } }`, []diag.Code{diag.ErrInvalidValue}},
		{"unknown enum value", `query Q { me { friends(orderBy: [OLDEST]) { id } } }`, []diag.Code{diag.ErrInvalidValue}},
		{"null for non-null", `query Q { user(id: null) { id } }`, []diag.Code{diag.ErrInvalidValue}},
		{
			"input object missing field",
			`mutation M { updateName(input: {id: "1"}) { clientMutationId } }`,
			[]diag.Code{diag.ErrInvalidValue},
		},
		{
			"input object unknown field",
			`query Q { search(term: "a", filter: {colour: "red"}) { __typename } }`,
			[]diag.Code{diag.ErrInvalidValue},
		},
		{"unknown fragment", `query Q { me { ...Missing } }`, []diag.Code{diag.ErrUndefinedFragment}},
		{
			"fragment type mismatch",
			"fragment P on Page { title }\nquery Q { me { ...P } }",
			[]diag.Code{diag.ErrInvalidFragmentSpread},
		},
		{
			"inline fragment type mismatch",
			`query Q { me { ... on Page { title } } }`,
			[]diag.Code{diag.ErrInvalidFragmentSpread},
		},
		{
			"fragment cycle",
			"fragment A on User { ...B }\nfragment B on User { ...A }",
			[]diag.Code{diag.ErrFragmentCycle},
		},
		{"unknown directive", `query Q { me { id @unknown } }`, []diag.Code{diag.ErrUnknownDirective}},
		{"misplaced directive", `query Q { me { id @live } }`, []diag.Code{diag.ErrMisplacedDirective}},
		{
			"repeated directive",
			`query Q { me { id @include(if: true) @include(if: false) } }`,
			[]diag.Code{diag.ErrRepeatedDirective},
		},
		{"non-input variable", `query Q($u: User) { me { id } }`, []diag.Code{diag.ErrInvalidVariableType}},
		{"unknown variable type", `query Q($x: Nope) { me { id } }`, []diag.Code{diag.ErrUnknownType}},
		{
			"duplicate variable",
			`query Q($a: Int, $a: Int) { me { friends(first: $a) { id } } }`,
			[]diag.Code{diag.ErrDuplicateVariable},
		},
		{"undefined variable", `query Q { me { friends(first: $n) { id } } }`, []diag.Code{diag.ErrUndefinedVariable}},
		{"unused variable", `query Q($n: Int) { me { id } }`, []diag.Code{diag.ErrUnusedVariable}},
		{
			"variable type mismatch",
			`query Q($n: String) { me { friends(first: $n) { id } } }`,
			[]diag.Code{diag.ErrVariableTypeMismatch},
		},
		{
			"nullable variable in non-null position",
			`query Q($x: Boolean) { me { id @include(if: $x) } }`,
			[]diag.Code{diag.ErrVariableTypeMismatch},
		},
		{
			"wrong default value",
			`query Q($n: Int = "x") { me { friends(first: $n) { id } } }`,
			[]diag.Code{diag.ErrInvalidValue},
		},
		{"required without action", `query Q { me { name @required } }`, []diag.Code{diag.ErrMissingRequiredArgument}},
		{
			"required action from variable",
			`query Q { me { name @required(action: $a) } }`,
			[]diag.Code{diag.ErrRequiredActionNotLiteral},
		},
		{
			"unknown required action",
			`query Q { me { name @required(action: PANIC) } }`,
			[]diag.Code{diag.ErrUnknownRequiredAction},
		},
		{
			"required action as string",
			`query Q { me { name @required(action: "THROW") } }`,
			[]diag.Code{diag.ErrUnknownRequiredAction},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := buildDiagnostics(t, tt.text)
			assert.Equal(t, tt.codes, ds.Codes(), "diagnostics:\n%s", ds.Error())
		})
	}
}

func TestBuild_DiagnosticLocation(t *testing.T) {
	ds := buildDiagnostics(t, "query Q {\n  me {\n    nope\n  }\n}")
	require.Len(t, ds, 1)

	d := ds[0]
	assert.Equal(t, diag.ErrUnknownField, d.Code)
	assert.Equal(t, "unknown field 'nope' on type 'User'", d.Message)
	assert.Equal(t, diag.SourceKey("doc.graphql"), d.Location.Source)
	assert.Equal(t, 3, d.Location.Line)
	assert.Equal(t, 5, d.Location.Column)
}

func TestBuild_RelatedLocations(t *testing.T) {
	ds := buildDiagnostics(t, "fragment F on User { id }\nfragment F on User { name }")
	require.Len(t, ds, 1)
	require.Len(t, ds[0].Related, 1)
	assert.Equal(t, "first defined here", ds[0].Related[0].Message)
	assert.Equal(t, 1, ds[0].Related[0].Location.Line)
	assert.Equal(t, 2, ds[0].Location.Line)
}

func TestBuild_FailSlow(t *testing.T) {
	text := `
fragment A on User { nope }
query Q { me { missing } }
query R { user { id } }
`
	ds := buildDiagnostics(t, text)
	assert.Equal(t, []diag.Code{
		diag.ErrUnknownField,
		diag.ErrUnknownField,
		diag.ErrMissingRequiredArgument,
	}, ds.Codes())
}

func TestBuild_DeterministicAcrossDocumentOrder(t *testing.T) {
	s := testutil.Schema(t)
	a := testutil.ParseDocument(t, "a.graphql", "query A { me { nope } }")
	b := testutil.ParseDocument(t, "b.graphql", "query B { me { alsoNope } }")

	_, err1 := Build(s, a, b)
	_, err2 := Build(s, b, a)
	require.Error(t, err1)
	require.Error(t, err2)

	ds1, _ := diag.As(err1)
	ds2, _ := diag.As(err2)
	sources := syntax.MergeSources(a, b)
	assert.Equal(t, ds1.SortedString(sources), ds2.SortedString(sources))
	assert.Equal(t, diag.SourceKey("a.graphql"), ds1[0].Location.Source)
}

func TestBuild_FragmentCycleMessage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"self", "fragment A on User { ...A }", "fragment 'A' spreads itself: A -> A"},
		{"pair", "fragment A on User { ...B }\nfragment B on User { ...A }", "fragment 'A' spreads itself: A -> B -> A"},
		{
			"triangle",
			"fragment C on User { ...A }\nfragment A on User { ...B }\nfragment B on User { ...C }",
			"fragment 'C' spreads itself: C -> A -> B -> C",
		},
		{
			"nested in field",
			"fragment A on User { bestFriend { ...A } }",
			"fragment 'A' spreads itself: A -> A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := buildDiagnostics(t, tt.text)
			require.Len(t, ds, 1)
			assert.Equal(t, diag.ErrFragmentCycle, ds[0].Code)
			assert.Equal(t, tt.want, ds[0].Message)
		})
	}
}

func TestBuild_RequiredFragment(t *testing.T) {
	p := mustBuild(t, `fragment F on User { name @required(action: THROW) }`)

	f := p.Fragment("F")
	require.NotNil(t, f)
	assert.Equal(t, "User", f.TypeCondition.Name)
	require.Len(t, f.Selections, 1)

	sel := p.Node(f.Selections[0])
	assert.Equal(t, ir.KindField, sel.Kind)
	assert.Equal(t, "name", sel.Name)
	assert.Equal(t, "name", sel.Alias)
	assert.Equal(t, "String", sel.Type.String())
	assert.Equal(t, ir.ActionThrow, sel.RequiredAction)
	assert.Nil(t, sel.Required, "metadata is added by the transform")

	require.Len(t, sel.Directives, 1)
	assert.Equal(t, "required", sel.Directives[0].Name)
	action, ok := sel.Directives[0].Argument("action")
	require.True(t, ok)
	assert.Equal(t, ir.Value{Kind: ir.ValueEnum, Raw: "THROW", Loc: action.Value.Loc}, action.Value)
}

func TestBuild_Conditions(t *testing.T) {
	p := mustBuild(t, `query Q($x: Boolean!) { me { name @include(if: $x) @skip(if: false) } }`)

	op := p.Operation("Q")
	require.NotNil(t, op)
	me := p.Node(op.Selections[0])
	require.Len(t, me.Children, 1)

	outer := p.Node(me.Children[0])
	assert.Equal(t, ir.KindCondition, outer.Kind)
	assert.True(t, outer.Passing)
	assert.Equal(t, ir.ValueVariable, outer.If.Kind)
	assert.Equal(t, "x", outer.If.Raw)
	assert.Equal(t, "User", outer.Parent.Name)

	inner := p.Node(outer.Children[0])
	assert.Equal(t, ir.KindCondition, inner.Kind)
	assert.False(t, inner.Passing)
	v, ok := inner.If.BoolLiteral()
	require.True(t, ok)
	assert.False(t, v)

	field := p.Node(inner.Children[0])
	assert.Equal(t, ir.KindField, field.Kind)
	assert.Equal(t, "name", field.Name)
	assert.Empty(t, field.Directives, "guards are not kept as directives")
}

func TestBuild_BareGuardInlineFragment(t *testing.T) {
	p := mustBuild(t, `query Q($x: Boolean!) { me { ... @include(if: $x) { id name } } }`)

	me := p.Node(p.Operation("Q").Selections[0])
	require.Len(t, me.Children, 1)
	cond := p.Node(me.Children[0])
	assert.Equal(t, ir.KindCondition, cond.Kind)
	require.Len(t, cond.Children, 2)
	assert.Equal(t, "id", p.Node(cond.Children[0]).Name)
	assert.Equal(t, "name", p.Node(cond.Children[1]).Name)
}

func TestBuild_InlineFragmentWithTypeCondition(t *testing.T) {
	p := mustBuild(t, `query Q { node(id: "1") { id ... on User { name } ... { id } } }`)

	node := p.Node(p.Operation("Q").Selections[0])
	require.Len(t, node.Children, 3)

	typed := p.Node(node.Children[1])
	assert.Equal(t, ir.KindInlineFragment, typed.Kind)
	assert.Equal(t, "User", typed.TypeCondition.Name)
	assert.Equal(t, "Node", typed.Parent.Name)
	assert.Equal(t, "User", p.Node(typed.Children[0]).Parent.Name)

	untyped := p.Node(node.Children[2])
	assert.Equal(t, ir.KindInlineFragment, untyped.Kind)
	assert.Nil(t, untyped.TypeCondition)
}

func TestBuild_AliasesAndTypename(t *testing.T) {
	p := mustBuild(t, `query Q { me { handle: name __typename } }`)
	me := p.Node(p.Operation("Q").Selections[0])
	require.Len(t, me.Children, 2)

	alias := p.Node(me.Children[0])
	assert.Equal(t, "handle", alias.Alias)
	assert.Equal(t, "name", alias.Name)
	assert.Equal(t, "handle", alias.ResponseKey())

	typename := p.Node(me.Children[1])
	assert.Equal(t, "__typename", typename.Name)
	assert.Equal(t, "String!", typename.Type.String())
}

func TestBuild_ArgumentValues(t *testing.T) {
	p := mustBuild(t, `
query Q {
  search(term: "café", filter: {role: ADMIN, tags: "x", verified: null}) {
    __typename
  }
  me {
    friends(first: 2, orderBy: NAME) { id }
    profilePicture(scale: 2) { uri }
  }
}`)

	search := p.Node(p.Operation("Q").Selections[0])
	require.Len(t, search.Arguments, 2)
	assert.Equal(t, ir.ValueString, search.Arguments[0].Value.Kind)
	assert.Equal(t, "café", search.Arguments[0].Value.Raw)

	filter := search.Arguments[1].Value
	assert.Equal(t, ir.ValueObject, filter.Kind)
	require.Len(t, filter.Fields, 3)
	assert.Equal(t, "role", filter.Fields[0].Name)
	assert.Equal(t, ir.ValueEnum, filter.Fields[0].Value.Kind)
	assert.Equal(t, ir.ValueString, filter.Fields[1].Value.Kind, "single value coerces to a list item")
	assert.Equal(t, ir.ValueNull, filter.Fields[2].Value.Kind)

	me := p.Node(p.Operation("Q").Selections[1])
	friends := p.Node(me.Children[0])
	require.Len(t, friends.Arguments, 2)
	assert.Equal(t, "2", friends.Arguments[0].Value.Raw)
	assert.Equal(t, ir.ValueEnum, friends.Arguments[1].Value.Kind)

	picture := p.Node(me.Children[1])
	assert.Equal(t, ir.ValueInt, picture.Arguments[0].Value.Kind, "Int literal accepted for Float")
}

func TestBuild_InterfaceFragmentInObject(t *testing.T) {
	p := mustBuild(t, "fragment N on Node { id }\nquery Q { me { ...N } }")
	me := p.Node(p.Operation("Q").Selections[0])
	spread := p.Node(me.Children[0])
	assert.Equal(t, ir.KindFragmentSpread, spread.Kind)
	assert.Equal(t, "N", spread.Fragment)
}

func TestBuild_FragmentVariables(t *testing.T) {
	text := `
fragment Friends on User { friends(first: $n) { id } }
fragment Wrapper on User { ...Friends }
query Q($n: Int) { me { ...Wrapper } }
`
	p := mustBuild(t, text)

	friends := p.Fragment("Friends")
	require.Len(t, friends.UsedGlobalVariables, 1)
	assert.Equal(t, "n", friends.UsedGlobalVariables[0].Name)
	assert.Equal(t, "Int", friends.UsedGlobalVariables[0].Type.String())
	assert.Empty(t, p.Fragment("Wrapper").UsedGlobalVariables)

	op := p.Operation("Q")
	v, ok := op.Variable("n")
	require.True(t, ok)
	assert.Equal(t, "Int", v.Type.String())
}

func TestBuild_TransitiveUndefinedVariable(t *testing.T) {
	text := `
fragment Friends on User { friends(first: $n) { id } }
query Q { me { ...Friends } }
`
	ds := buildDiagnostics(t, text)
	require.Len(t, ds, 1)
	assert.Equal(t, diag.ErrUndefinedVariable, ds[0].Code)
	assert.Equal(t, "variable '$n' is not defined by operation 'Q'", ds[0].Message)
	assert.Equal(t, 2, ds[0].Location.Line, "reported at the usage inside the fragment")
}

func TestBuild_VariableDefaults(t *testing.T) {
	p := mustBuild(t, `query Q($n: Int = 5, $x: Boolean! = true) { me { friends(first: $n) { id @include(if: $x) } } }`)
	op := p.Operation("Q")
	require.Len(t, op.VariableDefinitions, 2)
	require.NotNil(t, op.VariableDefinitions[0].Default)
	assert.Equal(t, "5", op.VariableDefinitions[0].Default.Raw)
}

func TestBuild_OperationDirectivesAndKinds(t *testing.T) {
	p := mustBuild(t, `
query Q @live { me { id } }
mutation M($in: UpdateNameInput!) { updateName(input: $in) { user { id } } }
`)
	q := p.Operation("Q")
	assert.Equal(t, "query", string(q.Kind))
	require.Len(t, q.Directives, 1)
	assert.Equal(t, "live", q.Directives[0].Name)

	m := p.Operation("M")
	assert.Equal(t, "mutation", string(m.Kind))
	assert.Equal(t, "Mutation", m.Type.Name)
}

func TestBuild_SourceOrder(t *testing.T) {
	p := mustBuild(t, `
query B { me { ...Z } }
fragment Z on User { id }
query A { me { ...Y } }
fragment Y on User { name }
`)
	var frags, ops []string
	for _, f := range p.Fragments() {
		frags = append(frags, f.Name)
	}
	for _, o := range p.Operations() {
		ops = append(ops, o.Name)
	}
	assert.Equal(t, []string{"Z", "Y"}, frags)
	assert.Equal(t, []string{"B", "A"}, ops)
}

func TestBuild_NilDocumentPanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = Build(testutil.Schema(t), nil)
	})
}

package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlc/internal/compiler"
	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/engine"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/printer"
	"github.com/roach88/gqlc/internal/testutil"
	"github.com/roach88/gqlc/internal/transforms"
)

func build(t *testing.T, key, text string) *ir.Program {
	t.Helper()
	p, err := compiler.Build(testutil.Schema(t), testutil.ParseDocument(t, key, text))
	require.NoError(t, err)
	return p
}

func TestPrintOperation(t *testing.T) {
	p := build(t, "q.graphql", `
query Q($id: ID!, $first: Int = 10, $x: Boolean!) @live {
  user(id: $id) {
    handle: name
    friends(first: $first, orderBy: [NAME, RECENT]) { id }
    ... on User @tag(name: "a\"b") { email }
    profile { bio @include(if: $x) }
  }
  search(term: "x", filter: {role: ADMIN, verified: null}) { __typename }
}`)

	want := `query Q($id: ID!, $first: Int = 10, $x: Boolean!) @live {
  user(id: $id) {
    handle: name
    friends(first: $first, orderBy: [NAME, RECENT]) {
      id
    }
    ... on User @tag(name: "a\"b") {
      email
    }
    profile {
      bio @include(if: $x)
    }
  }
  search(term: "x", filter: {role: ADMIN, verified: null}) {
    __typename
  }
}`
	assert.Equal(t, want, printer.PrintOperation(p, p.Operation("Q")))
	assert.Equal(t, want, printer.PrintProgram(p))
}

func TestPrintOperation_Guards(t *testing.T) {
	p := build(t, "g.graphql", `
query Q($x: Boolean!, $y: Boolean!) {
  me @skip(if: $x) { id }
  viewer { account { plan @include(if: $x) @skip(if: $y) } }
  node(id: "1") { ...F @include(if: $y) }
  other: me { ... @include(if: $x) { id name } ... on User @skip(if: $y) { email } }
}
fragment F on User { id }`)

	want := `query Q($x: Boolean!, $y: Boolean!) {
  me @skip(if: $x) {
    id
  }
  viewer {
    account {
      plan @include(if: $x) @skip(if: $y)
    }
  }
  node(id: "1") {
    ...F @include(if: $y)
  }
  other: me {
    ... @include(if: $x) {
      id
      name
    }
    ... on User @skip(if: $y) {
      email
    }
  }
}`
	assert.Equal(t, want, printer.PrintOperation(p, p.Operation("Q")))
}

func TestPrintProgram_FragmentsThenOperations(t *testing.T) {
	p := build(t, "d.graphql", `
query B { me { ...Z } }
fragment Z on User { id }
query A { me { ...Y @tag(name: "t") } }
fragment Y on User @owner(team: "core") { name }
`)
	want := "fragment Z on User {\n  id\n}\n\n" +
		"fragment Y on User @owner(team: \"core\") {\n  name\n}\n\n" +
		"query B {\n  me {\n    ...Z\n  }\n}\n\n" +
		"query A {\n  me {\n    ...Y @tag(name: \"t\")\n  }\n}"
	assert.Equal(t, want, printer.PrintProgram(p))
}

func TestPrintProgram_Empty(t *testing.T) {
	assert.Equal(t, "", printer.PrintProgram(ir.NewProgramBuilder(nil).Build()))
}

func TestPrintFragment_WithMetadata(t *testing.T) {
	p := build(t, "f.graphql", `
fragment F on User {
  name @required(action: THROW)
  bestFriend { email @required(action: LOG) role @required(action: CATCH) }
}`)
	flags := config.FeatureFlags{EnableRequiredTransformForPrefix: config.Prefix("")}
	out, err := transforms.RequiredDirective().Transform(p, flags)
	require.NoError(t, err)

	want := `fragment F on User {
  # @required(action: THROW) from [name: THROW]
  name @required(action: THROW)
  bestFriend {
    # @required(action: LOG) from [email: LOG, role: CATCH]
    email @required(action: LOG)
    role @required(action: CATCH)
  }
}`
	assert.Equal(t, want, printer.PrintFragment(out, out.Fragment("F"), printer.WithMetadata()))

	plain := printer.PrintFragment(out, out.Fragment("F"))
	assert.NotContains(t, plain, "#")

	// Metadata comments re-parse as comments.
	reparsed := build(t, "f2.graphql", want)
	assert.Equal(t, plain, printer.PrintProgram(reparsed))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"line\nbreak\ttab\r", `"line\nbreak\ttab\r"`},
		{"\x01bell", `"\u0001bell"`},
		{"café ☕", `"café ☕"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, printer.Quote(tt.in))
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"required": `fragment F on User { name @required(action: THROW) bestFriend { email @required(action: LOG) } }`,
		"conditions": `
query Q($x: Boolean!, $y: Boolean = false) {
  me {
    name @include(if: $x) @skip(if: $y)
    ... @include(if: $x) { id }
    ... on User @skip(if: true) { email }
    ...F @include(if: $x)
  }
}
fragment F on User { role }`,
		"values": `
query V($first: Int = 3, $filter: SearchFilter = {role: MEMBER, tags: ["a", "b"]}) {
  search(term: """block "quoted" text""", first: $first, filter: $filter) { __typename }
  me { profilePicture(size: 64, scale: 1.5) { uri } friends(orderBy: RECENT) { id } }
  checkin(date: "2024-01-01")
}`,
		"mutation": `
mutation M($in: UpdateNameInput!) { updateName(input: $in) { user { id } } }`,
		"interfaces": `
fragment N on Node { id ... on User { handle: name } ... on Page { title } }
query Q { node(id: "1") { ...N } search(term: "x") { ... on Comment { author { name } } } }`,
	}

	pipeline := engine.New([]engine.Transform{transforms.NoOp()})
	for name, text := range inputs {
		t.Run(name, func(t *testing.T) {
			original := build(t, name+".graphql", text)
			passed, err := pipeline.Run(original, config.FeatureFlags{})
			require.NoError(t, err)

			printed := printer.PrintProgram(passed)
			rebuilt := build(t, name+".printed.graphql", printed)

			assert.Empty(t, testutil.DiffPrograms(original, rebuilt), "printed:\n%s", printed)
			assert.Equal(t, printed, printer.PrintProgram(rebuilt))
		})
	}
}

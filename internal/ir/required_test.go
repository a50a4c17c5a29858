package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequiredAction(t *testing.T) {
	tests := []struct {
		in   string
		want RequiredAction
		ok   bool
	}{
		{"THROW", ActionThrow, true},
		{"LOG", ActionLog, true},
		{"CATCH", ActionCatch, true},
		{"throw", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRequiredAction(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}

func TestMostSevere(t *testing.T) {
	assert.Equal(t, ActionThrow, MostSevere(ActionCatch, ActionThrow))
	assert.Equal(t, ActionThrow, MostSevere(ActionThrow, ActionLog))
	assert.Equal(t, ActionLog, MostSevere(ActionLog, ActionCatch))
	assert.Equal(t, ActionCatch, MostSevere(0, ActionCatch))
}

func TestRequiredMetadataString(t *testing.T) {
	m := &RequiredMetadata{
		Action: ActionThrow,
		Paths: []RequiredPath{
			{Path: []string{"name"}, Action: ActionThrow},
			{Path: []string{"friend", "name"}, Action: ActionLog},
		},
	}
	assert.Equal(t, "@required(action: THROW) from [name: THROW, friend.name: LOG]", m.String())

	var none *RequiredMetadata
	assert.Equal(t, "<none>", none.String())
}

func TestValueVariables(t *testing.T) {
	v := Value{Kind: ValueObject, Fields: []ObjectField{
		{Name: "a", Value: Value{Kind: ValueVariable, Raw: "x"}},
		{Name: "b", Value: Value{Kind: ValueList, List: []Value{
			{Kind: ValueInt, Raw: "1"},
			{Kind: ValueVariable, Raw: "y"},
		}}},
	}}
	assert.Equal(t, []string{"x", "y"}, v.Variables())
	assert.False(t, v.IsConstant())

	c := Value{Kind: ValueList, List: []Value{{Kind: ValueString, Raw: "s"}}}
	assert.True(t, c.IsConstant())
	assert.Empty(t, c.Variables())

	b, ok := Value{Kind: ValueBoolean, Raw: "true"}.BoolLiteral()
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = Value{Kind: ValueVariable, Raw: "v"}.BoolLiteral()
	assert.False(t, ok)
}

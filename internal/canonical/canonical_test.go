package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"plain string", "hello", `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"plain int", 7, "7"},
		{"bool true", Bool(true), "true"},
		{"bool false", false, "false"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"array of ints", Array{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	result, err := Marshal(map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"y": true, "x": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"x":"v","y":true},"zebra":1}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before U+E000 in UTF-16 but after it in UTF-8.
	obj := Object{
		"\uE000":     Int(1),
		"\U00010000": Int(2),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalNoHTMLEscaping(t *testing.T) {
	result, err := Marshal("<a href=\"x\">&</a>")
	require.NoError(t, err)
	assert.Equal(t, `"<a href=\"x\">&</a>"`, string(result))
}

func TestMarshalLineSeparatorsStayLiteral(t *testing.T) {
	result, err := Marshal("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by "u2028" must stay escaped.
	result, err = Marshal(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(result))
}

func TestMarshalNFCNormalization(t *testing.T) {
	composed, err := Marshal("\u00e9")
	require.NoError(t, err)
	decomposed, err := Marshal("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalRejectsFloatAndNull(t *testing.T) {
	_, err := Marshal(1.5)
	assert.Error(t, err)

	_, err = Marshal(nil)
	assert.Error(t, err)

	_, err = Marshal(map[string]any{"a": nil})
	assert.Error(t, err)
}

func TestHashDeterminism(t *testing.T) {
	v := map[string]any{"document": "fragment F on User { id }", "prefix": ""}

	h1, err := Hash(DomainCacheKey, v)
	require.NoError(t, err)
	h2, err := Hash(DomainCacheKey, v)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestHashDomainSeparation(t *testing.T) {
	v := map[string]any{"a": 1}
	assert.NotEqual(t, MustHash(DomainCacheKey, v), MustHash(DomainSchema, v))
}

package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheList(t *testing.T) {
	dir := testProject(t, map[string]string{
		"a.graphql": "query A { me { id } }",
		"b.graphql": "query B { me { nope } }",
	})
	cachePath := filepath.Join(t.TempDir(), "cache.db")
	_, _, _ = execute(t, append([]string{"compile", "--cache", cachePath}, append(schemaFlag(dir), dir)...)...)

	out, _, err := execute(t, "cache", "list", "--cache", cachePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ok")
	assert.Contains(t, lines[0], filepath.Join(dir, "a.graphql"))
	assert.Contains(t, lines[1], "error")
	assert.Contains(t, lines[1], filepath.Join(dir, "b.graphql"))

	out, _, err = execute(t, "cache", "list", "--cache", cachePath, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Status string       `json:"status"`
		Data   []CacheEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, resp.Data[0].RunID, resp.Data[1].RunID, "one compile run")
	assert.Less(t, resp.Data[0].Seq, resp.Data[1].Seq)
	assert.False(t, resp.Data[0].Failed)
	assert.True(t, resp.Data[1].Failed)
}

func TestCache_KeyedByPipeline(t *testing.T) {
	dir := testProject(t, map[string]string{"a.graphql": "fragment Ids on User {\n  id @required(action: THROW)\n}\n"})
	cachePath := filepath.Join(t.TempDir(), "cache.db")
	args := func(stages string) []string {
		return append([]string{"compile", "--cache", cachePath, "--stages", stages, "--required-prefix", ""}, append(schemaFlag(dir), dir)...)
	}

	_, _, err := execute(t, args("noop")...)
	require.NoError(t, err)

	out, _, err := execute(t, args("required_directive")...)
	require.Error(t, err, "a different pipeline must not reuse the noop result")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.NotContains(t, out, "(cached)")
	assert.Contains(t, out, "E301 InvalidRequiredOnNonNullable")

	out, _, err = execute(t, args("noop")...)
	require.NoError(t, err)
	assert.Contains(t, out, "(cached)")

	out, _, err = execute(t, "cache", "list", "--cache", cachePath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2, "one row per pipeline")
}

func TestCachePrune(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	out, _, err := execute(t, "cache", "prune", "--cache", cachePath)
	require.NoError(t, err)
	assert.Equal(t, "Pruned 0 entries\n", out)
}

func TestCache_NoPath(t *testing.T) {
	out, _, err := execute(t, "cache", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeCache+"]")
}

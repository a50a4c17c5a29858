package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	dir := testProject(t, map[string]string{"a.graphql": bubblingDoc})
	path := filepath.Join(dir, "a.graphql")

	out, _, err := execute(t, append([]string{"validate"}, append(schemaFlag(dir), path)...)...)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+path+"\n", out, "nothing is printed for a valid document")
}

func TestValidate_ReportsEveryBuilderError(t *testing.T) {
	dir := testProject(t, map[string]string{"a.graphql": "query A { me { nope also } }"})

	out, _, err := execute(t, append([]string{"validate"}, append(schemaFlag(dir), dir)...)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "unknown field 'nope' on type 'User'")
	assert.Contains(t, out, "unknown field 'also' on type 'User'")
}

func TestValidate_SkipsTransforms(t *testing.T) {
	dir := testProject(t, map[string]string{"a.graphql": "fragment Ids on User { id @required(action: THROW) }"})

	_, _, err := execute(t, append([]string{"validate", "--required-prefix", ""}, append(schemaFlag(dir), dir)...)...)
	assert.NoError(t, err, "non-nullable @required is a transform error, not a build error")
}

func TestValidate_JSON(t *testing.T) {
	dir := testProject(t, map[string]string{
		"a.graphql": "query A { me { id } }",
		"b.graphql": "query B { me { nope } }",
	})

	out, _, err := execute(t, append([]string{"validate", "--format", "json"}, append(schemaFlag(dir), dir)...)...)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   []DocumentReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "ok", resp.Data[0].Status)
	assert.Empty(t, resp.Data[0].Output)
	assert.Contains(t, string(resp.Data[1].Diagnostics), `"code":"E206"`)
}

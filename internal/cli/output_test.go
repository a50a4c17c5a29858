package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlc/internal/diag"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeNoSchema, "no schema", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoSchema, resp.Error.Code)
	assert.Equal(t, "no schema", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error(ErrCodeConfig, "bad config", "line 3"))
	assert.Equal(t, "Error [E901]: bad config\nDetails: line 3\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	quiet := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	loud := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}
	loud.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String(), "verbose logs never reach stdout")
}

func TestNewReport(t *testing.T) {
	ok := newReport("a.graphql", "query Q {\n  me\n}", nil)
	assert.False(t, ok.Failed())
	assert.Equal(t, "query Q {\n  me\n}", ok.Output)

	ds := diag.Diagnostics{diag.Errorf(diag.ErrUnknownField, diag.Location{Source: "b.graphql", Line: 1, Column: 3}, "unknown field 'x' on type 'User'")}
	bad := newReport("b.graphql", "ignored", ds)
	assert.True(t, bad.Failed())
	assert.Empty(t, bad.Output)
	assert.Contains(t, string(bad.Diagnostics), `"code":"E206"`)
	assert.Empty(t, bad.Error)

	other := newReport("c.graphql", "", errors.New("disk on fire"))
	assert.True(t, other.Failed())
	assert.Nil(t, other.Diagnostics)
	assert.Equal(t, "disk on fire", other.Error)
}

func TestOutputFormatter_Documents(t *testing.T) {
	ds := diag.Diagnostics{diag.Errorf(diag.ErrUnknownField,
		diag.Location{Source: "b.graphql", Start: 10, End: 11, Line: 1, Column: 11}, "unknown field 'x' on type 'User'")}
	reports := []DocumentReport{
		newReport("a.graphql", "query A {\n  me {\n    id\n  }\n}", nil),
		newReport("b.graphql", "", ds),
	}
	reports[0].Cached = true

	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, formatter.Documents(reports, diag.Sources{"b.graphql": "query B { x }"}))

	assert.Equal(t, "✓ a.graphql (cached)\n"+
		"query A {\n  me {\n    id\n  }\n}\n"+
		"\n"+
		"✗ b.graphql\n"+
		"E206 UnknownField: unknown field 'x' on type 'User'\n"+
		"  --> b.graphql:1:11\n"+
		"  1 | query B { x }\n"+
		"    |           ^\n", buf.String())
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	wrapped := WrapExitError(ExitCommandError, "E905", base)
	assert.Equal(t, "E905: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))

	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "1 of 1 document(s) failed")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runExplainCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewExplainCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestExplainCommandText(t *testing.T) {
	buf, err := runExplainCommand(t, "text", `chair \show=10 \page=2 \bydate ?is_favorite ?quantity>1`)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Table: items")
	assert.Contains(t, output, "Terms:       chair")
	assert.Contains(t, output, `Directives:  \show=10 \page=2 \bydate`)
	assert.Contains(t, output, "Chains:      ?is_favorite ?quantity>1")
	assert.Contains(t, output, "WHERE   (items.is_favorite = TRUE AND items.quantity > :p0)")
	assert.Contains(t, output, "ORDER   items.created_at DESC")
	assert.Contains(t, output, "LIMIT   10")
	assert.Contains(t, output, "OFFSET  10")
	assert.Contains(t, output, "param p0 = 1")
	assert.Contains(t, output, "applied: is_favorite, quantity")
}

func TestExplainCommandChainSyntax(t *testing.T) {
	buf, err := runExplainCommand(t, "text", `?!description=none | ?name[lamp`)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Chains:      ?!description=none | ?name[lamp")
}

func TestExplainCommandResidual(t *testing.T) {
	buf, err := runExplainCommand(t, "text", "?color=red")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "residual: 1 chain(s) evaluated in memory after fetch")
	assert.NotContains(t, output, "WHERE")
}

func TestExplainCommandNoLimit(t *testing.T) {
	buf, err := runExplainCommand(t, "text", `\showall`)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "LIMIT   none")
}

func TestExplainCommandBoxes(t *testing.T) {
	buf, err := runExplainCommand(t, "text", "--table", "boxes", `\orderrev ?room=office`)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Table: boxes")
	assert.Contains(t, output, "WHERE   (boxes.room = :p0)")
	assert.Contains(t, output, "ORDER   boxes.label DESC")
	assert.Contains(t, output, "param p0 = office")
}

func TestExplainCommandJSON(t *testing.T) {
	buf, err := runExplainCommand(t, "json", `\smart ?is_favorite`)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "items", data["table"])
	assert.Equal(t, false, data["residual"])
	assert.Equal(t, "smart", data["mode"])

	where, ok := data["where"].([]any)
	require.True(t, ok)
	require.Len(t, where, 1)
	assert.Equal(t, "(items.is_favorite = TRUE)", where[0])

	applied, ok := data["applied_keys"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"is_favorite"}, applied)
}

func TestExplainCommandJSONResidual(t *testing.T) {
	buf, err := runExplainCommand(t, "json", "lamp ?color=red")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["residual"])
	assert.Nil(t, data["where"])
	assert.Equal(t, []any{"lamp"}, data["terms"])
}

func TestExplainCommandUnknownTable(t *testing.T) {
	buf, err := runExplainCommand(t, "text", "--table", "widgets", "chair")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E004]")
	assert.Contains(t, buf.String(), "widgets")
}

func TestExplainCommandParamsNeverInline(t *testing.T) {
	buf, err := runExplainCommand(t, "text", "?notes=secret-value")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "WHERE   (items.notes = :p0)")
	assert.Contains(t, output, "param p0 = secret-value")
}

package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSchemaCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewSchemaCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestSchemaCommandItems(t *testing.T) {
	buf, err := runSchemaCommand(t, "text", "items")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Table items")
	assert.Contains(t, output, "created_at")
	assert.Contains(t, output, "timestamp")
	assert.Contains(t, output, "is_favorite")
	assert.Contains(t, output, "boolean")
	assert.Contains(t, output, "Synthetic keys:")
	assert.Contains(t, output, "due")
	assert.Contains(t, output, "loose")
}

func TestSchemaCommandBoxes(t *testing.T) {
	buf, err := runSchemaCommand(t, "text", "boxes")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Table boxes")
	assert.Contains(t, output, "label")
	assert.Contains(t, output, "room")
	// Boxes have no synthetic predicates.
	assert.NotContains(t, output, "Synthetic keys:")
}

func TestSchemaCommandJSON(t *testing.T) {
	buf, err := runSchemaCommand(t, "json", "items")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "items", data["table"])

	cols, ok := data["columns"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, cols)

	categories := make(map[string]string)
	for _, c := range cols {
		col, ok := c.(map[string]any)
		require.True(t, ok)
		categories[col["name"].(string)] = col["category"].(string)
	}
	assert.Equal(t, "uuid", categories["id"])
	assert.Equal(t, "timestamp", categories["created_at"])
	assert.Equal(t, "boolean", categories["is_favorite"])
	assert.Equal(t, "integer", categories["quantity"])
	assert.Equal(t, "numeric", categories["price"])
	assert.Equal(t, "text", categories["notes"])
}

func TestSchemaCommandUnknownTable(t *testing.T) {
	buf, err := runSchemaCommand(t, "text", "widgets")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E004]")
	assert.Contains(t, buf.String(), "widgets")
}

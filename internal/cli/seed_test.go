package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCommandText(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "demo.db")

	buf := &bytes.Buffer{}
	cmd := NewSeedCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Seeded 7 item(s)")
	assert.Contains(t, buf.String(), dbPath)

	// The seeded database answers searches.
	searchBuf := &bytes.Buffer{}
	searchCmd := NewSearchCommand(&RootOptions{Format: "text"})
	searchCmd.SetOut(searchBuf)
	searchCmd.SetErr(searchBuf)
	searchCmd.SetArgs([]string{"--db", dbPath, "?loose"})

	require.NoError(t, searchCmd.Execute())
	assert.Contains(t, searchBuf.String(), "Office chair")
	assert.Contains(t, searchBuf.String(), "Soldering iron")
}

func TestSeedCommandJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "demo.db")

	buf := &bytes.Buffer{}
	cmd := NewSeedCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), data["items"])
	assert.Equal(t, dbPath, data["database"])
}

func TestSeedCommandMissingDatabaseFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSeedCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "db")
}

func TestSeedCommandBadDatabasePath(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSeedCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "missing", "demo.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E002]")
}

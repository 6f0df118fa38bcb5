package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eren/chronotrace/pkg/archive"
)

func TestArchiveCommand(t *testing.T) {
	t.Run("command exists with subcommands", func(t *testing.T) {
		var found *cobra.Command
		for _, c := range GetRootCmd().Commands() {
			if c.Name() == "archive" {
				found = c
				break
			}
		}
		require.NotNil(t, found, "archive command should exist")

		names := make(map[string]bool)
		for _, sub := range found.Commands() {
			names[sub.Name()] = true
		}
		assert.True(t, names["import"])
		assert.True(t, names["ls"])
		assert.True(t, names["events"])
	})

	t.Run("help text", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"archive", "--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		assert.Contains(t, output.String(), "SQLite")
	})

	t.Run("imports through the db flag", func(t *testing.T) {
		dir := t.TempDir()
		tracePath := filepath.Join(dir, "run.json")
		dbPath := filepath.Join(dir, "archive.db")
		require.NoError(t, os.WriteFile(tracePath, []byte(sampleTrace), 0644))
		t.Cleanup(func() {
			archiveDB = ""
			archiveImportName = ""
		})

		cmd := GetRootCmd()
		cmd.SetArgs([]string{"archive", "import", tracePath, "--db", dbPath})
		require.NoError(t, cmd.Execute())

		a, err := archive.Open(dbPath)
		require.NoError(t, err)
		defer a.Close()

		sessions, err := a.Sessions()
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "run", sessions[0].Name)
		assert.Equal(t, 2, sessions[0].EventCount)
	})

	t.Run("rejects an invalid session id", func(t *testing.T) {
		t.Cleanup(func() { archiveDB = "" })

		cmd := GetRootCmd()
		cmd.SetArgs([]string{"archive", "events", "not-a-number", "--db", filepath.Join(t.TempDir(), "a.db")})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid session id")
	})
}

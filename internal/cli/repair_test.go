package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eren/chronotrace/pkg/trace"
)

func TestRepairCommand(t *testing.T) {
	t.Run("command exists", func(t *testing.T) {
		found := false
		for _, c := range GetRootCmd().Commands() {
			if c.Name() == "repair" {
				found = true
				break
			}
		}
		assert.True(t, found, "repair command should exist")
	})

	t.Run("help text", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"repair", "--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		assert.Contains(t, output.String(), "unterminated")
	})

	t.Run("terminates a truncated trace", func(t *testing.T) {
		truncated := `{"otherData": {},"traceEvents":[{"cat":"function","dur":500,"name":"A","ph":"X","pid":0,"tid":7,"ts":1000},{"cat":"fun`
		path := filepath.Join(t.TempDir(), "trace.json")
		require.NoError(t, os.WriteFile(path, []byte(truncated), 0644))

		cmd := GetRootCmd()
		cmd.SetArgs([]string{"repair", path})
		require.NoError(t, cmd.Execute())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, trace.IsTerminated(data))

		doc, err := trace.Parse(data)
		require.NoError(t, err)
		require.Len(t, doc.TraceEvents, 1)
		assert.Equal(t, "A", doc.TraceEvents[0].Name)
	})

	t.Run("leaves a terminated trace alone", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trace.json")
		require.NoError(t, os.WriteFile(path, []byte(sampleTrace), 0644))

		cmd := GetRootCmd()
		cmd.SetArgs([]string{"repair", path})
		require.NoError(t, cmd.Execute())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, sampleTrace, string(data))
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"repair", filepath.Join(t.TempDir(), "missing.json")})
		assert.Error(t, cmd.Execute())
	})
}

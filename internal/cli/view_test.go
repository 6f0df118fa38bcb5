package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewCommand(t *testing.T) {
	t.Run("command exists", func(t *testing.T) {
		found := false
		for _, c := range GetRootCmd().Commands() {
			if c.Name() == "view" {
				found = true
				break
			}
		}
		assert.True(t, found, "view command should exist")
	})

	t.Run("help text", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"view", "--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		helpText := output.String()
		assert.Contains(t, helpText, "WebSocket")
		assert.Contains(t, helpText, "--open")
	})

	t.Run("flag defaults", func(t *testing.T) {
		hostFlag := viewCmd.Flags().Lookup("host")
		require.NotNil(t, hostFlag)
		assert.Equal(t, "", hostFlag.DefValue)

		portFlag := viewCmd.Flags().Lookup("port")
		require.NotNil(t, portFlag)
		assert.Equal(t, "0", portFlag.DefValue)

		openFlag := viewCmd.Flags().Lookup("open")
		require.NotNil(t, openFlag)
		assert.Equal(t, "false", openFlag.DefValue)
	})
}

package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerTriggerExecutesHookCommand(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "begin.txt")
	hookCommand := "echo began > " + outputPath

	manager, err := NewManager(Config{
		Enabled: true,
		Logger:  zerolog.Nop(),
		Hooks: []Hook{
			{
				ID:      "begin",
				Event:   EventSessionBegin,
				Command: hookCommand,
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, manager.Trigger(context.Background(), EventSessionBegin, nil))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "began\n", string(content))
}

func TestManagerTriggerInjectsEventDataIntoEnvironment(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "env.txt")
	hookCommand := "echo \"$CHRONOTRACE_HOOK_EVENT:$CHRONOTRACE_HOOK_DATA_SESSION_NAME\" > " + outputPath

	manager, err := NewManager(Config{
		Enabled: true,
		Logger:  zerolog.Nop(),
		Hooks: []Hook{
			{
				ID:      "end",
				Event:   EventSessionEnd,
				Command: hookCommand,
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, manager.Trigger(context.Background(), EventSessionEnd, map[string]interface{}{
		"session_name": "Startup",
	}))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "session.end:Startup\n", string(content))
}

func TestManagerTriggerReturnsJoinedErrors(t *testing.T) {
	manager, err := NewManager(Config{
		Enabled: true,
		Logger:  zerolog.Nop(),
		Hooks: []Hook{
			{
				ID:      "fail-1",
				Event:   EventSessionEnd,
				Command: "exit 2",
			},
			{
				ID:      "fail-2",
				Event:   EventSessionEnd,
				Command: "exit 3",
			},
		},
	})
	require.NoError(t, err)

	err = manager.Trigger(context.Background(), EventSessionEnd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hook fail-1 failed")
	assert.Contains(t, err.Error(), "hook fail-2 failed")
}

func TestManagerTriggerRespectsTimeout(t *testing.T) {
	manager, err := NewManager(Config{
		Enabled: true,
		Logger:  zerolog.Nop(),
		Hooks: []Hook{
			{
				ID:      "timeout",
				Event:   EventSessionBegin,
				Command: "sleep 1",
				Timeout: 30 * time.Millisecond,
			},
		},
	})
	require.NoError(t, err)

	err = manager.Trigger(context.Background(), EventSessionBegin, nil)
	require.Error(t, err)
	assert.True(t,
		strings.Contains(err.Error(), "deadline exceeded") || strings.Contains(err.Error(), "signal: killed"),
		"expected timeout-related error, got: %v",
		err,
	)
}

func TestNewManagerRejectsUnknownEvent(t *testing.T) {
	_, err := NewManager(Config{
		Enabled: true,
		Logger:  zerolog.Nop(),
		Hooks: []Hook{
			{Event: "session.pause", Command: "true"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown hook event")
}

func TestDisabledManagerDoesNothing(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "never.txt")

	manager, err := NewManager(Config{
		Enabled: false,
		Logger:  zerolog.Nop(),
		Hooks: []Hook{
			{Event: EventSessionBegin, Command: "echo x > " + outputPath},
		},
	})
	require.NoError(t, err)
	assert.False(t, manager.Enabled())

	require.NoError(t, manager.Trigger(context.Background(), EventSessionBegin, nil))

	_, err = os.Stat(outputPath)
	assert.True(t, os.IsNotExist(err))
}

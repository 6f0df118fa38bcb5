package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateOutputPath(t *testing.T) {
	v := NewValidator()

	t.Run("valid path", func(t *testing.T) {
		err := v.ValidateOutputPath("results.json")
		assert.NoError(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		err := v.ValidateOutputPath("")
		assert.Error(t, err)
	})

	t.Run("whitespace only", func(t *testing.T) {
		err := v.ValidateOutputPath("   ")
		assert.Error(t, err)
	})
}

func TestValidateCronSchedule(t *testing.T) {
	v := NewValidator()

	t.Run("valid schedules", func(t *testing.T) {
		schedules := []string{"0 * * * *", "*/5 * * * *", "30 2 * * 1"}
		for _, schedule := range schedules {
			err := v.ValidateCronSchedule(schedule)
			assert.NoError(t, err, "schedule %s should be valid", schedule)
		}
	})

	t.Run("empty schedule", func(t *testing.T) {
		err := v.ValidateCronSchedule("")
		assert.Error(t, err)
	})

	t.Run("invalid expression", func(t *testing.T) {
		err := v.ValidateCronSchedule("every five minutes")
		assert.Error(t, err)
	})

	t.Run("wrong field count", func(t *testing.T) {
		err := v.ValidateCronSchedule("* * *")
		assert.Error(t, err)
	})
}

func TestValidatePort(t *testing.T) {
	v := NewValidator()

	t.Run("valid port", func(t *testing.T) {
		err := v.ValidatePort(9230)
		assert.NoError(t, err)
	})

	t.Run("zero port", func(t *testing.T) {
		err := v.ValidatePort(0)
		assert.Error(t, err)
	})

	t.Run("port too large", func(t *testing.T) {
		err := v.ValidatePort(70000)
		assert.Error(t, err)
	})
}

func TestValidateHookEvent(t *testing.T) {
	v := NewValidator()

	t.Run("valid events", func(t *testing.T) {
		events := []string{"session.begin", "session.end"}
		for _, event := range events {
			err := v.ValidateHookEvent(event)
			assert.NoError(t, err, "event %s should be valid", event)
		}
	})

	t.Run("invalid event", func(t *testing.T) {
		err := v.ValidateHookEvent("session.pause")
		assert.Error(t, err)
	})

	t.Run("empty event", func(t *testing.T) {
		err := v.ValidateHookEvent("")
		assert.Error(t, err)
	})
}

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	t.Run("valid levels", func(t *testing.T) {
		levels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
		for _, level := range levels {
			err := v.ValidateLogLevel(level)
			assert.NoError(t, err, "level %s should be valid", level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := v.ValidateLogLevel("verbose")
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	t.Run("default config has no errors", func(t *testing.T) {
		cfg := DefaultConfig()
		errs := v.ValidateConfig(cfg)
		assert.Empty(t, errs)
	})

	t.Run("collects multiple errors", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Profile.Output = ""
		cfg.Viewer.Port = -1
		cfg.Logging.Level = "verbose"

		errs := v.ValidateConfig(cfg)
		assert.Len(t, errs, 3)
	})

	t.Run("rotation errors when enabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Rotation.Enabled = true
		cfg.Rotation.Schedule = "bogus"
		cfg.Rotation.Prefix = " "

		errs := v.ValidateConfig(cfg)
		assert.Len(t, errs, 2)
	})

	t.Run("hook errors when enabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Hooks.Enabled = true
		cfg.Hooks.Hooks = []HookConfig{
			{Event: "session.begin", Command: "echo begin"},
			{Event: "bogus", Command: ""},
		}

		errs := v.ValidateConfig(cfg)
		assert.Len(t, errs, 2)
	})
}

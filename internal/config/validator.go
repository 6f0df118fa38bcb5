package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateOutputPath validates a trace output path
func (v *Validator) ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	return nil
}

// ValidateCronSchedule validates a five field cron expression
func (v *Validator) ValidateCronSchedule(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("schedule cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	return nil
}

// ValidatePort validates a TCP port number
func (v *Validator) ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// ValidateHookEvent validates a lifecycle hook event name
func (v *Validator) ValidateHookEvent(event string) error {
	validEvents := []string{"session.begin", "session.end"}
	for _, valid := range validEvents {
		if event == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid hook event: %s (must be one of: %s)", event, strings.Join(validEvents, ", "))
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	// Validate profile output
	if err := v.ValidateOutputPath(cfg.Profile.Output); err != nil {
		errors = append(errors, fmt.Errorf("profile: %w", err))
	}

	// Validate rotation
	if cfg.Rotation.Enabled {
		if err := v.ValidateCronSchedule(cfg.Rotation.Schedule); err != nil {
			errors = append(errors, fmt.Errorf("rotation: %w", err))
		}
		if strings.TrimSpace(cfg.Rotation.Prefix) == "" {
			errors = append(errors, fmt.Errorf("rotation: prefix is required"))
		}
	}

	// Validate viewer
	if err := v.ValidatePort(cfg.Viewer.Port); err != nil {
		errors = append(errors, fmt.Errorf("viewer: %w", err))
	}
	if cfg.Viewer.DebounceMs < 0 {
		errors = append(errors, fmt.Errorf("viewer: debounce_ms must be >= 0"))
	}

	// Validate hooks
	if cfg.Hooks.Enabled {
		for i, hook := range cfg.Hooks.Hooks {
			if err := v.ValidateHookEvent(hook.Event); err != nil {
				errors = append(errors, fmt.Errorf("hook %d: %w", i, err))
			}
			if strings.TrimSpace(hook.Command) == "" {
				errors = append(errors, fmt.Errorf("hook %d: command is required", i))
			}
			if hook.Timeout < 0 {
				errors = append(errors, fmt.Errorf("hook %d: timeout must be >= 0", i))
			}
		}
	}

	// Validate logging
	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}

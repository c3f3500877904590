package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "sessions.stale_minutes")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidContextLevels returns the list of valid rendering tiers
func ValidContextLevels() []string {
	return []string{"minimal", "standard", "full"}
}

// ValidEnforcementModes returns the list of valid workflow enforcement modes
func ValidEnforcementModes() []string {
	return []string{"off", "remind", "strict"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateContext()...)
	errors = append(errors, c.validateSessions()...)
	errors = append(errors, c.validateProject()...)
	errors = append(errors, c.validateGate()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateContext() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidContextLevels(), c.Context.DefaultLevel) {
		errors = append(errors, ValidationError{
			Field:   "context.default_level",
			Value:   c.Context.DefaultLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidContextLevels(), ", ")),
		})
	}

	if c.Context.DecisionCount <= 0 {
		errors = append(errors, ValidationError{
			Field:   "context.decision_count",
			Value:   c.Context.DecisionCount,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateSessions() []ValidationError {
	var errors []ValidationError

	if c.Sessions.StaleMinutes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sessions.stale_minutes",
			Value:   c.Sessions.StaleMinutes,
			Message: "must be positive",
		})
	}

	if c.Sessions.ActiveWindowMinutes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sessions.active_window_minutes",
			Value:   c.Sessions.ActiveWindowMinutes,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateProject() []ValidationError {
	var errors []ValidationError

	for i, name := range c.Project.Manifests {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("project.manifests[%d]", i),
				Value:   name,
				Message: "must be a plain file name",
			})
		}
	}

	return errors
}

func (c *Config) validateGate() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidEnforcementModes(), c.Gate.DefaultEnforcement) {
		errors = append(errors, ValidationError{
			Field:   "gate.default_enforcement",
			Value:   c.Gate.DefaultEnforcement,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidEnforcementModes(), ", ")),
		})
	}

	if c.Gate.PlanMaxAgeHours <= 0 {
		errors = append(errors, ValidationError{
			Field:   "gate.plan_max_age_hours",
			Value:   c.Gate.PlanMaxAgeHours,
			Message: "must be positive",
		})
	}

	for i, pattern := range c.Gate.ExemptPatterns {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("gate.exempt_patterns[%d]", i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob: %v", err),
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

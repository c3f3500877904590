package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete mindcontext configuration
type Config struct {
	Context  ContextConfig  `mapstructure:"context"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Project  ProjectConfig  `mapstructure:"project"`
	Gate     GateConfig     `mapstructure:"gate"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ContextConfig controls how the session-start context is rendered
type ContextConfig struct {
	// DefaultLevel is used when the focus record carries no context_level.
	// Options: "minimal", "standard", "full"
	DefaultLevel string `mapstructure:"default_level"`
	// DecisionCount is how many key decisions the minimal and standard tiers show
	DecisionCount int `mapstructure:"decision_count"`
}

// SessionsConfig controls session registry timing
type SessionsConfig struct {
	// StaleMinutes is the age after which cleanup removes a session entry
	StaleMinutes int `mapstructure:"stale_minutes"`
	// ActiveWindowMinutes is the age within which another session counts as concurrent
	ActiveWindowMinutes int `mapstructure:"active_window_minutes"`
}

// ProjectConfig controls project root discovery
type ProjectConfig struct {
	// Manifests are file names that mark a directory as a project root
	// when neither .project/context nor .git is present
	Manifests []string `mapstructure:"manifests"`
}

// GateConfig controls the pre-edit workflow gate
type GateConfig struct {
	// DefaultEnforcement applies when neither the focus record nor the
	// project config names a mode. Options: "off", "remind", "strict"
	DefaultEnforcement string `mapstructure:"default_enforcement"`
	// PlanMaxAgeHours is how recent a plan must be to satisfy strict mode
	PlanMaxAgeHours int `mapstructure:"plan_max_age_hours"`
	// ExemptPatterns are globs (with '/' as separator) for files that are
	// always editable, matched against slash-normalized paths
	ExemptPatterns []string `mapstructure:"exempt_patterns"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// File is the log file path. Empty means stderr.
	File string `mapstructure:"file"`
	// MaxSizeMB is the maximum size of a log file before rotation
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Context: ContextConfig{
			DefaultLevel:  "minimal",
			DecisionCount: 3,
		},
		Sessions: SessionsConfig{
			StaleMinutes:        60,
			ActiveWindowMinutes: 30,
		},
		Project: ProjectConfig{
			Manifests: []string{"package.json", "go.mod", "Cargo.toml", "pyproject.toml"},
		},
		Gate: GateConfig{
			DefaultEnforcement: "remind",
			PlanMaxAgeHours:    24,
			ExemptPatterns: []string{
				"**.project/plans/**",
				"**.project/context/**",
				"**.project/prds/**",
				"**.project/epics/**",
				"**.project/config*",
				"**CLAUDE.md",
			},
		},
		Logging: LoggingConfig{
			Level:      "warn",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// StaleAfter returns the cleanup threshold as a duration
func (c *SessionsConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleMinutes) * time.Minute
}

// ActiveWindow returns the concurrency window as a duration
func (c *SessionsConfig) ActiveWindow() time.Duration {
	return time.Duration(c.ActiveWindowMinutes) * time.Minute
}

// PlanMaxAge returns the strict-mode plan freshness limit as a duration
func (c *GateConfig) PlanMaxAge() time.Duration {
	return time.Duration(c.PlanMaxAgeHours) * time.Hour
}

// SetDefaults registers default values with viper
func SetDefaults() {
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Context defaults
	v.SetDefault("context.default_level", defaults.Context.DefaultLevel)
	v.SetDefault("context.decision_count", defaults.Context.DecisionCount)

	// Sessions defaults
	v.SetDefault("sessions.stale_minutes", defaults.Sessions.StaleMinutes)
	v.SetDefault("sessions.active_window_minutes", defaults.Sessions.ActiveWindowMinutes)

	// Project defaults
	v.SetDefault("project.manifests", defaults.Project.Manifests)

	// Gate defaults
	v.SetDefault("gate.default_enforcement", defaults.Gate.DefaultEnforcement)
	v.SetDefault("gate.plan_max_age_hours", defaults.Gate.PlanMaxAgeHours)
	v.SetDefault("gate.exempt_patterns", defaults.Gate.ExemptPatterns)

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from the global viper instance and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v and validates it
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mindcontext")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mindcontext"
	}
	return filepath.Join(home, ".config", "mindcontext")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

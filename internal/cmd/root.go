package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/logging"
	"github.com/Iron-Ham/mindcontext/internal/project"
)

// Process-wide dependencies, replaced in tests.
var (
	appFs = afero.NewOsFs()
	getwd = os.Getwd
	now   = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "mindcontext",
	Short: "Persistent focus state for AI coding sessions",
	Long: `mindcontext keeps a small record of what a project is working on,
which decisions were made and which sessions are active. Agent hooks read it
at session start to inject context and update it as the session runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var dirFlag string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/mindcontext/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "start project lookup from this directory (default is the working directory)")
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/mindcontext")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MINDCONTEXT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., MINDCONTEXT_GATE_DEFAULT_ENFORCEMENT for gate.default_enforcement
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newLogger builds the logger described by cfg.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.NewFileLogger(cfg.Logging.File, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

func startDir() (string, error) {
	if dirFlag != "" {
		return dirFlag, nil
	}
	return getwd()
}

// workspace bundles what most commands need: configuration, a logger and
// the focus store for the project containing the start directory.
type workspace struct {
	cfg    *config.Config
	logger *logging.Logger
	root   project.Root
	store  *focus.Store
}

func openWorkspace() (*workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	dir, err := startDir()
	if err != nil {
		_ = logger.Close()
		return nil, errors.Wrap(err, "failed to get working directory")
	}
	root, err := project.NewLocator(appFs, cfg.Project.Manifests).Find(dir)
	if err != nil {
		_ = logger.Close()
		return nil, errors.Wrapf(err, "not inside a project (%s)", dir)
	}

	logger = logger.WithRoot(root.Path)
	return &workspace{
		cfg:    cfg,
		logger: logger,
		root:   root,
		store:  focus.NewStore(appFs, focus.WithClock(now), focus.WithLogger(logger)),
	}, nil
}

func (w *workspace) Close() {
	_ = w.logger.Close()
}

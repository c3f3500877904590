package config

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// ProjectFile holds the per-project overrides stored in .project/config.json.
// Fields left empty defer to the focus record or the user configuration.
type ProjectFile struct {
	WorkflowEnforcement string `mapstructure:"workflow_enforcement"`
	ContextLevel        string `mapstructure:"context_level"`
}

// LoadProjectFile reads a project override file through fs. A missing file
// yields an empty ProjectFile. Each call uses its own viper instance so the
// project file never leaks into the global configuration.
func LoadProjectFile(fs afero.Fs, path string) (*ProjectFile, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat project config: %w", err)
	}
	if !exists {
		return &ProjectFile{}, nil
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read project config: %w", err)
	}

	var pf ProjectFile
	if err := v.Unmarshal(&pf); err != nil {
		return nil, fmt.Errorf("decode project config: %w", err)
	}
	return &pf, nil
}

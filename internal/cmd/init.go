package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .project directories and an empty focus record",
	Long: `Create .project/context and .project/plans under the project root and
write an empty focus record if none exists. When no project root is found the
start directory becomes the root.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	dir, err := startDir()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	root := dir
	found, err := project.NewLocator(appFs, cfg.Project.Manifests).Find(dir)
	switch {
	case err == nil:
		root = found.Path
	case errors.Is(err, errors.ErrNoProjectRoot):
		if root, err = filepath.Abs(dir); err != nil {
			return err
		}
	default:
		return err
	}

	out := cmd.OutOrStdout()
	for _, d := range []string{project.ContextPath(root), project.PlansPath(root)} {
		if err := appFs.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	store := focus.NewStore(appFs, focus.WithClock(now))
	path := store.Path(root)
	exists, err := afero.Exists(appFs, path)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintf(out, "Already initialized: %s\n", path)
		return nil
	}

	if err := store.Write(root, focus.New()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized %s\n", path)
	return nil
}

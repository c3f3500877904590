package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/project"
	"github.com/Iron-Ham/mindcontext/internal/render"
	"github.com/Iron-Ham/mindcontext/internal/tui"
	"github.com/Iron-Ham/mindcontext/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the rendered context and sessions",
	Long: `Open a terminal view that re-renders the session context and the
session list whenever the focus record or progress document changes.

Keys: 1-3 choose the level, tab cycles, r reloads, q quits.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchLevel string

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchLevel, "level", "l", "", "initial context tier (default from the record)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	root := ws.root.Path
	w, err := watch.New(root, watch.WithLogger(ws.logger))
	if err != nil {
		return fmt.Errorf("failed to watch %s (run mindcontext init): %w", project.ContextPath(root), err)
	}
	w.Start()
	defer w.Stop()

	level := watchLevel
	if level == "" {
		if state, err := ws.store.Read(root); err == nil {
			level = state.ContextLevel
		}
	}
	level = render.ResolveLevel(level, ws.cfg.Context.DefaultLevel, focus.LevelMinimal)

	model := tui.NewModel(tui.Source{
		Store:        ws.store,
		Docs:         project.NewDocuments(appFs),
		Renderer:     render.New(render.WithDecisionCount(ws.cfg.Context.DecisionCount)),
		Root:         root,
		ActiveWindow: ws.cfg.Sessions.ActiveWindow(),
	}, level, w.Changes())
	return tui.New(model).Run()
}

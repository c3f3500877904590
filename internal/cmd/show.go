package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/gate"
	"github.com/Iron-Ham/mindcontext/internal/project"
	"github.com/Iron-Ham/mindcontext/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the rendered session context",
	Long: `Print the context that session-start would inject. Without --level the
tier comes from the record's context_level, then .project/config.json, then
the configured default.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var showLevel string

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showLevel, "level", "l", "", "context tier: minimal, standard or full")
}

func runShow(cmd *cobra.Command, args []string) error {
	if showLevel != "" && !render.ValidLevel(showLevel) {
		return fmt.Errorf("unknown level %q (want minimal, standard or full)", showLevel)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	content, err := renderContext(ws, showLevel)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), content)
	return nil
}

// renderContext renders the workspace record at level, resolving an empty
// level the same way the session-start hook does.
func renderContext(ws *workspace, level string) (string, error) {
	root := ws.root.Path
	state, err := ws.store.Read(root)
	if err != nil {
		return "", err
	}

	pf, err := config.LoadProjectFile(appFs, project.ConfigPath(root))
	if err != nil {
		ws.logger.Warn("ignoring unreadable project config", "error", err.Error())
		pf = nil
	}
	var projectLevel string
	if pf != nil {
		projectLevel = pf.ContextLevel
	}
	level = render.ResolveLevel(level, state.ContextLevel, projectLevel, ws.cfg.Context.DefaultLevel)

	g, err := gate.New(appFs, ws.store, ws.cfg.Gate, gate.WithClock(now), gate.WithLogger(ws.logger))
	if err != nil {
		return "", err
	}

	in, err := render.Load(project.NewDocuments(appFs), root, level, state)
	if err != nil {
		ws.logger.Warn("failed to load documents", "error", err.Error())
		in = render.Input{State: state}
	}
	in.Enforcement = g.Resolve(state, pf)

	r := render.New(render.WithDecisionCount(ws.cfg.Context.DecisionCount))
	return r.Render(level, in), nil
}

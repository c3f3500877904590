package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/gate"
	"github.com/Iron-Ham/mindcontext/internal/project"
	"github.com/Iron-Ham/mindcontext/internal/render"
	"github.com/Iron-Ham/mindcontext/internal/session"
	"github.com/Iron-Ham/mindcontext/internal/tui/styles"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project's focus record at a glance",
	Long: `Show where the project root was found, the current focus, the context
level, workflow enforcement and how many sessions are registered.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	root := ws.root.Path
	state, status, err := ws.store.ReadDetailed(root)
	if err != nil {
		return err
	}

	pf, err := config.LoadProjectFile(appFs, project.ConfigPath(root))
	if err != nil {
		ws.logger.Warn("ignoring unreadable project config", "error", err.Error())
		pf = nil
	}
	g, err := gate.New(appFs, ws.store, ws.cfg.Gate, gate.WithClock(now), gate.WithLogger(ws.logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	row := func(label, value string) {
		fmt.Fprintln(out, styles.Label.Render(label)+value)
	}

	fmt.Fprintln(out, styles.Title.Render("mindcontext"))
	row("Root", fmt.Sprintf("%s %s", root, styles.Muted.Render("("+ws.root.Marker.String()+")")))
	row("Record", recordStatus(status))

	f := state.Focus()
	focusText := f.Key()
	if f.Name != "" && f.Name != focusText {
		focusText += " " + styles.Muted.Render(f.Name)
	}
	row("Focus", focusText)

	var projectLevel string
	if pf != nil {
		projectLevel = pf.ContextLevel
	}
	row("Level", render.ResolveLevel(state.ContextLevel, projectLevel, ws.cfg.Context.DefaultLevel))

	mode := g.Resolve(state, pf)
	if state.Bypass() {
		mode += " " + styles.Warning.Render("(bypassed)")
	}
	row("Workflow", mode)

	sessions := state.Sessions().List()
	active := 0
	t := now()
	for _, s := range sessions {
		if !session.IsStale(s.SessionEntry, t, ws.cfg.Sessions.ActiveWindow()) {
			active++
		}
	}
	row("Sessions", fmt.Sprintf("%d registered, %d active", len(sessions), active))

	if tasks := state.NextSessionTasks; len(tasks) > 0 {
		row("Next", strings.Join(tasks, "; "))
	}
	if !state.LastUpdated.IsZero() {
		row("Updated", focus.FormatTime(state.LastUpdated))
	}
	return nil
}

func recordStatus(s focus.Status) string {
	switch s {
	case focus.StatusOK:
		return "ok"
	case focus.StatusMissing:
		return styles.Muted.Render("missing (run mindcontext init)")
	case focus.StatusMalformed:
		return styles.Error.Render("malformed (next write replaces it)")
	default:
		return s.String()
	}
}

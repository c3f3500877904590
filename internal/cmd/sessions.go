package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/session"
	"github.com/Iron-Ham/mindcontext/internal/tui"
	"github.com/Iron-Ham/mindcontext/internal/tui/styles"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage the session registry",
	Long:  `Commands for listing, cleaning up and removing registered agent sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sessions",
	Long: `List registered sessions with their status:
- active: seen within half the active window
- idle: seen within the active window
- stale: not seen within the active window`,
	Args: cobra.NoArgs,
	RunE: runSessionsList,
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove stale sessions",
	Long: `Remove sessions not seen for longer than the stale threshold
(sessions.stale_minutes unless --stale-minutes is given).`,
	Args: cobra.NoArgs,
	RunE: runSessionsCleanup,
}

var sessionsRemoveCmd = &cobra.Command{
	Use:   "remove <session-id>",
	Short: "Remove a session from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsRemove,
}

var cleanupStaleMinutes int

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsCleanupCmd)
	sessionsCmd.AddCommand(sessionsRemoveCmd)

	sessionsCleanupCmd.Flags().IntVar(&cleanupStaleMinutes, "stale-minutes", 0, "stale threshold in minutes (default from config)")
}

func newRegistry(ws *workspace) *session.Registry {
	return session.NewRegistry(ws.store,
		session.WithLogger(ws.logger),
		session.WithWindows(ws.cfg.Sessions.StaleAfter(), ws.cfg.Sessions.ActiveWindow()),
	)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	state, err := ws.store.Read(ws.root.Path)
	if err != nil {
		return err
	}
	sessions := state.Sessions().List()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.Title.Render(fmt.Sprintf("Sessions (%d)", len(sessions))))
	fmt.Fprintln(out, tui.SessionList(sessions, now(), ws.cfg.Sessions.ActiveWindow(), 0))
	return nil
}

func runSessionsCleanup(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	staleAfter := time.Duration(cleanupStaleMinutes) * time.Minute
	removed, err := newRegistry(ws).Cleanup(ws.root.Path, staleAfter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(removed) == 0 {
		fmt.Fprintln(out, "No stale sessions")
		return nil
	}
	fmt.Fprintf(out, "Removed %d stale session(s): %s\n", len(removed), strings.Join(removed, ", "))
	return nil
}

func runSessionsRemove(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	id := args[0]
	_, removed, err := newRegistry(ws).Remove(ws.root.Path, id)
	if err != nil {
		return err
	}
	if !removed {
		return errors.NewSessionError("cannot remove", errors.ErrSessionNotFound).WithSessionID(id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed session %s\n", id)
	return nil
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/render"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Update fields of the focus record",
	Long: `Update fields of the focus record. Each subcommand replaces one
top-level field and leaves everything else, including fields written by
other tools, untouched.`,
}

var setFocusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Set the current focus",
	Long: `Set the current focus. Only the flags given are changed; use --clear to
start from an empty focus.`,
	Args: cobra.NoArgs,
	RunE: runSetFocus,
}

var setDecisionCmd = &cobra.Command{
	Use:   "decision <key> [value]",
	Short: "Record a key decision",
	Long: `Record a key decision. New keys are appended after existing ones; an
existing key keeps its position. With --delete the key is removed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSetDecision,
}

var setNextCmd = &cobra.Command{
	Use:   "next [task...]",
	Short: "Replace the next-session task list",
	Long:  `Replace the next-session task list. With no arguments the list is cleared.`,
	RunE:  runSetNext,
}

var setBypassCmd = &cobra.Command{
	Use:   "bypass <on|off>",
	Short: "Turn the workflow gate bypass on or off",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetBypass,
}

var setEnforcementCmd = &cobra.Command{
	Use:       "enforcement <off|remind|strict>",
	Short:     "Set the workflow enforcement mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{focus.EnforcementOff, focus.EnforcementRemind, focus.EnforcementStrict},
	RunE:      runSetEnforcement,
}

var setLevelCmd = &cobra.Command{
	Use:       "level <minimal|standard|full>",
	Short:     "Set the context level injected at session start",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{focus.LevelMinimal, focus.LevelStandard, focus.LevelFull},
	RunE:      runSetLevel,
}

var (
	focusType   string
	focusName   string
	focusEpic   string
	focusTask   string
	focusPhase  string
	focusStatus string
	focusClear  bool

	decisionDelete bool
)

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.AddCommand(setFocusCmd)
	setCmd.AddCommand(setDecisionCmd)
	setCmd.AddCommand(setNextCmd)
	setCmd.AddCommand(setBypassCmd)
	setCmd.AddCommand(setEnforcementCmd)
	setCmd.AddCommand(setLevelCmd)

	setFocusCmd.Flags().StringVar(&focusType, "type", "", "focus type, e.g. epic or task")
	setFocusCmd.Flags().StringVar(&focusName, "name", "", "human-readable focus name")
	setFocusCmd.Flags().StringVar(&focusEpic, "epic", "", "epic label")
	setFocusCmd.Flags().StringVar(&focusTask, "task", "", "task label")
	setFocusCmd.Flags().StringVar(&focusPhase, "phase", "", "current phase")
	setFocusCmd.Flags().StringVar(&focusStatus, "status", "", "current status")
	setFocusCmd.Flags().BoolVar(&focusClear, "clear", false, "start from an empty focus")

	setDecisionCmd.Flags().BoolVarP(&decisionDelete, "delete", "d", false, "remove the decision")
}

// updateRecord applies fn to the workspace record and prints a one-line
// confirmation.
func updateRecord(cmd *cobra.Command, what string, fn func(*focus.State) (focus.Patch, bool)) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	_, changed, err := ws.store.UpdateFunc(ws.root.Path, fn)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", what)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "No change to %s\n", what)
	}
	return nil
}

func runSetFocus(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	return updateRecord(cmd, "current_focus", func(s *focus.State) (focus.Patch, bool) {
		f := &focus.CurrentFocus{}
		if s.CurrentFocus != nil && !focusClear {
			f = s.CurrentFocus.Clone()
		}
		for _, fl := range []struct {
			name string
			val  string
			dst  *string
		}{
			{"type", focusType, &f.Type},
			{"name", focusName, &f.Name},
			{"epic", focusEpic, &f.Epic},
			{"task", focusTask, &f.Task},
			{"phase", focusPhase, &f.Phase},
			{"status", focusStatus, &f.Status},
		} {
			if flags.Changed(fl.name) {
				*fl.dst = fl.val
			}
		}
		return focus.Patch{CurrentFocus: f}, true
	})
}

func runSetDecision(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !decisionDelete && len(args) != 2 {
		return errors.NewValidationError("a decision needs a value").WithField("key").WithValue(key)
	}

	return updateRecord(cmd, "key_decisions", func(s *focus.State) (focus.Patch, bool) {
		d := s.Decisions().Clone()
		if decisionDelete {
			if !d.Delete(key) {
				return focus.Patch{}, false
			}
			return focus.Patch{KeyDecisions: d}, true
		}
		d.Set(key, args[1])
		return focus.Patch{KeyDecisions: d}, true
	})
}

func runSetNext(cmd *cobra.Command, args []string) error {
	return updateRecord(cmd, "next_session_tasks", func(s *focus.State) (focus.Patch, bool) {
		return focus.Patch{NextSessionTasks: focus.Tasks(args...)}, true
	})
}

func runSetBypass(cmd *cobra.Command, args []string) error {
	on, err := parseSwitch(args[0])
	if err != nil {
		return err
	}
	return updateRecord(cmd, "workflow_bypass", func(s *focus.State) (focus.Patch, bool) {
		return focus.Patch{WorkflowBypass: focus.Ptr(on)}, true
	})
}

func parseSwitch(v string) (bool, error) {
	switch v {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.NewValidationError("expected on or off").WithField("bypass").WithValue(v)
	}
	return b, nil
}

func runSetEnforcement(cmd *cobra.Command, args []string) error {
	mode := args[0]
	switch mode {
	case focus.EnforcementOff, focus.EnforcementRemind, focus.EnforcementStrict:
	default:
		return errors.NewValidationError("unknown enforcement mode").WithField("workflow_enforcement").WithValue(mode)
	}

	return updateRecord(cmd, "config.workflow_enforcement", func(s *focus.State) (focus.Patch, bool) {
		settings := &focus.Settings{}
		if s.Config != nil {
			settings = s.Config.Clone()
		}
		settings.WorkflowEnforcement = mode
		return focus.Patch{Config: settings}, true
	})
}

func runSetLevel(cmd *cobra.Command, args []string) error {
	level := args[0]
	if !render.ValidLevel(level) {
		return errors.NewValidationError("unknown context level").WithField("context_level").WithValue(level)
	}
	return updateRecord(cmd, "context_level", func(s *focus.State) (focus.Patch, bool) {
		return focus.Patch{ContextLevel: focus.Ptr(level)}, true
	})
}

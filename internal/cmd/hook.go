package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/gate"
	"github.com/Iron-Ham/mindcontext/internal/hook"
	"github.com/Iron-Ham/mindcontext/internal/logging"
)

// hookEvents maps command arguments to hook event names.
var hookEvents = map[string]string{
	"session-start": hook.EventSessionStart,
	"session-end":   hook.EventSessionEnd,
	"activity":      hook.EventUserPromptSubmit,
	"pre-edit":      hook.EventPreToolUse,
}

var hookCmd = &cobra.Command{
	Use:   "hook <session-start|session-end|activity|pre-edit>",
	Short: "Handle an agent hook event",
	Long: `Handle an agent hook event. The event payload is read as JSON from
standard input and any response is written as JSON to standard output.

session-start  register the session and inject the rendered context
session-end    save the session summary and unregister the session
activity       refresh the session's last-active time
pre-edit       run the workflow gate; a blocked edit exits with status 2

Hooks never fail the agent: errors are logged and the hook exits 0, except
for a blocked edit.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: hookNames(),
	RunE:      runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func hookNames() []string {
	names := make([]string, 0, len(hookEvents))
	for name := range hookEvents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runHook(cmd *cobra.Command, args []string) error {
	event, ok := hookEvents[args[0]]
	if !ok {
		return fmt.Errorf("unknown hook %q (want one of %v)", args[0], hookNames())
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	logger, lerr := newLogger(cfg)
	if lerr != nil {
		logger = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level)
	}
	defer func() { _ = logger.Close() }()
	logger = logger.WithHook(event)
	if err != nil {
		logger.Warn("invalid configuration, using defaults", "error", err.Error())
	}

	h, err := hook.NewHandler(appFs, cfg,
		hook.WithClock(now),
		hook.WithWorkingDir(startDir),
		hook.WithLogger(logger),
	)
	if err != nil {
		logHookError(logger, "hook setup failed", err)
		return nil
	}

	err = h.Run(event, cmd.InOrStdin(), cmd.OutOrStdout())
	var blocked *gate.BlockError
	if errors.As(err, &blocked) {
		return blocked
	}
	if err != nil {
		logHookError(logger, "hook failed", err)
	}
	return nil
}

// logHookError records a swallowed hook failure at a level matching its
// severity. Retryable failures, such as a conflicting conditional write,
// are flagged so a rerun can be told apart from a real fault.
func logHookError(logger *logging.Logger, msg string, err error) {
	args := []any{
		"error", err.Error(),
		"severity", errors.GetSeverity(err).String(),
		"retryable", errors.IsRetryable(err),
	}
	if errors.GetSeverity(err) <= errors.SeverityWarning {
		logger.Warn(msg, args...)
		return
	}
	logger.Error(msg, args...)
}

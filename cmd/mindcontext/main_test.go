package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/gate"
)

func TestExitCode(t *testing.T) {
	blocked := &gate.BlockError{Reason: gate.ReasonNoPlans}

	tests := []struct {
		name   string
		err    error
		code   int
		stderr string
	}{
		{"success", nil, exitOK, ""},
		{"error", errors.New("boom"), exitError, "Error: boom\n"},
		{"blocked", blocked, exitBlocked, blocked.Error() + "\n"},
		{"wrapped block", fmt.Errorf("hook: %w", blocked), exitBlocked, blocked.Error() + "\n"},
		{"user facing", errors.NewValidationError("unknown context level"), exitError, "validation error: unknown context level\n"},
		{"wrapped user facing", fmt.Errorf("set: %w", errors.NewSessionError("cannot remove", errors.ErrSessionNotFound)), exitError, "set: session error: cannot remove: session not found\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := exitCode(tt.err, &buf); got != tt.code {
				t.Errorf("exitCode() = %d, want %d", got, tt.code)
			}
			if buf.String() != tt.stderr {
				t.Errorf("stderr = %q, want %q", buf.String(), tt.stderr)
			}
		})
	}
}

func TestExitCode_BlockFeedback(t *testing.T) {
	var buf bytes.Buffer
	exitCode(&gate.BlockError{Reason: gate.ReasonNoPlansDir}, &buf)
	if !strings.Contains(buf.String(), "Workflow Enforcement (strict mode)") {
		t.Errorf("stderr = %q, want gate feedback", buf.String())
	}
}

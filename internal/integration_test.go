// Package internal contains integration tests that drive the hook handler,
// focus store, session registry and workflow gate together the way agent
// hook processes do.
package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/gate"
	"github.com/Iron-Ham/mindcontext/internal/hook"
	"github.com/Iron-Ham/mindcontext/internal/testutil"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newHandler(t *testing.T, fsys afero.Fs, clock *testutil.Clock) *hook.Handler {
	t.Helper()
	h, err := hook.NewHandler(fsys, config.Default(), hook.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

// runHook sends payload to event and returns the injected context, if any.
func runHook(t *testing.T, h *hook.Handler, event, payload string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := h.Run(event, strings.NewReader(payload), &out)
	if out.Len() == 0 {
		return "", err
	}
	var resp hook.Output
	if jerr := json.Unmarshal(out.Bytes(), &resp); jerr != nil {
		t.Fatalf("invalid hook output %q: %v", out.String(), jerr)
	}
	if resp.HookSpecificOutput.HookEventName != event {
		t.Errorf("hookEventName = %q, want %q", resp.HookSpecificOutput.HookEventName, event)
	}
	return resp.HookSpecificOutput.AdditionalContext, err
}

func payload(session string, extra ...string) string {
	fields := append([]string{fmt.Sprintf(`"session_id": %q`, session), `"cwd": "/work/repo"`}, extra...)
	return "{" + strings.Join(fields, ", ") + "}"
}

// TestSessionLifecycle walks two overlapping sessions through start,
// activity, gated edits and end.
func TestSessionLifecycle(t *testing.T) {
	fsys, root := testutil.SetupProject(t, map[string]string{
		".project/context/focus.json": `{
  "current_focus": {"type": "epic", "name": "Billing", "epic": "billing", "task": 4},
  "key_decisions": {"billing-provider": "Stripe", "ui": "htmx"},
  "session_summary": {"date": "2026-02-27", "work_done": ["Drafted invoice schema"]},
  "config": {"workflow_enforcement": "strict"},
  "owner_tool": {"version": 2}
}`,
	})
	clock := testutil.NewClock(epoch)
	h := newHandler(t, fsys, clock)
	store := h.Store()

	ctx, err := runHook(t, h, hook.EventSessionStart, payload("alpha"))
	if err != nil {
		t.Fatalf("alpha start error = %v", err)
	}
	if !strings.Contains(ctx, "**Focus:** epic - Billing") || !strings.Contains(ctx, "Workflow Reminder") {
		t.Errorf("alpha context = %q", ctx)
	}
	if strings.Contains(ctx, "Warning:") {
		t.Error("first session should not warn")
	}

	clock.Advance(5 * time.Minute)
	ctx, err = runHook(t, h, hook.EventSessionStart, payload("beta"))
	if err != nil {
		t.Fatalf("beta start error = %v", err)
	}
	if !strings.Contains(ctx, "1 other active session detected") {
		t.Errorf("beta context missing warning: %q", ctx)
	}

	clock.Advance(time.Minute)
	if _, err := runHook(t, h, hook.EventUserPromptSubmit, payload("alpha")); err != nil {
		t.Fatalf("activity error = %v", err)
	}
	state, err := store.Read(root)
	if err != nil {
		t.Fatal(err)
	}
	if e, _ := state.Sessions().Get("alpha"); !e.LastActive.Equal(epoch.Add(6 * time.Minute)) {
		t.Errorf("alpha LastActive = %v", e.LastActive)
	}

	edit := payload("alpha", `"tool_input": {"file_path": "/work/repo/billing/invoice.go"}`)
	_, err = runHook(t, h, hook.EventPreToolUse, edit)
	var blocked *gate.BlockError
	if !errors.As(err, &blocked) || blocked.Reason != gate.ReasonNoPlansDir {
		t.Fatalf("edit without plans: error = %v, want block", err)
	}

	planEdit := payload("alpha", `"tool_input": {"file_path": "/work/repo/.project/plans/billing-v2.md"}`)
	if _, err := runHook(t, h, hook.EventPreToolUse, planEdit); err != nil {
		t.Fatalf("plan edit error = %v", err)
	}
	testutil.WriteFiles(t, fsys, root, map[string]string{".project/plans/billing-v2.md": "# Plan\n"})
	if _, err := runHook(t, h, hook.EventPreToolUse, edit); err != nil {
		t.Errorf("edit with matching plan error = %v", err)
	}

	clock.Set(time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC))
	if _, err := runHook(t, h, hook.EventSessionEnd, payload("alpha", `"reason": "exit"`)); err != nil {
		t.Fatalf("alpha end error = %v", err)
	}

	state, err = store.Read(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := state.Sessions().Get("alpha"); ok {
		t.Error("alpha still registered after end")
	}
	if _, ok := state.Sessions().Get("beta"); !ok {
		t.Error("beta was removed by alpha's end")
	}
	if state.SessionSummary.Date != "2026-03-01" {
		t.Errorf("summary date = %q", state.SessionSummary.Date)
	}
	if state.Focus().Task != "4" {
		t.Errorf("numeric task decoded as %q", state.Focus().Task)
	}
	if _, ok := state.Extra.Get("owner_tool"); !ok {
		t.Error("owner_tool was dropped")
	}

	// beta has been idle for hours, so the next start evicts it.
	ctx, err = runHook(t, h, hook.EventSessionStart, payload("gamma"))
	if err != nil {
		t.Fatalf("gamma start error = %v", err)
	}
	if strings.Contains(ctx, "Warning:") {
		t.Errorf("stale beta should not be reported: %q", ctx)
	}
	state, _ = store.Read(root)
	if ids := sessionIDs(state); ids != "gamma" {
		t.Errorf("sessions = %s, want gamma", ids)
	}
}

func sessionIDs(s *focus.State) string {
	var ids []string
	for _, e := range s.Sessions().List() {
		ids = append(ids, e.ID)
	}
	return strings.Join(ids, ",")
}

// TestConcurrentHookProcesses runs many hook invocations against one
// record at once. Updates may be lost, but the record must always parse.
func TestConcurrentHookProcesses(t *testing.T) {
	fsys, root := testutil.SetupProject(t, map[string]string{
		".project/context/focus.json": `{"current_focus": {"name": "Load test"}}`,
	})
	clock := testutil.NewClock(epoch)
	h := newHandler(t, fsys, clock)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*3)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for _, event := range []string{hook.EventSessionStart, hook.EventUserPromptSubmit, hook.EventSessionEnd} {
				if err := h.Run(event, strings.NewReader(payload(id)), &bytes.Buffer{}); err != nil {
					errs <- err
				}
			}
		}(fmt.Sprintf("w%d", i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("hook error = %v", err)
	}

	data, err := afero.ReadFile(fsys, h.Store().Path(root))
	if err != nil {
		t.Fatal(err)
	}
	state, err := focus.Decode(data)
	if err != nil {
		t.Fatalf("record corrupted after concurrent writes: %v\n%s", err, data)
	}
	if state.Focus().Name != "Load test" {
		t.Errorf("focus = %+v", state.Focus())
	}
	if leftovers := testutil.ListDir(t, fsys, root+"/.project/context"); len(leftovers) != 1 {
		t.Errorf("context dir = %v, want only the record", leftovers)
	}
}

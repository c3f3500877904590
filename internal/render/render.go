// Package render builds the markdown context injected at the start of a
// session. There are three tiers of increasing verbosity; each is a pure
// function of the focus record plus the optional task and progress
// documents.
package render

import (
	"strings"

	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/project"
	"github.com/Iron-Ham/mindcontext/internal/util"
)

// Tier limits.
const (
	DefaultDecisionCount = 3
	MinimalValueMax      = 60
	StandardCriteriaMax  = 5
	StandardWorkDoneMax  = 3
	StandardNextTasksMax = 3
	FullProgressLines    = 30
)

const (
	noFocusType     = "none"
	noFocusName     = "No active focus"
	loadContextHint = `> Say "load context" for full project details`
	minimalHeader   = "# MindContext Session"
	fullHeader      = "# MindContext: Full Project Context"
)

// Input is everything a tier may draw on.
type Input struct {
	State *focus.State
	// TaskDoc is the active task document; empty when there is none.
	TaskDoc string
	// ProgressDoc is the project progress document; empty when there is none.
	ProgressDoc string
	// Enforcement overrides the record's workflow enforcement mode when set.
	Enforcement string
}

func (in Input) enforcement() string {
	if in.Enforcement != "" {
		return in.Enforcement
	}
	return in.State.Enforcement()
}

// Renderer renders context tiers.
type Renderer struct {
	decisionCount int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDecisionCount sets how many decisions the minimal and standard tiers
// show. Non-positive values keep the default.
func WithDecisionCount(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.decisionCount = n
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{decisionCount: DefaultDecisionCount}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidLevel reports whether level names a tier.
func ValidLevel(level string) bool {
	switch level {
	case focus.LevelMinimal, focus.LevelStandard, focus.LevelFull:
		return true
	}
	return false
}

// ResolveLevel returns the first valid tier among candidates, or the
// minimal tier when none is valid.
func ResolveLevel(candidates ...string) string {
	for _, c := range candidates {
		if ValidLevel(c) {
			return c
		}
	}
	return focus.LevelMinimal
}

// Render dispatches to the tier named by level. Unknown levels render the
// minimal tier.
func (r *Renderer) Render(level string, in Input) string {
	switch level {
	case focus.LevelFull:
		return r.Full(in)
	case focus.LevelStandard:
		return r.Standard(in)
	default:
		return r.Minimal(in)
	}
}

// Minimal renders a one-line focus summary, the top decisions, the first
// next task and a hint.
func (r *Renderer) Minimal(in Input) string {
	cf := in.State.Focus()
	var b lines

	b.add(minimalHeader, "")
	b.add("**Focus:** " + or(cf.Type, noFocusType) + " - " + or(cf.Name, noFocusName))

	var parts []string
	if cf.Epic != "" {
		parts = append(parts, "**Epic:** "+cf.Epic)
	}
	if cf.Task != "" {
		parts = append(parts, "**Task:** "+cf.Task)
	}
	if cf.Phase != "" {
		parts = append(parts, "**Phase:** "+cf.Phase)
	}
	if len(parts) > 0 {
		b.add(strings.Join(parts, " | "))
	}
	b.add("")

	if selected := SelectDecisions(in.State.Decisions(), cf.Epic, r.decisionCount); len(selected) > 0 {
		b.add("**Key Decisions:**")
		for _, d := range selected {
			b.add("- " + d.Key + ": " + util.Ellipsize(d.Value, MinimalValueMax))
		}
		b.add("")
	}

	if tasks := in.State.NextSessionTasks; len(tasks) > 0 {
		b.add("**Next:** "+tasks[0], "")
	}

	b.add(loadContextHint)
	b.reminder(in.enforcement())
	return b.String()
}

// Standard renders the labeled focus block, top decisions, active task
// criteria, recent work and upcoming tasks.
func (r *Renderer) Standard(in Input) string {
	cf := in.State.Focus()
	var b lines

	b.add(minimalHeader, "")
	b.focus(cf, false)

	if selected := SelectDecisions(in.State.Decisions(), cf.Epic, r.decisionCount); len(selected) > 0 {
		b.decisions(selected)
	}

	if in.TaskDoc != "" {
		if criteria := ExtractCriteria(in.TaskDoc); len(criteria) > 0 {
			b.add("## Active Task Criteria")
			b.add(head(criteria, StandardCriteriaMax)...)
			b.add("")
		}
	}

	if ss := in.State.SessionSummary; ss != nil && len(ss.WorkDone) > 0 {
		b.add("## Last Session")
		if ss.Date != "" {
			b.add("**Date:** " + ss.Date)
		}
		b.bullets(head(ss.WorkDone, StandardWorkDoneMax))
		b.add("")
	}

	if tasks := in.State.NextSessionTasks; len(tasks) > 0 {
		b.add("## Next Tasks")
		b.bullets(head(tasks, StandardNextTasksMax))
		b.add("")
	}

	b.reminder(in.enforcement())
	return b.String()
}

// Full renders everything: all decisions, all criteria, all recent work and
// next tasks, and the head of the progress document.
func (r *Renderer) Full(in Input) string {
	cf := in.State.Focus()
	var b lines

	b.add(fullHeader, "")
	b.focus(cf, true)

	if all := in.State.Decisions().Entries(); len(all) > 0 {
		b.decisions(all)
	}

	if in.TaskDoc != "" {
		if criteria := ExtractCriteria(in.TaskDoc); len(criteria) > 0 {
			b.add("## Active Task Criteria")
			b.add(criteria...)
			b.add("")
		}
	}

	if ss := in.State.SessionSummary; ss != nil && len(ss.WorkDone) > 0 {
		b.add("## Last Session")
		if ss.Date != "" {
			b.add("**Date:** " + ss.Date)
		}
		b.add("**Work Done:**")
		b.bullets(ss.WorkDone)
		b.add("")
	}

	if tasks := in.State.NextSessionTasks; len(tasks) > 0 {
		b.add("## Next Tasks")
		b.bullets(tasks)
		b.add("")
	}

	if in.ProgressDoc != "" {
		b.add("## Recent Progress", util.HeadLines(in.ProgressDoc, FullProgressLines), "")
	}

	b.reminder(in.enforcement())
	return b.String()
}

// Load reads the documents level needs for state's current focus. Missing
// documents are left empty.
func Load(docs *project.Documents, root, level string, state *focus.State) (Input, error) {
	in := Input{State: state}
	if level != focus.LevelStandard && level != focus.LevelFull {
		return in, nil
	}

	cf := state.Focus()
	task, _, err := docs.Task(root, cf.Epic, cf.Task)
	if err != nil {
		return in, err
	}
	in.TaskDoc = task

	if level == focus.LevelFull {
		progress, _, err := docs.Progress(root)
		if err != nil {
			return in, err
		}
		in.ProgressDoc = progress
	}
	return in, nil
}

// lines accumulates output lines joined by "\n".
type lines []string

func (l *lines) add(s ...string) {
	*l = append(*l, s...)
}

func (l *lines) bullets(items []string) {
	for _, item := range items {
		l.add("- " + item)
	}
}

func (l *lines) focus(cf focus.CurrentFocus, withStatus bool) {
	l.add("## Current Focus")
	l.add("- **Type:** " + or(cf.Type, noFocusType))
	l.add("- **Name:** " + or(cf.Name, noFocusName))
	if cf.Epic != "" {
		l.add("- **Epic:** " + cf.Epic)
	}
	if cf.Task != "" {
		l.add("- **Task:** " + cf.Task)
	}
	if cf.Phase != "" {
		l.add("- **Phase:** " + cf.Phase)
	}
	if withStatus && cf.Status != "" {
		l.add("- **Status:** " + cf.Status)
	}
	l.add("")
}

func (l *lines) decisions(ds []focus.Decision) {
	l.add("## Key Decisions")
	for _, d := range ds {
		l.add("- **" + d.Key + ":** " + d.Value)
	}
	l.add("")
}

func (l *lines) reminder(enforcement string) {
	if text := Reminder(enforcement); text != "" {
		l.add(text)
	}
}

func (l lines) String() string {
	return strings.Join(l, "\n")
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

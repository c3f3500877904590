package focus

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rendering tiers stored in context_level.
const (
	LevelMinimal  = "minimal"
	LevelStandard = "standard"
	LevelFull     = "full"
)

// Workflow enforcement modes stored in config.workflow_enforcement.
const (
	EnforcementOff    = "off"
	EnforcementRemind = "remind"
	EnforcementStrict = "strict"
)

// TimeFormat is the on-disk timestamp layout: UTC with millisecond precision.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// DateFormat is the layout of session_summary.date.
const DateFormat = "2006-01-02"

// FormatTime renders t in TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses an RFC 3339 timestamp. ok is false for empty or
// unparseable input.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// State is the persisted focus record. Nil pointers and nil slices mark
// fields that are absent from the file.
type State struct {
	CurrentFocus     *CurrentFocus
	KeyDecisions     *Decisions
	NextSessionTasks []string
	SessionSummary   *SessionSummary
	ActiveSessions   *Sessions
	ContextLevel     string
	Config           *Settings
	WorkflowBypass   *bool
	LastUpdated      time.Time

	// Extra holds top-level fields this package does not model, in file order.
	Extra *RawFields
}

// New returns an empty record.
func New() *State {
	return &State{}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return New()
	}
	c := &State{
		ContextLevel: s.ContextLevel,
		LastUpdated:  s.LastUpdated,
	}
	if s.CurrentFocus != nil {
		c.CurrentFocus = s.CurrentFocus.Clone()
	}
	if s.KeyDecisions != nil {
		c.KeyDecisions = s.KeyDecisions.Clone()
	}
	if s.NextSessionTasks != nil {
		c.NextSessionTasks = append([]string{}, s.NextSessionTasks...)
	}
	if s.SessionSummary != nil {
		c.SessionSummary = s.SessionSummary.Clone()
	}
	if s.ActiveSessions != nil {
		c.ActiveSessions = s.ActiveSessions.Clone()
	}
	if s.Config != nil {
		c.Config = s.Config.Clone()
	}
	if s.WorkflowBypass != nil {
		b := *s.WorkflowBypass
		c.WorkflowBypass = &b
	}
	if s.Extra != nil {
		c.Extra = s.Extra.Clone()
	}
	return c
}

// Focus returns the current focus, or an empty one when absent.
func (s *State) Focus() CurrentFocus {
	if s == nil || s.CurrentFocus == nil {
		return CurrentFocus{}
	}
	return *s.CurrentFocus
}

// Decisions returns the key decisions, or an empty collection when absent.
func (s *State) Decisions() *Decisions {
	if s == nil || s.KeyDecisions == nil {
		return NewDecisions()
	}
	return s.KeyDecisions
}

// Sessions returns the session registry, or an empty one when absent.
func (s *State) Sessions() *Sessions {
	if s == nil || s.ActiveSessions == nil {
		return NewSessions()
	}
	return s.ActiveSessions
}

// Bypass reports whether workflow_bypass is set.
func (s *State) Bypass() bool {
	return s != nil && s.WorkflowBypass != nil && *s.WorkflowBypass
}

// Enforcement returns config.workflow_enforcement, falling back to a legacy
// top-level workflow_enforcement string. Empty means unset.
func (s *State) Enforcement() string {
	if s == nil {
		return ""
	}
	if s.Config != nil && s.Config.WorkflowEnforcement != "" {
		return s.Config.WorkflowEnforcement
	}
	if s.Extra != nil {
		var legacy string
		if raw, ok := s.Extra.Get("workflow_enforcement"); ok && json.Unmarshal(raw, &legacy) == nil {
			return legacy
		}
	}
	return ""
}

// CurrentFocus describes what is being worked on now.
type CurrentFocus struct {
	Type   string
	Name   string
	Epic   string
	Task   string
	Phase  string
	Status string

	Extra *RawFields
}

// Clone returns a deep copy of f.
func (f *CurrentFocus) Clone() *CurrentFocus {
	c := *f
	if f.Extra != nil {
		c.Extra = f.Extra.Clone()
	}
	return &c
}

// Key returns the session focus key: "epic:<e>/task:<t>" when both are set,
// otherwise the focus name, otherwise "none".
func (f CurrentFocus) Key() string {
	if f.Epic != "" && f.Task != "" {
		return "epic:" + f.Epic + "/task:" + f.Task
	}
	if f.Name != "" {
		return f.Name
	}
	return "none"
}

// SessionSummary is the recap of the last completed session.
type SessionSummary struct {
	Date     string   `json:"date,omitempty"`
	WorkDone []string `json:"work_done"`
}

// Clone returns a deep copy of s.
func (s *SessionSummary) Clone() *SessionSummary {
	return &SessionSummary{Date: s.Date, WorkDone: append([]string{}, s.WorkDone...)}
}

// Settings is the record's config object.
type Settings struct {
	WorkflowEnforcement string

	Extra *RawFields
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	c := *s
	if s.Extra != nil {
		c.Extra = s.Extra.Clone()
	}
	return &c
}

// label decodes a JSON string or number as text. Task ids are written as
// either by external tools.
type label string

func (l *label) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = label(s)
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("expected string or number, got %s", raw)
	}
	*l = label(raw)
	return nil
}

package focus

// Patch is a shallow top-level update. Each non-nil slot replaces the whole
// field of the same name; nil slots leave the field untouched.
type Patch struct {
	CurrentFocus     *CurrentFocus
	KeyDecisions     *Decisions
	NextSessionTasks *[]string
	SessionSummary   *SessionSummary
	ActiveSessions   *Sessions
	ContextLevel     *string
	Config           *Settings
	WorkflowBypass   *bool
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return p.CurrentFocus == nil &&
		p.KeyDecisions == nil &&
		p.NextSessionTasks == nil &&
		p.SessionSummary == nil &&
		p.ActiveSessions == nil &&
		p.ContextLevel == nil &&
		p.Config == nil &&
		p.WorkflowBypass == nil
}

// Apply merges p into s in place.
func (p Patch) Apply(s *State) {
	if p.CurrentFocus != nil {
		s.CurrentFocus = p.CurrentFocus.Clone()
	}
	if p.KeyDecisions != nil {
		s.KeyDecisions = p.KeyDecisions.Clone()
	}
	if p.NextSessionTasks != nil {
		s.NextSessionTasks = append([]string{}, (*p.NextSessionTasks)...)
	}
	if p.SessionSummary != nil {
		s.SessionSummary = p.SessionSummary.Clone()
	}
	if p.ActiveSessions != nil {
		s.ActiveSessions = p.ActiveSessions.Clone()
	}
	if p.ContextLevel != nil {
		s.ContextLevel = *p.ContextLevel
	}
	if p.Config != nil {
		s.Config = p.Config.Clone()
	}
	if p.WorkflowBypass != nil {
		b := *p.WorkflowBypass
		s.WorkflowBypass = &b
	}
}

// Tasks is a helper for building the NextSessionTasks slot.
func Tasks(tasks ...string) *[]string {
	if tasks == nil {
		tasks = []string{}
	}
	return &tasks
}

// Ptr returns a pointer to v, for filling optional patch slots.
func Ptr[T any](v T) *T {
	return &v
}

package focus

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Iron-Ham/mindcontext/internal/errors"
)

// Top-level member names, in the order they are written.
const (
	keyCurrentFocus     = "current_focus"
	keyKeyDecisions     = "key_decisions"
	keyNextSessionTasks = "next_session_tasks"
	keySessionSummary   = "session_summary"
	keyActiveSessions   = "active_sessions"
	keyContextLevel     = "context_level"
	keyConfig           = "config"
	keyWorkflowBypass   = "workflow_bypass"
	keyLastUpdated      = "last_updated"
)

// decodeObject parses data as a JSON object, keeping member order.
func decodeObject(data []byte) (*RawFields, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("invalid JSON")
	}
	fields := NewRawFields()
	if err := fields.m.UnmarshalJSON(trimmed); err != nil {
		return nil, err
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// take removes key from fields and decodes it into v. It reports false when
// the key is absent or null.
func take(fields *RawFields, key string, v any) (bool, error) {
	raw, ok := fields.Get(key)
	if !ok {
		return false, nil
	}
	fields.Delete(key)
	if isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return true, nil
}

// remaining returns the non-null members left in fields, or nil if none.
func remaining(fields *RawFields) *RawFields {
	var extra *RawFields
	fields.Each(func(key string, raw json.RawMessage) {
		if isNull(raw) {
			return
		}
		if extra == nil {
			extra = NewRawFields()
		}
		extra.Set(key, raw)
	})
	return extra
}

// encodeValue marshals v without HTML escaping so decision text stays readable.
func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// objectWriter builds a compact JSON object member by member.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) field(key string, v any) {
	if w.err != nil {
		return
	}
	raw, err := encodeValue(v)
	if err != nil {
		w.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	w.raw(key, raw)
}

func (w *objectWriter) raw(key string, raw json.RawMessage) {
	if w.err != nil {
		return
	}
	k, err := encodeValue(key)
	if err != nil {
		w.err = err
		return
	}
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(raw)
	w.n++
}

func (w *objectWriter) extra(fields *RawFields) {
	fields.Each(w.raw)
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// MarshalJSON writes known members in a fixed order followed by unknown
// members in the order they were read. Absent fields are omitted.
func (s *State) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if s.CurrentFocus != nil {
		w.field(keyCurrentFocus, s.CurrentFocus)
	}
	if s.KeyDecisions != nil {
		w.field(keyKeyDecisions, s.KeyDecisions)
	}
	if s.NextSessionTasks != nil {
		w.field(keyNextSessionTasks, s.NextSessionTasks)
	}
	if s.SessionSummary != nil {
		summary := *s.SessionSummary
		if summary.WorkDone == nil {
			summary.WorkDone = []string{}
		}
		w.field(keySessionSummary, summary)
	}
	if s.ActiveSessions != nil {
		w.field(keyActiveSessions, s.ActiveSessions)
	}
	if s.ContextLevel != "" {
		w.field(keyContextLevel, s.ContextLevel)
	}
	if s.Config != nil {
		w.field(keyConfig, s.Config)
	}
	if s.WorkflowBypass != nil {
		w.field(keyWorkflowBypass, *s.WorkflowBypass)
	}
	if !s.LastUpdated.IsZero() {
		w.field(keyLastUpdated, FormatTime(s.LastUpdated))
	}
	w.extra(s.Extra)
	return w.bytes()
}

// UnmarshalJSON decodes a record. A structurally wrong known field is an
// error wrapping ErrMalformedState.
func (s *State) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedState, err)
	}

	var out State
	var cf CurrentFocus
	var summary SessionSummary
	var settings Settings
	var level, updated string
	var bypass bool

	steps := []struct {
		key   string
		dst   any
		apply func()
	}{
		{keyCurrentFocus, &cf, func() { out.CurrentFocus = &cf }},
		{keyKeyDecisions, &out.KeyDecisions, nil},
		{keyNextSessionTasks, &out.NextSessionTasks, func() {
			if out.NextSessionTasks == nil {
				out.NextSessionTasks = []string{}
			}
		}},
		{keySessionSummary, &summary, func() { out.SessionSummary = &summary }},
		{keyActiveSessions, &out.ActiveSessions, nil},
		{keyContextLevel, &level, func() { out.ContextLevel = level }},
		{keyConfig, &settings, func() { out.Config = &settings }},
		{keyWorkflowBypass, &bypass, func() { out.WorkflowBypass = &bypass }},
		{keyLastUpdated, &updated, func() { out.LastUpdated, _ = ParseTime(updated) }},
	}
	for _, step := range steps {
		ok, err := take(fields, step.key, step.dst)
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrMalformedState, err)
		}
		if ok && step.apply != nil {
			step.apply()
		}
	}

	out.Extra = remaining(fields)
	*s = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f *CurrentFocus) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for _, m := range []struct{ key, val string }{
		{"type", f.Type},
		{"name", f.Name},
		{"epic", f.Epic},
		{"task", f.Task},
		{"phase", f.Phase},
		{"status", f.Status},
	} {
		if m.val != "" {
			w.field(m.key, m.val)
		}
	}
	w.extra(f.Extra)
	return w.bytes()
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *CurrentFocus) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	var out CurrentFocus
	for _, m := range []struct {
		key string
		dst *string
	}{
		{"type", &out.Type},
		{"name", &out.Name},
		{"epic", &out.Epic},
		{"task", &out.Task},
		{"phase", &out.Phase},
		{"status", &out.Status},
	} {
		var l label
		if _, err := take(fields, m.key, &l); err != nil {
			return err
		}
		*m.dst = string(l)
	}
	out.Extra = remaining(fields)
	*f = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s *Settings) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if s.WorkflowEnforcement != "" {
		w.field("workflow_enforcement", s.WorkflowEnforcement)
	}
	w.extra(s.Extra)
	return w.bytes()
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Settings) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	var out Settings
	if _, err := take(fields, "workflow_enforcement", &out.WorkflowEnforcement); err != nil {
		return err
	}
	out.Extra = remaining(fields)
	*s = out
	return nil
}

// Encode serializes s as indented JSON with a trailing newline.
func Encode(s *State) ([]byte, error) {
	compact, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Decode parses a record. Errors wrap ErrMalformedState.
func Decode(data []byte) (*State, error) {
	var s State
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &s, nil
}

package focus

import (
	"bytes"
	"encoding/json"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RawFields is an insertion-ordered set of undecoded JSON members.
type RawFields struct {
	m *orderedmap.OrderedMap[string, json.RawMessage]
}

// NewRawFields returns an empty RawFields.
func NewRawFields() *RawFields {
	return &RawFields{m: orderedmap.New[string, json.RawMessage]()}
}

// Get returns the raw value stored under key.
func (r *RawFields) Get(key string) (json.RawMessage, bool) {
	if r == nil {
		return nil, false
	}
	return r.m.Get(key)
}

// Set stores raw under key, keeping the key's position if it already exists.
func (r *RawFields) Set(key string, raw json.RawMessage) {
	r.m.Set(key, raw)
}

// Delete removes key.
func (r *RawFields) Delete(key string) {
	r.m.Delete(key)
}

// Len returns the number of members.
func (r *RawFields) Len() int {
	if r == nil {
		return 0
	}
	return r.m.Len()
}

// Each calls fn for every member in order.
func (r *RawFields) Each(fn func(key string, raw json.RawMessage)) {
	if r == nil {
		return
	}
	for p := r.m.Oldest(); p != nil; p = p.Next() {
		fn(p.Key, p.Value)
	}
}

// Clone returns a copy of r.
func (r *RawFields) Clone() *RawFields {
	c := NewRawFields()
	r.Each(func(k string, v json.RawMessage) {
		c.Set(k, append(json.RawMessage{}, v...))
	})
	return c
}

// Decision is one key decision entry.
type Decision struct {
	Key   string
	Value string
}

// Decisions is an insertion-ordered mapping of decision name to text.
type Decisions struct {
	m *orderedmap.OrderedMap[string, decisionValue]
}

// decisionValue holds a decision's text. raw is set when the record stored
// a non-string value, which is written back unchanged.
type decisionValue struct {
	text string
	raw  json.RawMessage
}

// NewDecisions returns an empty collection.
func NewDecisions() *Decisions {
	return &Decisions{m: orderedmap.New[string, decisionValue]()}
}

// DecisionsOf builds a collection from entries in order.
func DecisionsOf(entries ...Decision) *Decisions {
	d := NewDecisions()
	for _, e := range entries {
		d.Set(e.Key, e.Value)
	}
	return d
}

// Set records a decision. An existing key keeps its position.
func (d *Decisions) Set(key, value string) {
	d.m.Set(key, decisionValue{text: value})
}

// Get returns the decision text for key. Non-string values read from disk
// are returned as their JSON text.
func (d *Decisions) Get(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d.m.Get(key)
	return v.text, ok
}

// Delete removes key and reports whether it was present.
func (d *Decisions) Delete(key string) bool {
	_, ok := d.m.Delete(key)
	return ok
}

// Len returns the number of decisions.
func (d *Decisions) Len() int {
	if d == nil {
		return 0
	}
	return d.m.Len()
}

// Entries returns all decisions in insertion order.
func (d *Decisions) Entries() []Decision {
	if d == nil {
		return nil
	}
	out := make([]Decision, 0, d.m.Len())
	for p := d.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Decision{Key: p.Key, Value: p.Value.text})
	}
	return out
}

// Clone returns a copy of d.
func (d *Decisions) Clone() *Decisions {
	c := NewDecisions()
	if d == nil {
		return c
	}
	for p := d.m.Oldest(); p != nil; p = p.Next() {
		v := p.Value
		if v.raw != nil {
			v.raw = append(json.RawMessage{}, v.raw...)
		}
		c.m.Set(p.Key, v)
	}
	return c
}

// MarshalJSON encodes the decisions as an object in insertion order.
func (d *Decisions) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if d != nil {
		for p := d.m.Oldest(); p != nil; p = p.Next() {
			if p.Value.raw != nil {
				w.raw(p.Key, p.Value.raw)
				continue
			}
			w.field(p.Key, p.Value.text)
		}
	}
	return w.bytes()
}

// UnmarshalJSON decodes an object, keeping member order. Non-string values
// read as their JSON text and are re-encoded exactly as read unless the
// decision is overwritten with Set.
func (d *Decisions) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	d.m = orderedmap.New[string, decisionValue]()
	obj.Each(func(key string, raw json.RawMessage) {
		raw = bytes.TrimSpace(raw)
		var s string
		if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
			d.m.Set(key, decisionValue{text: s})
			return
		}
		var compact bytes.Buffer
		if json.Compact(&compact, raw) == nil {
			raw = compact.Bytes()
		}
		d.m.Set(key, decisionValue{text: string(raw), raw: append(json.RawMessage{}, raw...)})
	})
	return nil
}

// SessionEntry is one live session registered against the project.
type SessionEntry struct {
	Focus      string
	Started    time.Time
	LastActive time.Time
	CWD        string
}

// LastSeen returns LastActive, falling back to Started. The zero time means
// neither timestamp was usable.
func (e SessionEntry) LastSeen() time.Time {
	if !e.LastActive.IsZero() {
		return e.LastActive
	}
	return e.Started
}

type sessionEntryJSON struct {
	Focus      string `json:"focus"`
	Started    string `json:"started,omitempty"`
	LastActive string `json:"last_active,omitempty"`
	CWD        string `json:"cwd"`
}

// MarshalJSON implements json.Marshaler.
func (e SessionEntry) MarshalJSON() ([]byte, error) {
	out := sessionEntryJSON{Focus: e.Focus, CWD: e.CWD}
	if !e.Started.IsZero() {
		out.Started = FormatTime(e.Started)
	}
	if !e.LastActive.IsZero() {
		out.LastActive = FormatTime(e.LastActive)
	}
	return encodeValue(out)
}

// UnmarshalJSON implements json.Unmarshaler. Unparseable timestamps decode
// to the zero time so the entry reads as stale.
func (e *SessionEntry) UnmarshalJSON(data []byte) error {
	var in struct {
		Focus      label  `json:"focus"`
		Started    any    `json:"started"`
		LastActive any    `json:"last_active"`
		CWD        string `json:"cwd"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.Focus = string(in.Focus)
	e.CWD = in.CWD
	e.Started = looseTime(in.Started)
	e.LastActive = looseTime(in.LastActive)
	return nil
}

func looseTime(v any) time.Time {
	switch t := v.(type) {
	case string:
		parsed, _ := ParseTime(t)
		return parsed
	case float64:
		// epoch milliseconds
		return time.UnixMilli(int64(t)).UTC()
	default:
		return time.Time{}
	}
}

// Session pairs a session id with its entry.
type Session struct {
	ID string
	SessionEntry
}

// Sessions is the insertion-ordered session registry.
type Sessions struct {
	m *orderedmap.OrderedMap[string, SessionEntry]
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{m: orderedmap.New[string, SessionEntry]()}
}

// Get returns the entry for id.
func (s *Sessions) Get(id string) (SessionEntry, bool) {
	if s == nil {
		return SessionEntry{}, false
	}
	return s.m.Get(id)
}

// Set upserts the entry for id. An existing id keeps its position.
func (s *Sessions) Set(id string, e SessionEntry) {
	s.m.Set(id, e)
}

// Delete removes id and reports whether it was present.
func (s *Sessions) Delete(id string) bool {
	_, ok := s.m.Delete(id)
	return ok
}

// Len returns the number of sessions.
func (s *Sessions) Len() int {
	if s == nil {
		return 0
	}
	return s.m.Len()
}

// List returns all sessions in registration order.
func (s *Sessions) List() []Session {
	if s == nil {
		return nil
	}
	out := make([]Session, 0, s.m.Len())
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Session{ID: p.Key, SessionEntry: p.Value})
	}
	return out
}

// Clone returns a copy of s.
func (s *Sessions) Clone() *Sessions {
	c := NewSessions()
	for _, sess := range s.List() {
		c.Set(sess.ID, sess.SessionEntry)
	}
	return c
}

// MarshalJSON encodes the registry as an object in registration order.
func (s *Sessions) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for _, sess := range s.List() {
		w.field(sess.ID, sess.SessionEntry)
	}
	return w.bytes()
}

// UnmarshalJSON decodes an object of session entries, keeping member order.
func (s *Sessions) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	s.m = orderedmap.New[string, SessionEntry]()
	var decodeErr error
	obj.Each(func(id string, raw json.RawMessage) {
		if decodeErr != nil || isNull(raw) {
			return
		}
		var e SessionEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			decodeErr = err
			return
		}
		s.m.Set(id, e)
	})
	return decodeErr
}

// Package session tracks which processes are currently working against a
// project. The registry lives in the focus record's active_sessions field
// and every change is a read-merge-write through focus.Store.
package session

import (
	"fmt"
	"time"

	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/logging"
)

// Default staleness windows. Cleanup is destructive and waits longer; the
// concurrency warning is advisory and uses the shorter window.
const (
	DefaultStaleAfter   = 60 * time.Minute
	DefaultActiveWindow = 30 * time.Minute
)

// UnknownID is used when a hook invocation carries no session id.
const UnknownID = "unknown"

// Registry manages active_sessions for project roots.
type Registry struct {
	store        *focus.Store
	logger       *logging.Logger
	staleAfter   time.Duration
	activeWindow time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithWindows overrides the cleanup threshold and the concurrency window.
// Non-positive values keep the defaults.
func WithWindows(staleAfter, activeWindow time.Duration) Option {
	return func(r *Registry) {
		if staleAfter > 0 {
			r.staleAfter = staleAfter
		}
		if activeWindow > 0 {
			r.activeWindow = activeWindow
		}
	}
}

// NewRegistry creates a Registry on top of store.
func NewRegistry(store *focus.Store, opts ...Option) *Registry {
	r := &Registry{
		store:        store,
		logger:       logging.NopLogger(),
		staleAfter:   DefaultStaleAfter,
		activeWindow: DefaultActiveWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StaleAfter returns the cleanup threshold.
func (r *Registry) StaleAfter() time.Duration {
	return r.staleAfter
}

// ActiveWindow returns the concurrency window.
func (r *Registry) ActiveWindow() time.Duration {
	return r.activeWindow
}

// Register upserts sessionID. A new entry gets started = last_active = now
// and records cwd. An existing entry keeps its started time and cwd and
// only has last_active and focus refreshed.
func (r *Registry) Register(root, sessionID, cwd string, current focus.CurrentFocus) (*focus.State, error) {
	now := r.store.Now().UTC()

	state, _, err := r.store.UpdateFunc(root, func(s *focus.State) (focus.Patch, bool) {
		sessions := s.Sessions().Clone()
		entry, exists := sessions.Get(sessionID)
		if !exists {
			entry = focus.SessionEntry{Started: now, CWD: cwd}
		}
		if entry.Started.IsZero() {
			entry.Started = now
		}
		entry.Focus = current.Key()
		entry.LastActive = now
		sessions.Set(sessionID, entry)
		return focus.Patch{ActiveSessions: sessions}, true
	})
	if err != nil {
		return nil, errors.NewSessionError("failed to register session", err).WithSessionID(sessionID)
	}

	r.logger.Debug("session registered", "session_id", sessionID, "focus", current.Key())
	return state, nil
}

// Remove deletes sessionID if present. The record is written either way so
// last_updated reflects the session ending. removed reports whether an
// entry existed.
func (r *Registry) Remove(root, sessionID string) (state *focus.State, removed bool, err error) {
	state, _, err = r.store.UpdateFunc(root, func(s *focus.State) (focus.Patch, bool) {
		if s.ActiveSessions == nil {
			return focus.Patch{}, true
		}
		sessions := s.ActiveSessions.Clone()
		removed = sessions.Delete(sessionID)
		return focus.Patch{ActiveSessions: sessions}, true
	})
	if err != nil {
		return nil, false, errors.NewSessionError("failed to remove session", err).WithSessionID(sessionID)
	}
	return state, removed, nil
}

// Touch refreshes last_active for an existing entry. It writes nothing and
// returns false when sessionID is not registered.
func (r *Registry) Touch(root, sessionID string) (bool, error) {
	now := r.store.Now().UTC()

	_, wrote, err := r.store.UpdateFunc(root, func(s *focus.State) (focus.Patch, bool) {
		entry, ok := s.Sessions().Get(sessionID)
		if !ok {
			return focus.Patch{}, false
		}
		sessions := s.ActiveSessions.Clone()
		entry.LastActive = now
		sessions.Set(sessionID, entry)
		return focus.Patch{ActiveSessions: sessions}, true
	})
	if err != nil {
		return false, errors.NewSessionError("failed to touch session", err).WithSessionID(sessionID)
	}
	return wrote, nil
}

// Cleanup removes entries whose last activity is older than staleAfter
// (the registry default when non-positive). It writes only when at least
// one entry was removed and returns the removed ids in registry order.
func (r *Registry) Cleanup(root string, staleAfter time.Duration) ([]string, error) {
	if staleAfter <= 0 {
		staleAfter = r.staleAfter
	}
	now := r.store.Now()

	var removed []string
	_, _, err := r.store.UpdateFunc(root, func(s *focus.State) (focus.Patch, bool) {
		removed = removed[:0]
		if s.ActiveSessions == nil {
			return focus.Patch{}, false
		}
		sessions := s.ActiveSessions.Clone()
		for _, sess := range s.ActiveSessions.List() {
			if IsStale(sess.SessionEntry, now, staleAfter) {
				sessions.Delete(sess.ID)
				removed = append(removed, sess.ID)
			}
		}
		if len(removed) == 0 {
			return focus.Patch{}, false
		}
		return focus.Patch{ActiveSessions: sessions}, true
	})
	if err != nil {
		return nil, errors.NewSessionError("failed to clean up sessions", err)
	}

	if len(removed) > 0 {
		r.logger.Info("removed stale sessions", "count", len(removed), "session_ids", removed)
	}
	return removed, nil
}

// ListOthers returns the sessions other than excludeID that share cwd and
// were active within the registry's concurrency window.
func (r *Registry) ListOthers(state *focus.State, excludeID, cwd string) []focus.Session {
	return ListOthers(state, excludeID, cwd, r.activeWindow, r.store.Now())
}

// ListOthers returns entries of state that are not excludeID, are bound to
// exactly cwd, and are not stale under window at now.
func ListOthers(state *focus.State, excludeID, cwd string, window time.Duration, now time.Time) []focus.Session {
	var others []focus.Session
	for _, sess := range state.Sessions().List() {
		if sess.ID == excludeID {
			continue
		}
		if sess.CWD != cwd {
			continue
		}
		if IsStale(sess.SessionEntry, now, window) {
			continue
		}
		others = append(others, sess)
	}
	return others
}

// IsStale reports whether an entry's last activity (falling back to its
// start) is more than window before now. Entries without a usable
// timestamp are always stale.
func IsStale(e focus.SessionEntry, now time.Time, window time.Duration) bool {
	seen := e.LastSeen()
	if seen.IsZero() {
		return true
	}
	return now.Sub(seen) > window
}

// WarningText returns the concurrency warning appended to session-start
// context, or "" when others is empty.
func WarningText(others []focus.Session) string {
	if len(others) == 0 {
		return ""
	}
	word := "sessions"
	if len(others) == 1 {
		word = "session"
	}
	return fmt.Sprintf("\n> **Warning:** %d other active %s detected for this project. Changes may conflict.", len(others), word)
}

// SaveSummary records the session recap dated today. An empty workDone
// keeps the previous work list.
func (r *Registry) SaveSummary(root string, workDone []string) (*focus.State, error) {
	date := r.store.Now().UTC().Format(focus.DateFormat)

	state, _, err := r.store.UpdateFunc(root, func(s *focus.State) (focus.Patch, bool) {
		work := workDone
		if len(work) == 0 {
			work = []string{}
			if s.SessionSummary != nil && s.SessionSummary.WorkDone != nil {
				work = s.SessionSummary.WorkDone
			}
		}
		return focus.Patch{SessionSummary: &focus.SessionSummary{Date: date, WorkDone: work}}, true
	})
	if err != nil {
		return nil, errors.NewSessionError("failed to save session summary", err)
	}
	return state, nil
}

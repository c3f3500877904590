package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/session"
	"github.com/Iron-Ham/mindcontext/internal/tui/styles"
	"github.com/Iron-Ham/mindcontext/internal/util"
)

// SessionLine renders one registry entry: a status dot, the id, the focus
// key, how long ago it was last seen and its working directory. Entries
// outside the active window are shown muted.
func SessionLine(s focus.Session, now time.Time, window time.Duration, width int) string {
	style := styles.SessionActive
	status := "active"
	switch {
	case session.IsStale(s.SessionEntry, now, window):
		style = styles.SessionStale
		status = "stale"
	case now.Sub(s.LastSeen()) > window/2:
		style = styles.SessionIdle
		status = "idle"
	}

	line := fmt.Sprintf("● %s  %s  %s  %s  %s", s.ID, status, s.Focus, Age(s.LastSeen(), now), s.CWD)
	if width > 0 {
		line = util.EllipsizeWidth(line, width)
	}
	return style.Render(line)
}

// SessionList renders every entry, or a placeholder when there are none.
func SessionList(sessions []focus.Session, now time.Time, window time.Duration, width int) string {
	if len(sessions) == 0 {
		return styles.Muted.Render("no registered sessions")
	}
	lines := make([]string, 0, len(sessions))
	for _, s := range sessions {
		lines = append(lines, SessionLine(s, now, window, width))
	}
	return strings.Join(lines, "\n")
}

// Age formats the time since t in a compact form such as "5m" or "2h10m".
// A zero t renders as "never".
func Age(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) - h*60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

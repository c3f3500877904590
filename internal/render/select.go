package render

import (
	"regexp"
	"strings"

	"github.com/Iron-Ham/mindcontext/internal/focus"
)

var (
	criteriaHeading = regexp.MustCompile(`(?i)^#+\s*Acceptance Criteria\s*$`)
	anyHeading      = regexp.MustCompile(`^#+\s`)
	checklistItem   = regexp.MustCompile(`^[-*]\s*\[[ xX]\]`)
)

// SelectDecisions returns up to n decisions, those mentioning epic first.
// An entry mentions the epic when its key or value contains the epic name
// as a case-insensitive substring, so "auth" also matches "oauth-scopes".
// Order within each group is insertion order. A negative n returns all.
func SelectDecisions(d *focus.Decisions, epic string, n int) []focus.Decision {
	entries := d.Entries()
	if len(entries) == 0 {
		return nil
	}

	needle := strings.ToLower(epic)
	var related, others []focus.Decision
	for _, e := range entries {
		if needle != "" && (strings.Contains(strings.ToLower(e.Key), needle) ||
			strings.Contains(strings.ToLower(e.Value), needle)) {
			related = append(related, e)
		} else {
			others = append(others, e)
		}
	}

	selected := append(related, others...)
	if n >= 0 && len(selected) > n {
		selected = selected[:n]
	}
	return selected
}

// ExtractCriteria returns the checklist lines under the first "Acceptance
// Criteria" heading, up to the next heading of any level.
func ExtractCriteria(doc string) []string {
	var criteria []string
	collecting := false
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !collecting {
			if criteriaHeading.MatchString(line) {
				collecting = true
			}
			continue
		}
		if anyHeading.MatchString(line) {
			break
		}
		if checklistItem.MatchString(line) {
			criteria = append(criteria, line)
		}
	}
	return criteria
}

var reminderLines = []string{
	"",
	"---",
	"## Workflow Reminder",
	"Before implementing multi-file changes:",
	"1. Create a plan in `.project/plans/` first",
	"2. Follow: PRD → Epic → Tasks for new features",
	`3. Say "just do it" to bypass for quick fixes`,
	"",
}

// Reminder returns the workflow reminder block, or "" when enforcement is
// off.
func Reminder(enforcement string) string {
	if enforcement == focus.EnforcementOff {
		return ""
	}
	return strings.Join(reminderLines, "\n")
}

// Package styles holds the lipgloss palette shared by the live view and
// the CLI's formatted output.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette. All foregrounds meet WCAG AA contrast on dark surfaces.
var (
	PrimaryColor   = lipgloss.Color("#A78BFA") // violet-400
	SecondaryColor = lipgloss.Color("#10B981") // green
	WarningColor   = lipgloss.Color("#F59E0B") // amber
	ErrorColor     = lipgloss.Color("#F87171") // red-400
	MutedColor     = lipgloss.Color("#9CA3AF") // gray-400
	TextColor      = lipgloss.Color("#F9FAFB")
	BorderColor    = lipgloss.Color("#6B7280")
)

// Text styles.
var (
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)
)

// Layout styles.
var (
	Title       = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
	TabActive   = lipgloss.NewStyle().Bold(true).Foreground(TextColor).Background(PrimaryColor).Padding(0, 2)
	TabInactive = lipgloss.NewStyle().Foreground(MutedColor).Padding(0, 2)
	Panel       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(BorderColor).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
	HelpBar     = lipgloss.NewStyle().Foreground(MutedColor)
	HelpKey     = lipgloss.NewStyle().Bold(true).Foreground(SecondaryColor)
	ErrorMsg    = lipgloss.NewStyle().Bold(true).Foreground(ErrorColor)
	Label       = lipgloss.NewStyle().Foreground(MutedColor).Width(10)
)

// Session state styles.
var (
	SessionActive = lipgloss.NewStyle().Foreground(SecondaryColor)
	SessionIdle   = lipgloss.NewStyle().Foreground(WarningColor)
	SessionStale  = lipgloss.NewStyle().Foreground(MutedColor).Faint(true)
)

// HelpItem renders a key binding hint such as "q quit".
func HelpItem(key, desc string) string {
	return HelpKey.Render(key) + " " + desc
}

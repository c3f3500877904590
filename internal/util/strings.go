// Package util holds small text helpers shared by the renderer, the CLI
// and the TUI.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis is appended to shortened text.
const Ellipsis = "..."

// Ellipsize shortens s to at most maxLen runes, ending in Ellipsis when
// anything was cut. It counts runes, not display columns.
func Ellipsize(s string, maxLen int) string {
	if maxLen <= len(Ellipsis) {
		return Ellipsis
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-len(Ellipsis)]) + Ellipsis
}

// EllipsizeWidth shortens s to maxWidth terminal columns. Escape sequences
// are kept intact and wide characters count as two columns.
func EllipsizeWidth(s string, maxWidth int) string {
	if maxWidth <= len(Ellipsis) {
		return Ellipsis
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

// HeadLines returns the first n lines of text joined by "\n". A trailing
// newline in text does not count as an extra line unless n reaches it.
func HeadLines(text string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

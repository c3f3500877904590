package project

import (
	"path/filepath"
	"strings"
)

// Well-known locations relative to a project root.
const (
	ProjectDir  = ".project"
	ContextDir  = ".project/context"
	PlansDir    = ".project/plans"
	EpicsDir    = ".project/epics"
	FocusFile   = "focus.json"
	ProgressDoc = "progress.md"
	ConfigFile  = "config.json"
)

// FocusPath returns the path of the focus record under root.
func FocusPath(root string) string {
	return filepath.Join(root, ContextDir, FocusFile)
}

// ContextPath returns the directory holding the focus record.
func ContextPath(root string) string {
	return filepath.Join(root, ContextDir)
}

// ProgressPath returns the path of the progress document under root.
func ProgressPath(root string) string {
	return filepath.Join(root, ContextDir, ProgressDoc)
}

// PlansPath returns the plans directory under root.
func PlansPath(root string) string {
	return filepath.Join(root, PlansDir)
}

// ConfigPath returns the per-project override file under root.
func ConfigPath(root string) string {
	return filepath.Join(root, ProjectDir, ConfigFile)
}

// TaskPath returns the task document for epic/task. Short task ids are
// left-padded with zeros to three characters, so task "7" lives at 007.md.
func TaskPath(root, epic, task string) string {
	return filepath.Join(root, EpicsDir, epic, TaskFileName(task))
}

// TaskFileName returns the document file name for a task id.
func TaskFileName(task string) string {
	task = strings.TrimSpace(task)
	if len(task) < 3 {
		task = strings.Repeat("0", 3-len(task)) + task
	}
	return task + ".md"
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the bubbletea program.
type App struct {
	program *tea.Program
	model   Model
}

// New creates an App for model.
func New(model Model) *App {
	return &App{model: model}
}

// Run starts the program in the alternate screen and blocks until the user
// quits.
func (a *App) Run() error {
	a.program = tea.NewProgram(a.model, tea.WithAltScreen())
	_, err := a.program.Run()
	return err
}

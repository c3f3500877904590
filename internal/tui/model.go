// Package tui provides a live terminal view of a project's rendered
// context and its session registry. The view refreshes whenever the focus
// record or progress document changes on disk.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/project"
	"github.com/Iron-Ham/mindcontext/internal/render"
	"github.com/Iron-Ham/mindcontext/internal/tui/styles"
)

// Layout constants.
const (
	headerHeight  = 2
	footerHeight  = 1
	sessionsLimit = 5
)

var levels = []string{focus.LevelMinimal, focus.LevelStandard, focus.LevelFull}

// Source is where the view reads from.
type Source struct {
	Store        *focus.Store
	Docs         *project.Documents
	Renderer     *render.Renderer
	Root         string
	ActiveWindow time.Duration
}

// Messages

type loadedMsg struct {
	state   *focus.State
	content string
	err     error
}

type changedMsg struct{}

// Model is the bubbletea model for the live view.
type Model struct {
	src     Source
	level   string
	changes <-chan struct{}

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	state   *focus.State
	content string
	err     error
	loads   int
}

// NewModel creates a Model rendering level. changes may be nil, in which
// case the view only refreshes on request.
func NewModel(src Source, level string, changes <-chan struct{}) Model {
	if !render.ValidLevel(level) {
		level = focus.LevelMinimal
	}
	return Model{src: src, level: level, changes: changes, state: focus.New()}
}

// Level returns the tier being shown.
func (m Model) Level() string {
	return m.level
}

// Content returns the last rendered context.
func (m Model) Content() string {
	return m.content
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), waitForChange(m.changes))
}

func (m Model) load() tea.Cmd {
	src, level := m.src, m.level
	return func() tea.Msg {
		state, err := src.Store.Read(src.Root)
		if err != nil {
			return loadedMsg{err: err}
		}
		in, err := render.Load(src.Docs, src.Root, level, state)
		if err != nil {
			in = render.Input{State: state}
		}
		return loadedMsg{state: state, content: src.Renderer.Render(level, in)}
	}
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := m.viewportHeight()
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.viewport.SetContent(m.content)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.load()
		case "1", "2", "3":
			m.level = levels[msg.String()[0]-'1']
			return m, m.load()
		case "tab":
			m.level = nextLevel(m.level)
			return m, m.load()
		}

	case loadedMsg:
		m.loads++
		m.err = msg.err
		if msg.err == nil {
			m.state = msg.state
			m.content = msg.content
			if m.ready {
				m.viewport.Height = m.viewportHeight()
				m.viewport.SetContent(m.content)
			}
		}
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.load(), waitForChange(m.changes))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func nextLevel(level string) string {
	for i, l := range levels {
		if l == level {
			return levels[(i+1)%len(levels)]
		}
	}
	return levels[0]
}

func (m Model) sessionsHeight() int {
	n := m.state.Sessions().Len()
	if n > sessionsLimit {
		n = sessionsLimit
	}
	if n == 0 {
		n = 1
	}
	// border and title
	return n + 3
}

func (m Model) viewportHeight() int {
	h := m.height - headerHeight - footerHeight - m.sessionsHeight()
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.sessions())
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	tabs := make([]string, 0, len(levels))
	for i, l := range levels {
		label := string(rune('1'+i)) + " " + l
		if l == m.level {
			tabs = append(tabs, styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(label))
		}
	}
	title := styles.Title.Render("mindcontext") + "  " + styles.Muted.Render(m.src.Root)
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) sessions() string {
	list := m.state.Sessions().List()
	if len(list) > sessionsLimit {
		list = list[:sessionsLimit]
	}
	inner := m.width - 4
	body := styles.PanelTitle.Render("Sessions") + "\n" + SessionList(list, time.Now(), m.src.ActiveWindow, inner)
	panel := styles.Panel
	if m.width > 2 {
		panel = panel.Width(m.width - 2)
	}
	return panel.Render(body)
}

func (m Model) footer() string {
	if m.err != nil {
		return styles.ErrorMsg.Render("error: " + m.err.Error())
	}
	help := []string{
		styles.HelpItem("1-3", "level"),
		styles.HelpItem("tab", "cycle"),
		styles.HelpItem("r", "reload"),
		styles.HelpItem("↑/↓", "scroll"),
		styles.HelpItem("q", "quit"),
	}
	return styles.HelpBar.Render(strings.Join(help, "  "))
}

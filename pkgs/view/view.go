// Package view shows a rendered parse tree in a scrollable terminal pager.
package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight = 2 // Title + rule
	footerHeight = 2 // Rule + help
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

// Model is the bubbletea model of the pager
type Model struct {
	title   string
	content string
	failed  bool

	width  int
	height int
	ready  bool

	viewport viewport.Model
}

// New creates a pager over already rendered content. failed marks the title
// when the parse was rejected.
func New(title, content string, failed bool) Model {
	return Model{title: title, content: content, failed: failed}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		height := max(msg.Height-headerHeight-footerHeight, 1)

		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.YPosition = headerHeight
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the model
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	title := titleStyle.Render(m.title)
	if m.failed {
		title += " " + errorStyle.Render("(syntax error)")
	}
	b.WriteString(title + "\n")
	b.WriteString(helpStyle.Render(strings.Repeat("─", m.width)) + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(helpStyle.Render(strings.Repeat("─", m.width)) + "\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll • g/G top/bottom • q quit", m.viewport.ScrollPercent()*100)))
	return b.String()
}

// Run shows the pager until the user quits or ctx is cancelled
func Run(ctx context.Context, title, content string, failed bool) error {
	p := tea.NewProgram(
		New(title, content, failed),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tree view: %w", err)
	}
	return nil
}

// Package watch provides the live pane viewer for the watch command.
//
// It periodically reads the target pane's visible buffer through the
// controller and renders it, with a text input for sending a line to the
// pane. Sends are raw keystrokes (no completion marker): watching is for
// interactive use, not synchronized execution.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/timvw/tmux-bridge/internal/bridge"
)

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// messages
type readMsg struct {
	content string
	err     error
}

type sentMsg struct {
	err error
}

type tickMsg struct{}

// Watcher runs the interactive pane viewer.
type Watcher struct {
	Controller *bridge.Controller
	Refresh    time.Duration // interval between buffer reads
}

// Run starts the TUI and blocks until the user quits.
func (w *Watcher) Run(ctx context.Context) error {
	ti := textinput.New()
	ti.Placeholder = "Type a line and press Enter to send to the pane..."
	ti.CharLimit = 2048
	ti.Width = 80
	ti.Focus()

	refresh := w.Refresh
	if refresh <= 0 {
		refresh = time.Second
	}

	m := &watchModel{
		ctrl:      w.Controller,
		ctx:       ctx,
		refresh:   refresh,
		textInput: ti,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// model implements tea.Model
type watchModel struct {
	ctrl    *bridge.Controller
	ctx     context.Context
	refresh time.Duration

	content  string
	err      error
	lastRead time.Time

	textInput textinput.Model

	// dimensions
	width  int
	height int

	message string
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.doRead(), m.scheduleTick())
}

// scheduleTick returns a tea.Cmd that sends a tickMsg after the refresh interval.
func (m *watchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *watchModel) doRead() tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		content, err := ctrl.ReadBuffer(ctx, 0)
		return readMsg{content: content, err: err}
	}
}

func (m *watchModel) doSend(text string) tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		return sentMsg{err: ctrl.SendKeys(ctx, text, true)}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 4
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.doRead(), m.scheduleTick())

	case readMsg:
		m.err = msg.err
		if msg.err == nil {
			m.content = msg.content
			m.lastRead = time.Now()
		}
		return m, nil

	case sentMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("send failed: %v", msg.err)
		} else {
			m.message = ""
		}
		// Read immediately so the sent line shows up without waiting a tick.
		return m, m.doRead()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+l":
			return m, m.doRead()
		case "enter":
			text := m.textInput.Value()
			m.textInput.Reset()
			if text == "" {
				return m, nil
			}
			return m, m.doSend(text)
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *watchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("tmux-bridge watch: %s", m.ctrl.Target())))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(strings.Repeat("─", max(m.width, 10))))
	b.WriteString("\n")

	// Pane content fills the space between the header and the footer.
	paneHeight := m.height - 6
	if paneHeight < 1 {
		paneHeight = 1
	}
	b.WriteString(lastLines(m.content, paneHeight))
	b.WriteString("\n")

	b.WriteString(borderStyle.Render(strings.Repeat("─", max(m.width, 10))))
	b.WriteString("\n")

	status := fmt.Sprintf("refresh %s · last read %s · esc quit · ctrl+l reload",
		m.refresh, formatAgo(m.lastRead))
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("read failed: %v", m.err))
	} else if m.message != "" {
		status = errorStyle.Render(m.message)
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())

	return b.String()
}

// lastLines returns at most n trailing lines of s, padded to exactly n lines
// so the footer stays put while the pane fills.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func formatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%ds ago", int(time.Since(t).Seconds()))
}

// Package tui is the terminal front end: a shell that shows the chat widget
// as a trigger, a bar, or a full panel.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/bookchat/internal/bookchat/chat"
	"github.com/longkey1/bookchat/internal/bookchat/shell"
	"github.com/pkg/errors"
)

// Key bindings
const (
	KeyToggle   = "ctrl+o"
	KeyMinimize = "esc"
	KeyClose    = "ctrl+w"
	KeyOpen     = "enter"
	KeyQuit     = "ctrl+c"
)

const triggerIcon = "✦"

var (
	triggerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Foreground(lipgloss.Color("170")).
			Padding(0, 1)
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// ShellModel is the top level bubbletea model
type ShellModel struct {
	shell  *shell.Shell
	widget WidgetModel
	title  string

	width  int
	height int
}

// NewShellModel creates a closed shell hosting widget
func NewShellModel(ctx context.Context, widget *chat.Widget, title, welcome, style string) (ShellModel, error) {
	wm, err := NewWidgetModel(ctx, widget, style, welcome)
	if err != nil {
		return ShellModel{}, errors.Wrap(err, "creating chat widget view")
	}
	return ShellModel{
		shell:  shell.New(widget),
		widget: wm,
		title:  title,
		width:  defaultWidth,
		height: defaultHeight,
	}, nil
}

// Shell returns the presentation state machine
func (m ShellModel) Shell() *shell.Shell {
	return m.shell
}

// WidgetModel returns the hosted widget model
func (m ShellModel) WidgetModel() WidgetModel {
	return m.widget
}

func (m ShellModel) Init() tea.Cmd {
	return m.widget.Init()
}

func (m ShellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.widget.SetSize(panelSize(msg.Width, msg.Height))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case KeyQuit:
			return m, tea.Quit
		case KeyToggle:
			m.shell.Toggle()
			return m, nil
		case KeyClose:
			m.shell.Close()
			return m, nil
		case KeyMinimize:
			m.shell.Minimize()
			return m, nil
		}
		if m.shell.State() != shell.Open {
			if msg.String() == KeyOpen {
				m.shell.Open()
			}
			return m, nil
		}
	}

	// outcomes and spinner ticks reach the widget in every state
	var cmd tea.Cmd
	m.widget, cmd = m.widget.Update(msg)
	return m, cmd
}

func (m ShellModel) View() string {
	switch m.shell.State() {
	case shell.Closed:
		return m.viewTrigger()
	case shell.Minimized:
		return m.viewBar()
	default:
		return m.viewPanel()
	}
}

func (m ShellModel) viewTrigger() string {
	help := helpStyle.Render("enter open • ctrl+c quit")
	return lipgloss.JoinVertical(lipgloss.Left, triggerStyle.Render(triggerIcon), help)
}

func (m ShellModel) viewBar() string {
	label := triggerIcon + " " + m.title
	if m.shell.Widget().Loading() {
		label += " " + chat.ThinkingText
	}
	help := helpStyle.Render("enter open • ctrl+w close • ctrl+c quit")
	return lipgloss.JoinVertical(lipgloss.Left, barStyle.Render(label), help)
}

func (m ShellModel) viewPanel() string {
	width, _ := panelSize(m.width, m.height)
	controls := "− ×"
	gap := max(width-lipgloss.Width(m.title)-lipgloss.Width(controls)-2, 1)
	header := headerStyle.Width(width).Render(m.title + strings.Repeat(" ", gap) + controls)
	help := helpStyle.Render("enter send • esc minimize • ctrl+w close • ctrl+c quit")

	body := lipgloss.JoinVertical(lipgloss.Left, header, m.widget.View())
	return lipgloss.JoinVertical(lipgloss.Left, panelStyle.Render(body), help)
}

// panelSize is the space inside the panel border, less the header and help lines
func panelSize(width, height int) (int, int) {
	return max(width-2, 20), max(height-5, 8)
}

// Run starts the terminal program and blocks until the user quits
func Run(ctx context.Context, m ShellModel, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "running chat program")
	}
	return nil
}

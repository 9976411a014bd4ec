package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/bookchat/internal/bookchat/chat"
	"github.com/rs/zerolog/log"
)

const (
	InputPlaceholder   = "Ask a question about the book..."
	SendingPlaceholder = "Sending..."

	defaultWidth  = 80
	defaultHeight = 24
	inputHeight   = 3
)

// outcomeMsg carries a settled chat exchange back to the event loop
type outcomeMsg chat.Outcome

var (
	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
)

// WidgetModel drives a chat.Widget from terminal events. The network call of
// a submission runs as a tea.Cmd and its outcome comes back as a message, so
// the transcript is only ever mutated inside Update.
type WidgetModel struct {
	ctx      context.Context
	widget   *chat.Widget
	renderer *chat.Renderer
	style    string
	welcome  string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
}

// NewWidgetModel creates a widget model rendering with the given glamour style.
// An "auto" style is resolved here, once, so resizing never queries the terminal.
func NewWidgetModel(ctx context.Context, widget *chat.Widget, style, welcome string) (WidgetModel, error) {
	style = chat.ResolveStyle(style)
	renderer, err := chat.NewRenderer(style, defaultWidth-4)
	if err != nil {
		return WidgetModel{}, err
	}

	ti := textinput.New()
	ti.Placeholder = InputPlaceholder
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Width = defaultWidth - 8
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := WidgetModel{
		ctx:      ctx,
		widget:   widget,
		renderer: renderer,
		style:    style,
		welcome:  welcome,
		input:    ti,
		viewport: viewport.New(defaultWidth-4, defaultHeight-inputHeight),
		spinner:  sp,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.refresh()
	return m, nil
}

// Widget returns the driven chat widget
func (m WidgetModel) Widget() *chat.Widget {
	return m.widget
}

// InputValue returns the text currently in the input box
func (m WidgetModel) InputValue() string {
	return m.input.Value()
}

// Placeholder returns the input placeholder currently shown
func (m WidgetModel) Placeholder() string {
	return m.input.Placeholder
}

// Style returns the resolved glamour style
func (m WidgetModel) Style() string {
	return m.style
}

// RenderWidth returns the word wrap width of the transcript renderer
func (m WidgetModel) RenderWidth() int {
	return m.renderer.Width()
}

// Focused reports whether the input box accepts keystrokes
func (m WidgetModel) Focused() bool {
	return m.input.Focused()
}

func (m WidgetModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize fits the transcript and the input box into width x height cells
func (m *WidgetModel) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height

	m.viewport.Width = max(width-4, 10)
	m.viewport.Height = max(height-inputHeight, 1)
	m.input.Width = max(width-8, 10)

	if m.renderer.Width() != m.viewport.Width {
		renderer, err := chat.NewRenderer(m.style, m.viewport.Width)
		if err != nil {
			log.Warn().Err(err).Int("width", m.viewport.Width).Msg("Keeping previous renderer")
		} else {
			m.renderer = renderer
		}
	}
	m.refresh()
}

func (m WidgetModel) Update(msg tea.Msg) (WidgetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if m.widget.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.widget.SetInput(m.input.Value())
		return m, cmd

	case outcomeMsg:
		m.widget.Settle(chat.Outcome(msg))
		m.input.Placeholder = InputPlaceholder
		cmd := m.input.Focus()
		m.refresh()
		return m, cmd

	case spinner.TickMsg:
		if !m.widget.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m WidgetModel) submit() (WidgetModel, tea.Cmd) {
	m.widget.SetInput(m.input.Value())
	req, ok := m.widget.Begin()
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.input.Placeholder = SendingPlaceholder
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.send(req))
}

func (m WidgetModel) send(req chat.Request) tea.Cmd {
	ctx, widget := m.ctx, m.widget
	return func() tea.Msg {
		return outcomeMsg(widget.Send(ctx, req))
	}
}

// refresh re-renders the transcript and scrolls to the newest message
func (m *WidgetModel) refresh() {
	m.viewport.SetContent(m.renderer.RenderTranscript(m.widget.Messages(), m.widget.Loading(), m.welcome))
	m.viewport.GotoBottom()
}

func (m WidgetModel) View() string {
	input := m.input.View()
	if m.widget.Loading() {
		input = m.spinner.View() + " " + input
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		inputStyle.Width(max(m.width-4, 10)).Render(input),
	)
}

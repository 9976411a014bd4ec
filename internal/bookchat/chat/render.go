package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

const (
	// SourceFallbackLabel labels a source the backend sent without a title
	SourceFallbackLabel = "Source"
	ThinkingText        = "Thinking..."
	timeLayout          = "15:04:05"
)

var (
	userLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	aiLabelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	systemLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	systemTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	timeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sourcesStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	confidenceStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	thinkingStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("170"))
	welcomeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// SourceLink is a citation as displayed: a label pointing to a URL
type SourceLink struct {
	Label string
	URL   string
}

// View is the display form of a message before styling
type View struct {
	Sender     Sender
	Body       string
	Markdown   bool
	Sources    []SourceLink
	Confidence string
	Time       string
}

// ViewOf applies the display rules to a message. Only AI messages are markdown
// and only AI messages list their sources.
func ViewOf(m Message) View {
	v := View{
		Sender:   m.Sender,
		Body:     m.Text,
		Markdown: m.Sender == SenderAI,
		Time:     m.Timestamp.Format(timeLayout),
	}
	if m.Sender == SenderAI {
		for _, s := range m.Sources {
			label := s.Title
			if label == "" {
				label = SourceFallbackLabel
			}
			v.Sources = append(v.Sources, SourceLink{Label: label, URL: s.URL})
		}
	}
	if m.Confidence != nil {
		v.Confidence = FormatConfidence(*m.Confidence)
	}
	return v
}

// FormatConfidence renders a score in [0,1] as a percentage with one decimal place
func FormatConfidence(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

// Renderer turns transcript messages into terminal text
type Renderer struct {
	md    *glamour.TermRenderer
	width int
}

// ResolveStyle turns "auto" (or empty) into "dark" or "light" by asking the
// terminal for its background. Call it before a program takes over stdin.
func ResolveStyle(style string) string {
	if style != "" && style != "auto" {
		return style
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// NewRenderer creates a renderer. style is a glamour standard style name or
// "auto" to follow the terminal background.
func NewRenderer(style string, width int) (*Renderer, error) {
	styleOpt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}

	opts := []glamour.TermRendererOption{styleOpt}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "creating markdown renderer with style %q", style)
	}
	return &Renderer{md: md, width: width}, nil
}

// Width returns the word wrap width, 0 meaning no wrapping
func (r *Renderer) Width() int {
	return r.width
}

// RenderMessage renders a single message with its header, body, sources and confidence
func (r *Renderer) RenderMessage(m Message) string {
	v := ViewOf(m)

	var sb strings.Builder
	sb.WriteString(senderLabel(v.Sender))
	sb.WriteString(" ")
	sb.WriteString(timeStyle.Render(v.Time))
	sb.WriteString("\n")
	sb.WriteString(r.renderBody(v))

	if len(v.Sources) > 0 {
		sb.WriteString("\n")
		sb.WriteString(sourcesStyle.Render("Sources:"))
		for _, s := range v.Sources {
			sb.WriteString("\n")
			sb.WriteString(sourcesStyle.Render(fmt.Sprintf("  • %s (%s)", s.Label, s.URL)))
		}
	}
	if v.Confidence != "" {
		sb.WriteString("\n")
		sb.WriteString(confidenceStyle.Render("Confidence: " + v.Confidence))
	}
	return sb.String()
}

// RenderTranscript renders every message, oldest first. While loading, a
// thinking placeholder follows the last message; it is not part of the transcript.
// welcome is shown instead when there are no messages yet.
func (r *Renderer) RenderTranscript(messages []Message, loading bool, welcome string) string {
	var blocks []string
	if len(messages) == 0 && welcome != "" {
		blocks = append(blocks, welcomeStyle.Render(welcome))
	}
	for _, m := range messages {
		blocks = append(blocks, r.RenderMessage(m))
	}
	if loading {
		blocks = append(blocks, aiLabelStyle.Render("Assistant")+"\n"+thinkingStyle.Render(ThinkingText))
	}
	return strings.Join(blocks, "\n\n")
}

func (r *Renderer) renderBody(v View) string {
	if !v.Markdown {
		if v.Sender == SenderSystem {
			return systemTextStyle.Render(v.Body)
		}
		return v.Body
	}

	out, err := r.md.Render(v.Body)
	if err != nil {
		// fall back to the raw text rather than dropping the answer
		return v.Body
	}
	return strings.Trim(out, "\n")
}

func senderLabel(s Sender) string {
	switch s {
	case SenderUser:
		return userLabelStyle.Render("You")
	case SenderAI:
		return aiLabelStyle.Render("Assistant")
	default:
		return systemLabelStyle.Render("System")
	}
}

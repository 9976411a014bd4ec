// Package shell tracks how the chat widget is presented: hidden behind a
// trigger, collapsed to a bar, or open as a full panel.
package shell

import (
	"github.com/longkey1/bookchat/internal/bookchat/chat"
	"github.com/rs/zerolog/log"
)

// State is the presentation state of the container
type State int

const (
	Closed State = iota
	Minimized
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Minimized:
		return "minimized"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// Shell hosts a chat widget. Changing the presentation state never touches
// the widget, so the transcript and session survive a close.
type Shell struct {
	state  State
	widget *chat.Widget
}

// New creates a closed shell around widget
func New(widget *chat.Widget) *Shell {
	return &Shell{state: Closed, widget: widget}
}

// State returns the current presentation state
func (s *Shell) State() State {
	return s.state
}

// Widget returns the hosted chat widget
func (s *Shell) Widget() *chat.Widget {
	return s.widget
}

// Open shows the full panel from any state
func (s *Shell) Open() State {
	return s.set(Open)
}

// Toggle opens a closed shell and otherwise flips between open and minimized
func (s *Shell) Toggle() State {
	switch s.state {
	case Open:
		return s.set(Minimized)
	default:
		return s.set(Open)
	}
}

// Minimize collapses an open panel to the bar. It does nothing when closed.
func (s *Shell) Minimize() State {
	if s.state == Closed {
		return s.state
	}
	return s.set(Minimized)
}

// Close hides the shell behind its trigger
func (s *Shell) Close() State {
	return s.set(Closed)
}

func (s *Shell) set(next State) State {
	if next != s.state {
		log.Debug().Stringer("from", s.state).Stringer("to", next).Msg("Shell state changed")
	}
	s.state = next
	return next
}

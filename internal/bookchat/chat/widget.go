// Package chat holds the chat widget: the transcript, the pending input and
// the single in-flight exchange with the backend.
//
// A submission runs in three steps so an event loop can keep the network
// call off its own goroutine:
//
//	req, ok := w.Begin()       // validate, echo the user message, start awaiting
//	out := w.Send(ctx, req)    // network call, safe on any goroutine
//	w.Settle(out)              // record the answer or the error, stop awaiting
//
// Submit chains the three steps for synchronous callers.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/longkey1/bookchat/internal/bookchat/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var errEmptyResponse = errors.New("empty response from chat endpoint")

// Client is the part of the API client the widget drives
type Client interface {
	SendMessage(ctx context.Context, message string, sessionID *string) (*api.ChatResponse, error)
}

// State is the widget submission state
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaitingResponse"
	default:
		return "unknown"
	}
}

// Request is a chat exchange captured when it was submitted
type Request struct {
	Text      string
	SessionID *string
}

// Outcome is the settled result of a Request
type Outcome struct {
	Response *api.ChatResponse
	Err      error
}

// Option configures a Widget
type Option func(*Widget)

// WithClock sets the time source used to stamp messages
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		w.now = now
	}
}

// Widget owns the transcript, the input text, the loading state and the session id.
// It is not safe for concurrent use; only Send may run on another goroutine.
type Widget struct {
	client    Client
	messages  []Message
	input     string
	state     State
	sessionID string
	now       func() time.Time
}

// NewWidget creates an idle widget with an empty transcript
func NewWidget(client Client, opts ...Option) *Widget {
	w := &Widget{
		client:   client,
		messages: []Message{},
		state:    StateIdle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetInput replaces the pending input text. Input is disabled while awaiting a response.
func (w *Widget) SetInput(text string) {
	if w.state == StateAwaitingResponse {
		return
	}
	w.input = text
}

// Input returns the pending input text
func (w *Widget) Input() string {
	return w.input
}

// Messages returns a copy of the transcript, oldest first
func (w *Widget) Messages() []Message {
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// State returns the submission state
func (w *Widget) State() State {
	return w.state
}

// Loading reports whether a request is in flight
func (w *Widget) Loading() bool {
	return w.state == StateAwaitingResponse
}

// SessionID returns the backend session id, or "" before the first successful exchange
func (w *Widget) SessionID() string {
	return w.sessionID
}

// Begin starts a submission of the pending input. It returns false, and changes
// nothing, when the input is blank or a request is already in flight.
func (w *Widget) Begin() (Request, bool) {
	if w.state == StateAwaitingResponse {
		return Request{}, false
	}
	text := w.input
	if strings.TrimSpace(text) == "" {
		return Request{}, false
	}

	w.messages = append(w.messages, newMessage(SenderUser, text, w.now()))
	w.input = ""
	w.state = StateAwaitingResponse

	req := Request{Text: text}
	if w.sessionID != "" {
		sessionID := w.sessionID
		req.SessionID = &sessionID
	}
	return req, true
}

// Send performs the network call for req. It only reads the client, so it may
// run on any goroutine while the event loop keeps handling input.
func (w *Widget) Send(ctx context.Context, req Request) Outcome {
	resp, err := w.client.SendMessage(ctx, req.Text, req.SessionID)
	return Outcome{Response: resp, Err: err}
}

// Settle records the outcome of the in-flight request and returns to idle
func (w *Widget) Settle(out Outcome) {
	if w.state != StateAwaitingResponse {
		log.Warn().Msg("Ignoring chat outcome, no request in flight")
		return
	}
	defer func() {
		w.state = StateIdle
	}()

	if out.Err == nil && out.Response == nil {
		out.Err = errEmptyResponse
	}
	if out.Err != nil {
		log.Warn().Err(out.Err).Msg("Error sending message")
		w.messages = append(w.messages, newMessage(SenderSystem, Classify(out.Err), w.now()))
		return
	}

	resp := out.Response
	if w.sessionID == "" && resp.SessionID != "" {
		w.sessionID = resp.SessionID
		log.Debug().Str("session_id", w.sessionID).Msg("Adopted backend session")
	}

	msg := newMessage(SenderAI, resp.Response, w.now())
	msg.Sources = sourcesFrom(resp.Sources)
	if resp.ConfidenceScore != nil {
		confidence := *resp.ConfidenceScore
		msg.Confidence = &confidence
	}
	w.messages = append(w.messages, msg)
}

// Submit runs a whole submission synchronously. It returns false when the
// input was rejected; a failed exchange still returns true.
func (w *Widget) Submit(ctx context.Context) bool {
	req, ok := w.Begin()
	if !ok {
		return false
	}
	w.Settle(w.Send(ctx, req))
	return true
}

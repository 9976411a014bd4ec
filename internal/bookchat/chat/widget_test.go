package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/longkey1/bookchat/internal/bookchat/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	text      string
	sessionID *string
}

// fakeClient answers SendMessage from a queue of canned outcomes
type fakeClient struct {
	outcomes []Outcome
	calls    []sentMessage
}

func (f *fakeClient) SendMessage(_ context.Context, message string, sessionID *string) (*api.ChatResponse, error) {
	f.calls = append(f.calls, sentMessage{text: message, sessionID: sessionID})
	if len(f.outcomes) == 0 {
		return &api.ChatResponse{Response: "ok"}, nil
	}
	out := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return out.Response, out.Err
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func ptr[T any](v T) *T { return &v }

func TestSubmitSuccessAppendsUserThenAI(t *testing.T) {
	client := &fakeClient{outcomes: []Outcome{{Response: &api.ChatResponse{Response: "Hello", SessionID: "s1"}}}}
	w := NewWidget(client, WithClock(fixedClock()))

	w.SetInput("What is a humanoid robot?")
	require.True(t, w.Submit(context.Background()))

	msgs := w.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, SenderUser, msgs[0].Sender)
	assert.Equal(t, "What is a humanoid robot?", msgs[0].Text)
	assert.Equal(t, SenderAI, msgs[1].Sender)
	assert.Equal(t, "Hello", msgs[1].Text)
	assert.Empty(t, msgs[1].Sources)
	assert.Nil(t, msgs[1].Confidence)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, w.Input())
	assert.Equal(t, "s1", w.SessionID())
}

func TestSubmitKeepsUntrimmedText(t *testing.T) {
	client := &fakeClient{}
	w := NewWidget(client)

	w.SetInput("  spaced question  ")
	require.True(t, w.Submit(context.Background()))

	require.Len(t, client.calls, 1)
	assert.Equal(t, "  spaced question  ", client.calls[0].text)
	assert.Equal(t, "  spaced question  ", w.Messages()[0].Text)
}

func TestBlankInputIsRejected(t *testing.T) {
	for _, input := range []string{"", " ", "\t\n  "} {
		client := &fakeClient{}
		w := NewWidget(client)

		w.SetInput(input)
		assert.False(t, w.Submit(context.Background()))
		assert.Empty(t, w.Messages())
		assert.Empty(t, client.calls)
		assert.Equal(t, StateIdle, w.State())
	}
}

func TestSubmitWhileAwaitingIsNoop(t *testing.T) {
	client := &fakeClient{}
	w := NewWidget(client)

	w.SetInput("first")
	req, ok := w.Begin()
	require.True(t, ok)
	assert.True(t, w.Loading())
	assert.Empty(t, w.Input(), "input is cleared before the call completes")

	before := w.Messages()

	// input is disabled while awaiting
	w.SetInput("second")
	assert.Empty(t, w.Input())

	_, ok = w.Begin()
	assert.False(t, ok)
	assert.False(t, w.Submit(context.Background()))
	assert.Equal(t, before, w.Messages())
	assert.Empty(t, client.calls)

	w.Settle(w.Send(context.Background(), req))
	assert.Len(t, client.calls, 1)
	assert.False(t, w.Loading())
	assert.Len(t, w.Messages(), 2)
}

func TestSessionIDAdoptedOnce(t *testing.T) {
	client := &fakeClient{outcomes: []Outcome{
		{Response: &api.ChatResponse{Response: "one", SessionID: "s1"}},
		{Response: &api.ChatResponse{Response: "two", SessionID: "s2"}},
	}}
	w := NewWidget(client)

	w.SetInput("first")
	require.True(t, w.Submit(context.Background()))
	w.SetInput("second")
	require.True(t, w.Submit(context.Background()))

	assert.Equal(t, "s1", w.SessionID())
	require.Len(t, client.calls, 2)
	assert.Nil(t, client.calls[0].sessionID)
	require.NotNil(t, client.calls[1].sessionID)
	assert.Equal(t, "s1", *client.calls[1].sessionID)
}

func TestSessionIDNotAdoptedFromFailureOrEmpty(t *testing.T) {
	client := &fakeClient{outcomes: []Outcome{
		{Err: &api.StatusError{StatusCode: 500}},
		{Response: &api.ChatResponse{Response: "no session"}},
		{Response: &api.ChatResponse{Response: "now", SessionID: "s3"}},
	}}
	w := NewWidget(client)

	for _, q := range []string{"a", "b", "c"} {
		w.SetInput(q)
		require.True(t, w.Submit(context.Background()))
	}

	assert.Equal(t, "s3", w.SessionID())
	assert.Nil(t, client.calls[1].sessionID)
	assert.Nil(t, client.calls[2].sessionID)
}

func TestFailureAppendsSystemMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "network", err: &api.NetworkError{Method: "POST", URL: "http://x/chat", Err: errors.New("connection refused")}, want: UnreachableMessage},
		{name: "not found", err: &api.StatusError{StatusCode: 404}, want: EndpointMessage},
		{name: "server error", err: &api.StatusError{StatusCode: 500}, want: ServerErrorMessage},
		{name: "teapot", err: &api.StatusError{StatusCode: 418}, want: GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWidget(&fakeClient{outcomes: []Outcome{{Err: tt.err}}})
			w.SetInput("question")
			require.True(t, w.Submit(context.Background()))

			msgs := w.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, SenderSystem, msgs[1].Sender)
			assert.Equal(t, tt.want, msgs[1].Text)
			assert.NotContains(t, msgs[1].Text, tt.err.Error())
			assert.Equal(t, StateIdle, w.State())
			assert.Empty(t, w.SessionID())
		})
	}
}

func TestSettleCopiesSourcesAndConfidence(t *testing.T) {
	resp := &api.ChatResponse{
		Response: "Hello",
		Sources: []api.Source{
			{SourceURL: "http://x", SectionTitle: "Intro"},
			{SourceURL: "http://y"},
		},
		ConfidenceScore: ptr(0.87),
	}
	w := NewWidget(&fakeClient{outcomes: []Outcome{{Response: resp}}})
	w.SetInput("hi")
	require.True(t, w.Submit(context.Background()))

	ai := w.Messages()[1]
	assert.Equal(t, []Source{{URL: "http://x", Title: "Intro"}, {URL: "http://y"}}, ai.Sources)
	require.NotNil(t, ai.Confidence)
	assert.InDelta(t, 0.87, *ai.Confidence, 1e-9)

	// the transcript does not alias the response
	*resp.ConfidenceScore = 0.1
	assert.InDelta(t, 0.87, *w.Messages()[1].Confidence, 1e-9)
}

func TestSettleWithoutRequestIsIgnored(t *testing.T) {
	w := NewWidget(&fakeClient{})
	w.Settle(Outcome{Response: &api.ChatResponse{Response: "stray"}})
	assert.Empty(t, w.Messages())
	assert.Equal(t, StateIdle, w.State())
}

func TestSettleNilResponseIsGenericError(t *testing.T) {
	w := NewWidget(&fakeClient{outcomes: []Outcome{{}}})
	w.SetInput("hi")
	require.True(t, w.Submit(context.Background()))

	msgs := w.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, SenderSystem, msgs[1].Sender)
	assert.Equal(t, GenericMessage, msgs[1].Text)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaitingResponse", StateAwaitingResponse.String())
}

package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/bookchat/internal/bookchat/api"
)

// Sender identifies who produced a message
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderSystem Sender = "system"
)

// Source is a citation attached to an AI message
type Source struct {
	URL   string
	Title string // optional
}

// Message is a single transcript entry. Messages are never modified after creation.
type Message struct {
	ID         string
	Text       string
	Sender     Sender
	Sources    []Source
	Confidence *float64 // nil when the backend sent no score
	Timestamp  time.Time
}

func newMessage(sender Sender, text string, now time.Time) Message {
	return Message{
		ID:        uuid.New().String(),
		Text:      text,
		Sender:    sender,
		Sources:   []Source{},
		Timestamp: now,
	}
}

// sourcesFrom converts backend citations, keeping their order
func sourcesFrom(in []api.Source) []Source {
	out := make([]Source, 0, len(in))
	for _, s := range in {
		out = append(out, Source{URL: s.SourceURL, Title: s.SectionTitle})
	}
	return out
}

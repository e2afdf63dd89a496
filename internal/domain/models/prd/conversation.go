package prd

import (
	"strings"
	"time"
)

// ConversationLog is the ordered, append-only history of a document's turns
type ConversationLog struct {
	turns []Turn
}

// NewConversationLog creates a log seeded with already persisted turns.
// The turns must already be in timestamp order.
func NewConversationLog(turns []Turn) *ConversationLog {
	log := &ConversationLog{turns: make([]Turn, 0, len(turns))}
	log.turns = append(log.turns, turns...)
	return log
}

// Append adds a turn at the end of the log
func (l *ConversationLog) Append(turn Turn) {
	l.turns = append(l.turns, turn)
}

// All returns a copy of the turns in order
func (l *ConversationLog) All() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns
func (l *ConversationLog) Len() int {
	return len(l.turns)
}

// Last returns the most recent turn, or nil when empty
func (l *ConversationLog) Last() *Turn {
	if len(l.turns) == 0 {
		return nil
	}
	t := l.turns[len(l.turns)-1]
	return &t
}

// Transcript serialises the history followed by the new user message:
//
//	USER: first message
//
//	ASSISTANT: reply
//
//	USER: <message>
func (l *ConversationLog) Transcript(message string) string {
	var b strings.Builder
	for _, t := range l.turns {
		b.WriteString(strings.ToUpper(string(t.Role)))
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("USER: ")
	b.WriteString(message)
	return b.String()
}

// Session is the working state of one document between persistence flushes:
// its merged sections, the full log and the turns not yet written.
type Session struct {
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	Template   string    `json:"template"`
	Sections   *Sections `json:"sections"`
	Turns      []Turn    `json:"turns"`
	Pending    []Turn    `json:"pending,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Log returns the session turns as a conversation log
func (s *Session) Log() *ConversationLog {
	return NewConversationLog(s.Turns)
}

// Dirty reports whether the session holds unsaved state
func (s *Session) Dirty() bool {
	return len(s.Pending) > 0
}

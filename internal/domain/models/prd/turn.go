package prd

import (
	"time"
)

// Role identifies the author of a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Question is a prompt extracted from an assistant turn. Options may be empty,
// in which case the client shows the prompt text without choice buttons.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// HasOptions reports whether the question offers choices
func (q *Question) HasOptions() bool {
	return q != nil && len(q.Options) > 0
}

// Turn is one immutable message of a document's conversation.
// Content holds the full text as exchanged, tags included, so it can be
// parsed again; Display is computed for clients and never stored.
type Turn struct {
	ID         string        `json:"id" db:"id"`
	DocumentID string        `json:"prd_id" db:"prd_id"`
	Role       Role          `json:"role" db:"role"`
	Content    string        `json:"content" db:"content"`
	Timestamp  time.Time     `json:"timestamp" db:"timestamp"`
	Question   *Question     `json:"question,omitempty"`
	Metadata   *TurnMetadata `json:"metadata,omitempty" db:"metadata"`

	// Computed fields (not stored in DB)
	Display string `json:"display,omitempty"`
}

// TurnMetadata is the JSON stored alongside a turn
type TurnMetadata struct {
	Question        *Question `json:"question,omitempty"`
	Generator       string    `json:"generator,omitempty"`
	Model           string    `json:"model,omitempty"`
	SectionsUpdated []string  `json:"sections_updated,omitempty"`
	DurationMS      int64     `json:"duration_ms,omitempty"`
}

// RecentConversation summarises the latest activity on one document
type RecentConversation struct {
	DocumentID      string    `json:"prd_id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	LastMessage     string    `json:"last_message"`
	LastMessageRole Role      `json:"last_message_role"`
	LastMessageTime time.Time `json:"last_message_time"`
}

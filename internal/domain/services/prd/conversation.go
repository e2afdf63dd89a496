package prd

import (
	"context"

	"redspec/internal/domain/models/prd"
	"redspec/internal/protocol"
)

// ConversationService drives the question-and-answer loop that grows a PRD
type ConversationService interface {
	// SendMessage runs one exchange: the user message is sent with the full
	// history, the reply is parsed, its sections merged and both turns stored.
	// On a *domain.GenerationError nothing changes. On a
	// *domain.PersistenceError the exchange is kept in the session store and
	// its Result holds the *ExchangeResult.
	SendMessage(ctx context.Context, documentID string, req *SendMessageRequest) (*ExchangeResult, error)

	// ListTurns returns the conversation in order, including held turns
	ListTurns(ctx context.Context, documentID string, limit int) ([]prd.Turn, error)

	// RecentConversations lists the latest activity per PRD
	RecentConversations(ctx context.Context, limit int) ([]prd.RecentConversation, error)

	// Flush writes any held turns and document state for a PRD.
	// Returns the number of turns written.
	Flush(ctx context.Context, documentID string) (int, error)

	// ParsePreview parses text without touching any state
	ParsePreview(ctx context.Context, text string) (*ParsePreview, error)
}

// SendMessageRequest is the DTO for one user message
type SendMessageRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// ExchangeResult is what one exchange produced
type ExchangeResult struct {
	Document        *prd.Document `json:"prd"`
	UserTurn        prd.Turn      `json:"user_turn"`
	AssistantTurn   prd.Turn      `json:"assistant_turn"`
	Question        *prd.Question `json:"question,omitempty"`
	SectionsUpdated []string      `json:"sections_updated"`
	Persisted       bool          `json:"persisted"`
}

// ParsePreview is a stateless parse of tagged text
type ParsePreview struct {
	Sections  *prd.Sections `json:"sections"`
	Question  *prd.Question `json:"question,omitempty"`
	Display   string        `json:"display"`
	Assembled string        `json:"assembled"`
}

// NewParsePreview builds a preview from a parse result
func NewParsePreview(text string, result protocol.Result) *ParsePreview {
	return &ParsePreview{
		Sections:  result.Sections,
		Question:  result.Question,
		Display:   protocol.DisplayText(text, result.Question),
		Assembled: protocol.Assemble(result.Sections),
	}
}

// Package generation reaches the collaborator that turns a conversation
// transcript into tagged PRD text. Every implementation returns one text blob
// per request; parsing it is the protocol package's job.
package generation

import (
	"context"
	"time"

	"redspec/internal/templates"
)

// Request is one generation call
type Request struct {
	// SystemPrompt carries the tag protocol instructions and template plan
	SystemPrompt string
	// Transcript is the serialised history ending with the new user message
	Transcript string
	// Model overrides the generator's default model when set
	Model string
	// Template is the document's section plan, nil when unknown
	Template *templates.Template
}

// Prompt joins system prompt and transcript for collaborators that accept a
// single text input.
func (r *Request) Prompt() string {
	if r.SystemPrompt == "" {
		return r.Transcript
	}
	return r.SystemPrompt + "\n\n" + r.Transcript
}

// Response is the raw collaborator output
type Response struct {
	Text         string
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}

// Generator produces the next assistant text for a transcript.
// Errors should be *domain.GenerationError; WithTimeout classifies any that
// are not.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	Name() string
}

package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"

	"redspec/internal/domain"
)

// DefaultAnthropicModel is used when no model is configured
const DefaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicGenerator calls Claude through the meridian-llm-go provider
type AnthropicGenerator struct {
	provider llmprovider.Provider
	model    string
}

// NewAnthropicGenerator creates a generator from an API key
func NewAnthropicGenerator(apiKey, model string) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	provider, err := anthropic.NewProvider(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}
	return NewProviderGenerator(provider, model), nil
}

// NewProviderGenerator wraps any meridian-llm-go provider
func NewProviderGenerator(provider llmprovider.Provider, model string) *AnthropicGenerator {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicGenerator{provider: provider, model: model}
}

// Name returns the provider name
func (g *AnthropicGenerator) Name() string {
	return g.provider.Name().String()
}

// Generate sends the system prompt as the system parameter and the transcript
// as a single user message, then joins the text blocks of the reply.
func (g *AnthropicGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	model := g.model
	if req.Model != "" {
		model = req.Model
	}
	if !g.provider.SupportsModel(model) {
		return nil, domain.NewGenerationError(domain.GenerationFailed, g.Name(),
			fmt.Sprintf("model '%s' is not supported", model), nil)
	}

	libReq := &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{toLibraryMessage("user", req.Transcript)},
		Model:    model,
	}
	if req.SystemPrompt != "" {
		system := req.SystemPrompt
		libReq.Params = &llmprovider.RequestParams{System: &system}
	}

	libResp, err := g.provider.GenerateResponse(ctx, libReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyProviderError(g.Name(), err)
	}

	return &Response{
		Text:         textFromBlocks(libResp.Blocks),
		Provider:     g.Name(),
		Model:        libResp.Model,
		InputTokens:  libResp.InputTokens,
		OutputTokens: libResp.OutputTokens,
	}, nil
}

func toLibraryMessage(role, text string) llmprovider.Message {
	return llmprovider.Message{
		Role: role,
		Blocks: []*llmprovider.Block{
			{
				BlockType:   "text",
				Sequence:    0,
				TextContent: &text,
			},
		},
	}
}

func textFromBlocks(blocks []*llmprovider.Block) string {
	var parts []string
	for _, block := range blocks {
		if block == nil || block.BlockType != "text" || block.TextContent == nil {
			continue
		}
		parts = append(parts, *block.TextContent)
	}
	return strings.Join(parts, "\n")
}

// classifyProviderError maps library errors that look like throttling or an
// outage onto the unavailable kind.
func classifyProviderError(provider string, err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "overloaded", "529", "503", "502", "connection refused", "no such host"} {
		if strings.Contains(msg, marker) {
			return domain.NewGenerationError(domain.GenerationUnavailable, provider, "generation service unavailable", err)
		}
	}
	if errors.Is(err, domain.ErrUnavailable) {
		return domain.NewGenerationError(domain.GenerationUnavailable, provider, "generation service unavailable", err)
	}
	return domain.NewGenerationError(domain.GenerationFailed, provider, "generation failed", err)
}

package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"redspec/internal/domain"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIGenerator calls any OpenAI-compatible chat completions endpoint
type OpenAIGenerator struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIGenerator creates a generator. baseURL may be empty to use the
// public OpenAI API.
func NewOpenAIGenerator(apiKey, baseURL, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIGenerator{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: 4096,
	}, nil
}

// Name returns the provider name
func (g *OpenAIGenerator) Name() string {
	return "openai"
}

// Generate sends the system prompt and transcript as two messages
func (g *OpenAIGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	model := g.model
	if req.Model != "" {
		model = req.Model
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Transcript))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     model,
		Messages:  messages,
		MaxTokens: openai.Int(g.maxTokens),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, domain.NewGenerationError(domain.GenerationFailed, g.Name(), "no choices in response", nil)
	}

	return &Response{
		Text:         resp.Choices[0].Message.Content,
		Provider:     g.Name(),
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if statusUnavailable(apiErr.StatusCode) {
			return domain.NewGenerationError(domain.GenerationUnavailable, "openai",
				fmt.Sprintf("openai returned %d", apiErr.StatusCode), err)
		}
		return domain.NewGenerationError(domain.GenerationFailed, "openai",
			fmt.Sprintf("openai rejected the request (%d)", apiErr.StatusCode), err)
	}
	// No API response at all: network failure
	return domain.NewGenerationError(domain.GenerationUnavailable, "openai", "openai unreachable", err)
}

package generation

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"redspec/internal/domain"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator calls Google Gemini through the genai SDK
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator backed by the Gemini API
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Name returns the provider name
func (g *GeminiGenerator) Name() string {
	return "gemini"
}

// Generate sends the transcript with the system prompt as system instruction
func (g *GeminiGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	model := g.model
	if req.Model != "" {
		model = req.Model
	}

	var config *genai.GenerateContentConfig
	if req.SystemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Transcript), config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyGeminiError(err)
	}

	resp := &Response{
		Text:     result.Text(),
		Provider: g.Name(),
		Model:    model,
	}
	if result.UsageMetadata != nil {
		resp.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}

func classifyGeminiError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return domain.NewGenerationError(domain.GenerationUnavailable, "gemini", "gemini unreachable", err)
	}

	if statusUnavailable(code) {
		return domain.NewGenerationError(domain.GenerationUnavailable, "gemini",
			fmt.Sprintf("gemini returned %d", code), err)
	}
	return domain.NewGenerationError(domain.GenerationFailed, "gemini",
		fmt.Sprintf("gemini rejected the request (%d)", code), err)
}

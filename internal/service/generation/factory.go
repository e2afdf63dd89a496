package generation

import (
	"context"
	"fmt"

	"redspec/internal/config"
)

// NewGenerator returns the generator selected by cfg.Generator, wrapped with
// the configured timeout.
//
// Supported generators:
//   - "lorem" - offline tagged lorem ipsum (no API key required)
//   - "anthropic" - Claude via meridian-llm-go
//   - "openai" - any OpenAI-compatible endpoint (OPENAI_BASE_URL)
//   - "gemini" - Google Gemini via genai
//   - "command" - external process (GENERATOR_COMMAND)
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	g, err := newRawGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return WithTimeout(g, cfg.GenerationTimeout), nil
}

func newRawGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.Generator {
	case "lorem", "":
		return NewLoremGenerator(0), nil
	case "anthropic":
		return NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.GeneratorModel)
	case "openai":
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.GeneratorModel)
	case "gemini":
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeneratorModel)
	case "command":
		return NewCommandGenerator(cfg.GeneratorCommand)
	default:
		return nil, fmt.Errorf("unsupported generator: %s", cfg.Generator)
	}
}

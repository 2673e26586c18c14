package factory

import (
	"context"
	"fmt"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/rag/llm"
	"github.com/akolanti/DocsBot/internal/rag/llm/anthropicLLM"
	"github.com/akolanti/DocsBot/internal/rag/llm/gemini"
	"github.com/akolanti/DocsBot/internal/rag/llm/ollama"
	"github.com/akolanti/DocsBot/internal/rag/llm/openaiLLM"
)

// NewProvider selects the variant once at process start. The choice is static
// for the whole run; nothing re-dispatches per request.
func NewProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	var provider llm.Provider
	var err error

	switch cfg.LLMProvider {
	case "gemini":
		provider, err = gemini.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	case "openai":
		provider = openaiLLM.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "anthropic":
		provider = anthropicLLM.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.LLMModel)
	case "ollama":
		provider = ollama.NewOllamaProvider(cfg.OllamaHost, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, err
	}

	return llm.Guard(provider), nil
}

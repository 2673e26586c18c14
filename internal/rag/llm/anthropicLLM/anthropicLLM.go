package anthropicLLM

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/llm"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const maxAnswerTokens = 1024

type llmClient struct {
	api       anthropic.Client
	modelName string
	logger    *logger_i.Logger
}

func NewAnthropicProvider(apikey string, modelName string) llm.Provider {
	logger := logger_i.NewLogger("llm_anthropic")
	logger.Info("Anthropic client created", "model", modelName)
	return &llmClient{
		api:       anthropic.NewClient(option.WithAPIKey(apikey)),
		modelName: modelName,
		logger:    logger,
	}
}

func (c *llmClient) Name() string {
	return "anthropic"
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
	resp, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: maxAnswerTokens,
		System: []anthropic.TextBlockParam{
			{Text: prompt.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.Render())),
		},
	})
	if err != nil {
		return llm.Completion{}, normalize(err)
	}
	if len(resp.Content) == 0 {
		return llm.Completion{}, fmt.Errorf("anthropic returned empty content")
	}

	return llm.Completion{
		Text:       resp.Content[0].Text,
		TokensUsed: int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		Provider:   c.Name(),
	}, nil
}

func normalize(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ragerrors.Wrap(ragerrors.ErrProviderTimeout, err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return ragerrors.Wrap(ragerrors.ErrProviderAuth, err)
		case 429:
			return ragerrors.Wrap(ragerrors.ErrProviderRateLimited, err)
		case 408, 504, 529:
			return ragerrors.Wrap(ragerrors.ErrProviderTimeout, err)
		}
	}
	return fmt.Errorf("anthropic generate: %w", err)
}

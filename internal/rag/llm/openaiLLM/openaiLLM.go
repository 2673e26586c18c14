package openaiLLM

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/llm"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api       openai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewOpenAIProvider(apikey string, modelName string) llm.Provider {
	logger := logger_i.NewLogger("llm_openai")
	logger.Info("OpenAI client created", "model", modelName)
	return &llmClient{
		api:       openai.NewClient(option.WithAPIKey(apikey)),
		modelName: modelName,
		logger:    logger,
	}
}

func (c *llmClient) Name() string {
	return "openai"
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.Render()),
		},
	})
	if err != nil {
		return llm.Completion{}, normalize(err)
	}
	if len(resp.Choices) == 0 {
		return llm.Completion{}, fmt.Errorf("openai returned no choices")
	}

	return llm.Completion{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: int(resp.Usage.TotalTokens),
		Provider:   c.Name(),
	}, nil
}

func normalize(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ragerrors.Wrap(ragerrors.ErrProviderTimeout, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return ragerrors.Wrap(ragerrors.ErrProviderAuth, err)
		case 429:
			return ragerrors.Wrap(ragerrors.ErrProviderRateLimited, err)
		case 408, 504:
			return ragerrors.Wrap(ragerrors.ErrProviderTimeout, err)
		}
	}
	return fmt.Errorf("openai generate: %w", err)
}

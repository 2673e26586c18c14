package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/llm"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewGeminiProvider(ctx context.Context, apikey string, modelName string) (llm.Provider, error) {
	logger := logger_i.NewLogger("llm_gemini")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return nil, ragerrors.Wrap(ragerrors.ErrProviderAuth, err)
	}

	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Name() string {
	return "gemini"
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: prompt.System},
		},
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(prompt.Render()),
		&genai.GenerateContentConfig{SystemInstruction: systemInstruction},
	)
	if err != nil {
		return llm.Completion{}, normalize(err)
	}

	completion := llm.Completion{Text: result.Text(), Provider: c.Name()}
	if result.UsageMetadata != nil {
		completion.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
	}
	return completion, nil
}

func normalize(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ragerrors.Wrap(ragerrors.ErrProviderTimeout, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return ragerrors.Wrap(ragerrors.ErrProviderAuth, err)
		case 429:
			return ragerrors.Wrap(ragerrors.ErrProviderRateLimited, err)
		case 408, 504:
			return ragerrors.Wrap(ragerrors.ErrProviderTimeout, err)
		}
	}
	return fmt.Errorf("gemini generate: %w", err)
}

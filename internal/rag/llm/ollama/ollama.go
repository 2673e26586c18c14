package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/llm"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

// local inference over the Ollama REST API; connections are pooled because a
// generate call per question reuses the same host
var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

type llmClient struct {
	httpClient *http.Client
	host       string
	modelName  string
	logger     *logger_i.Logger
}

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func NewOllamaProvider(host string, modelName string) llm.Provider {
	logger := logger_i.NewLogger("llm_ollama")
	logger.Info("Ollama client created", "host", host, "model", modelName)
	return &llmClient{
		httpClient: &http.Client{Transport: pooledTransport},
		host:       host,
		modelName:  modelName,
		logger:     logger,
	}
}

func (c *llmClient) Name() string {
	return "ollama"
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.modelName,
		System: prompt.System,
		Prompt: prompt.Render(),
		Stream: false,
	})
	if err != nil {
		return llm.Completion{}, fmt.Errorf("ollama request encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return llm.Completion{}, fmt.Errorf("ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// transport errors and deadline expiry both read as "try again later"
		return llm.Completion{}, ragerrors.Wrap(ragerrors.ErrProviderTimeout, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return llm.Completion{}, ragerrors.Wrap(ragerrors.ErrProviderRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return llm.Completion{}, ragerrors.Wrap(ragerrors.ErrProviderAuth, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return llm.Completion{}, fmt.Errorf("ollama generate: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return llm.Completion{}, fmt.Errorf("ollama response decode: %w", err)
	}

	return llm.Completion{
		Text:       out.Response,
		TokensUsed: out.PromptEvalCount + out.EvalCount,
		Provider:   c.Name(),
	}, nil
}

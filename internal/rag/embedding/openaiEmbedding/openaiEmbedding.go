package openaiEmbedding

import (
	"context"

	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/embedding"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api       openai.Client
	model     string
	dimension int64
	logger    *logger_i.Logger
}

func NewOpenAIEmbedder(apikey string, modelName string, dimension int) embedding.Embedder {
	logger := logger_i.NewLogger("openai_embedding")
	logger.Info("OpenAI Embedding client created", "model", modelName)
	return &client{
		api:       openai.NewClient(option.WithAPIKey(apikey)),
		model:     modelName,
		dimension: int64(dimension),
		logger:    logger,
	}
}

func (c *client) ModelIdentity() string {
	return c.model
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(c.dimension),
	})
	if err != nil {
		c.logger.Error("Error getting Embeddings from OpenAI", "error", err.Error())
		return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		c.logger.Error("Embedding count mismatch", "want", len(texts), "got", len(resp.Data))
		return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, nil)
	}

	// place by the reported index so output order always matches input order
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}

package googleEmbedding

import (
	"context"
	"time"

	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/embedding"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewGoogleEmbedder(ctx context.Context, apikey string, modelName string, dimension int) (embedding.Embedder, error) {
	logger := logger_i.NewLogger("google_embedding")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, err)
	}

	logger.Info("Google Embedding client created", "model", modelName)
	return &client{
		genAi:     c,
		model:     modelName,
		dimension: int32(dimension),
		logger:    logger,
	}, nil
}

func (c *client) ModelIdentity() string {
	return c.model
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text),
		&genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: "RETRIEVAL_QUERY"})
	if err != nil {
		c.logger.Error("Error getting Embedding from Google", "error", err.Error())
		return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, err)
	}
	if len(result.Embeddings) == 0 {
		return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, nil)
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result, err := c.doCall(ctx, getContent(texts))
	if err != nil && doRetry(err, c.logger) {
		time.Sleep(2 * time.Second)
		result, err = c.doCall(ctx, getContent(texts))
	}
	if err != nil {
		c.logger.Error("Error getting batch Embeddings from Google", "error", err.Error())
		return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, err)
	}
	if len(result.Embeddings) != len(texts) {
		c.logger.Error("Batch embedding count mismatch", "want", len(texts), "got", len(result.Embeddings))
		return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, nil)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, r := range result.Embeddings {
		vectors[i] = r.Values
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}

// doRetry limits the single retry to quota and availability errors; anything
// else fails the batch immediately.
func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted || s.Code() == codes.Unavailable {
			log.Error("Rate limit hit! ", "error", err)
			return true
		}
	}
	return false
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	return contents
}

package embedding

import "context"

// Embedder is the capability set the sync engine and the orchestrator share.
// EmbedBatch preserves input order in its output. Backend failures wrap
// ragerrors.ErrEmbeddingUnavailable so callers can decide retry vs. abort.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelIdentity() string
}

package vectorDB

import (
	"context"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
)

// Index is the vector store contract shared by the sync engine (write path)
// and the orchestrator (read path). Implementations are safe for concurrent
// readers during a write; failures wrap ragerrors.ErrIndexUnavailable.
type Index interface {
	// EnsureCollection creates the collection if missing and verifies that an
	// existing one matches the embedder's dimension and the cosine metric.
	// A mismatch is a startup-time configuration error.
	EnsureCollection(ctx context.Context) error

	// UpsertBatch is idempotent by chunk id.
	UpsertBatch(ctx context.Context, records []docmodel.IndexRecord) error

	// DeleteChunks removes the given chunk ids; used for stale-chunk cleanup.
	DeleteChunks(ctx context.Context, chunkIDs []string) error

	// DeleteByDocument removes every record of one document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// ListChunkIDs returns the chunk ids currently indexed for a document,
	// restricted to one model version.
	ListChunkIDs(ctx context.Context, documentID string, modelVersion string) ([]string, error)

	// Query returns at most k hits, strictly descending by score with ties
	// broken ascending by chunk id.
	Query(ctx context.Context, vector []float32, k int, filter docmodel.QueryFilter) (docmodel.RetrievalResult, error)
}

package docsource

import (
	"context"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
)

// Source pulls one document's current text and revision marker. The marker is
// opaque to callers; the sync engine only compares it for equality. Failures
// wrap ragerrors.ErrSourceFetch and are retryable on the next sync tick.
type Source interface {
	Fetch(ctx context.Context, documentID string) (docmodel.Document, error)
}

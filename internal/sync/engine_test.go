package sync_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/chunker"
	docsync "github.com/akolanti/DocsBot/internal/sync"
)

type MockSource struct {
	OnFetch    func(ctx context.Context, documentID string) (docmodel.Document, error)
	FetchCount int32
}

func (m *MockSource) Fetch(ctx context.Context, documentID string) (docmodel.Document, error) {
	atomic.AddInt32(&m.FetchCount, 1)
	if m.OnFetch != nil {
		return m.OnFetch(ctx, documentID)
	}
	return docmodel.Document{ID: documentID, RevisionMarker: "rev-1", Text: "hello world", FetchedAt: time.Now()}, nil
}

type MockEmbedder struct {
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
	BatchCount   int32
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&m.BatchCount, 1)
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

func (m *MockEmbedder) ModelIdentity() string { return "mock-embedder@v1" }

type MockIndex struct {
	OnListChunkIDs func(ctx context.Context, documentID, modelVersion string) ([]string, error)
	OnUpsertBatch  func(ctx context.Context, records []docmodel.IndexRecord) error

	Upserted []docmodel.IndexRecord
	Deleted  []string
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error { return nil }

func (m *MockIndex) UpsertBatch(ctx context.Context, records []docmodel.IndexRecord) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, records)
	}
	m.Upserted = append(m.Upserted, records...)
	return nil
}

func (m *MockIndex) DeleteChunks(ctx context.Context, chunkIDs []string) error {
	m.Deleted = append(m.Deleted, chunkIDs...)
	return nil
}

func (m *MockIndex) DeleteByDocument(ctx context.Context, documentID string) error { return nil }

func (m *MockIndex) ListChunkIDs(ctx context.Context, documentID, modelVersion string) ([]string, error) {
	if m.OnListChunkIDs != nil {
		return m.OnListChunkIDs(ctx, documentID, modelVersion)
	}
	return nil, nil
}

func (m *MockIndex) Query(ctx context.Context, vector []float32, k int, filter docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
	return docmodel.RetrievalResult{}, nil
}

func newTestChunker() *chunker.Chunker {
	return chunker.New(chunker.Config{TargetSize: 50, Overlap: 10, Boundary: chunker.BoundarySentence})
}

func TestEngine_FirstRunIndexesEverything(t *testing.T) {
	source := &MockSource{}
	embedder := &MockEmbedder{}
	index := &MockIndex{}

	engine := docsync.NewEngine(source, newTestChunker(), embedder, index, "doc-1")
	require.NoError(t, engine.RunOnce(context.Background()))

	assert.NotEmpty(t, index.Upserted)
	assert.Empty(t, index.Deleted)
	for _, rec := range index.Upserted {
		assert.Equal(t, "mock-embedder@v1", rec.ModelVersion)
		assert.Equal(t, "doc-1", rec.Chunk.DocumentID)
	}

	state, revision, _ := engine.Status()
	assert.Equal(t, docsync.StateSynced, state)
	assert.Equal(t, "rev-1", revision)
}

func TestEngine_UnchangedRevisionDoesZeroWork(t *testing.T) {
	source := &MockSource{}
	embedder := &MockEmbedder{}
	index := &MockIndex{}

	engine := docsync.NewEngine(source, newTestChunker(), embedder, index, "doc-1")
	require.NoError(t, engine.RunOnce(context.Background()))

	firstBatches := atomic.LoadInt32(&embedder.BatchCount)
	firstUpserts := len(index.Upserted)

	// Second run sees the same revision marker.
	require.NoError(t, engine.RunOnce(context.Background()))

	assert.Equal(t, firstBatches, atomic.LoadInt32(&embedder.BatchCount), "unchanged revision must not embed")
	assert.Equal(t, firstUpserts, len(index.Upserted), "unchanged revision must not write")
	assert.Empty(t, index.Deleted)
}

func TestEngine_ChangedContentReindexesOnlyTheDiff(t *testing.T) {
	text := "First paragraph about setup. Second paragraph about usage. Third paragraph about limits."
	revision := "rev-1"
	source := &MockSource{
		OnFetch: func(ctx context.Context, documentID string) (docmodel.Document, error) {
			return docmodel.Document{ID: documentID, RevisionMarker: revision, Text: text, FetchedAt: time.Now()}, nil
		},
	}
	embedder := &MockEmbedder{}
	index := &MockIndex{}

	engine := docsync.NewEngine(source, newTestChunker(), embedder, index, "doc-1")
	require.NoError(t, engine.RunOnce(context.Background()))

	firstRunIDs := make([]string, 0, len(index.Upserted))
	for _, rec := range index.Upserted {
		firstRunIDs = append(firstRunIDs, rec.Chunk.ID)
	}
	require.NotEmpty(t, firstRunIDs)

	// Appending text changes the tail chunks but leaves the head intact.
	text += " Fourth paragraph about troubleshooting and common errors."
	revision = "rev-2"
	index.OnListChunkIDs = func(ctx context.Context, documentID, modelVersion string) ([]string, error) {
		return firstRunIDs, nil
	}
	index.Upserted = nil

	require.NoError(t, engine.RunOnce(context.Background()))

	require.NotEmpty(t, index.Upserted, "new content must be indexed")
	seen := make(map[string]bool, len(firstRunIDs))
	for _, id := range firstRunIDs {
		seen[id] = true
	}
	for _, rec := range index.Upserted {
		assert.False(t, seen[rec.Chunk.ID], "chunk %s was already indexed and must not be re-embedded", rec.Chunk.ID)
	}
}

func TestEngine_InPlaceEditReindexesTheEditedChunk(t *testing.T) {
	// Same-length replacement keeps every chunk boundary where it was, so
	// only the chunk text itself distinguishes stale from current.
	text := "First paragraph about setup. Second paragraph about usage. Third paragraph about limits."
	revision := "rev-1"
	source := &MockSource{
		OnFetch: func(ctx context.Context, documentID string) (docmodel.Document, error) {
			return docmodel.Document{ID: documentID, RevisionMarker: revision, Text: text, FetchedAt: time.Now()}, nil
		},
	}
	embedder := &MockEmbedder{}
	index := &MockIndex{}

	engine := docsync.NewEngine(source, newTestChunker(), embedder, index, "doc-1")
	require.NoError(t, engine.RunOnce(context.Background()))

	firstRunIDs := make([]string, 0, len(index.Upserted))
	for _, rec := range index.Upserted {
		firstRunIDs = append(firstRunIDs, rec.Chunk.ID)
	}
	require.NotEmpty(t, firstRunIDs)

	text = strings.Replace(text, "usage", "quota", 1)
	revision = "rev-2"
	index.OnListChunkIDs = func(ctx context.Context, documentID, modelVersion string) ([]string, error) {
		return firstRunIDs, nil
	}
	index.Upserted = nil

	require.NoError(t, engine.RunOnce(context.Background()))

	require.NotEmpty(t, index.Upserted, "edited chunk must be re-embedded even though offsets are unchanged")
	found := false
	for _, rec := range index.Upserted {
		if strings.Contains(rec.Chunk.Text, "quota") {
			found = true
		}
	}
	assert.True(t, found, "the re-embedded chunk should carry the edited text")
	assert.NotEmpty(t, index.Deleted, "the stale pre-edit chunk must be removed")
}

func TestEngine_StatusDoesNotBlockDuringRun(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	source := &MockSource{
		OnFetch: func(ctx context.Context, documentID string) (docmodel.Document, error) {
			close(entered)
			<-release
			return docmodel.Document{ID: documentID, RevisionMarker: "rev-1", Text: "hello world", FetchedAt: time.Now()}, nil
		},
	}

	engine := docsync.NewEngine(source, newTestChunker(), &MockEmbedder{}, &MockIndex{}, "doc-1")

	runDone := make(chan error, 1)
	go func() { runDone <- engine.RunOnce(context.Background()) }()
	<-entered

	statusDone := make(chan docsync.State, 1)
	go func() {
		state, _, _ := engine.Status()
		statusDone <- state
	}()

	select {
	case state := <-statusDone:
		assert.Equal(t, docsync.StateFetching, state, "a status read mid-fetch must see the in-flight state")
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Status blocked behind the in-flight sync run")
	}

	close(release)
	require.NoError(t, <-runDone)

	state, revision, _ := engine.Status()
	assert.Equal(t, docsync.StateSynced, state)
	assert.Equal(t, "rev-1", revision)
}

func TestEngine_FetchFailureLeavesIndexUntouched(t *testing.T) {
	source := &MockSource{
		OnFetch: func(ctx context.Context, documentID string) (docmodel.Document, error) {
			return docmodel.Document{}, errors.New("connection refused")
		},
	}
	embedder := &MockEmbedder{}
	index := &MockIndex{}

	engine := docsync.NewEngine(source, newTestChunker(), embedder, index, "doc-1")
	err := engine.RunOnce(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ragerrors.ErrSourceFetch))
	assert.Empty(t, index.Upserted)
	assert.Empty(t, index.Deleted)
	assert.Zero(t, atomic.LoadInt32(&embedder.BatchCount))

	state, _, _ := engine.Status()
	assert.Equal(t, docsync.StateUnknown, state)
}

func TestEngine_EmbeddingFailureSkipsIndexWrites(t *testing.T) {
	source := &MockSource{}
	embedder := &MockEmbedder{
		OnEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, errors.New("quota exceeded"))
		},
	}
	index := &MockIndex{}

	engine := docsync.NewEngine(source, newTestChunker(), embedder, index, "doc-1")
	err := engine.RunOnce(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ragerrors.ErrEmbeddingUnavailable))
	assert.Empty(t, index.Upserted)

	// The failed revision must not be remembered, otherwise the next run
	// would skip the reindex it still owes.
	_, revision, _ := engine.Status()
	assert.Empty(t, revision)
}

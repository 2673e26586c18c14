package rag_test

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/rag/llm"
)

// MockIndex implements vectorDB.Index
type MockIndex struct {
	// Control fields to simulate different behaviors
	OnQuery        func(ctx context.Context, vector []float32, k int, filter docmodel.QueryFilter) (docmodel.RetrievalResult, error)
	OnListChunkIDs func(ctx context.Context, documentID, modelVersion string) ([]string, error)
	OnUpsertBatch  func(ctx context.Context, records []docmodel.IndexRecord) error
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error { return nil }

func (m *MockIndex) UpsertBatch(ctx context.Context, records []docmodel.IndexRecord) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, records)
	}
	return nil
}

func (m *MockIndex) DeleteChunks(ctx context.Context, chunkIDs []string) error { return nil }

func (m *MockIndex) DeleteByDocument(ctx context.Context, documentID string) error { return nil }

func (m *MockIndex) ListChunkIDs(ctx context.Context, documentID, modelVersion string) ([]string, error) {
	if m.OnListChunkIDs != nil {
		return m.OnListChunkIDs(ctx, documentID, modelVersion)
	}
	return nil, nil
}

func (m *MockIndex) Query(ctx context.Context, vector []float32, k int, filter docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, vector, k, filter)
	}
	return docmodel.RetrievalResult{}, nil
}

type MockEmbedder struct {
	OnEmbed      func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	return make([][]float32, len(texts)), nil
}

func (m *MockEmbedder) ModelIdentity() string { return "mock-embedder@v1" }

// MockProvider implements llm.Provider and counts Generate calls so retry
// behavior is observable.
type MockProvider struct {
	OnGenerate    func(ctx context.Context, prompt llm.Prompt) (llm.Completion, error)
	GenerateCalls int32
}

func (m *MockProvider) Generate(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
	atomic.AddInt32(&m.GenerateCalls, 1)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return llm.Completion{Text: "mocked llm response", Provider: m.Name()}, nil
}

func (m *MockProvider) Name() string { return "mock" }

// MockSession implements session.Store
type MockSession struct {
	OnAppendTurn func(ctx context.Context, turn docmodel.Turn) error
	OnRecent     func(ctx context.Context, threadID string, n int) ([]docmodel.Turn, error)
	Appended     []docmodel.Turn
}

func (m *MockSession) AppendTurn(ctx context.Context, turn docmodel.Turn) error {
	if m.OnAppendTurn != nil {
		return m.OnAppendTurn(ctx, turn)
	}
	m.Appended = append(m.Appended, turn)
	return nil
}

func (m *MockSession) Recent(ctx context.Context, threadID string, n int) ([]docmodel.Turn, error) {
	if m.OnRecent != nil {
		return m.OnRecent(ctx, threadID, n)
	}
	return nil, nil
}

package rag_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag"
	"github.com/akolanti/DocsBot/internal/rag/llm"
)

func testPolicy() rag.Policy {
	return rag.Policy{
		DocumentID:    "doc-1",
		TopK:          5,
		MinSimilarity: 0.35,
		SessionWindow: 5,
		RetryBackoff:  10 * time.Millisecond,
	}
}

func hitsAbove(scores ...float32) docmodel.RetrievalResult {
	var result docmodel.RetrievalResult
	for i, score := range scores {
		result.Hits = append(result.Hits, docmodel.ScoredChunk{
			Chunk: docmodel.Chunk{
				DocumentID: "doc-1",
				ID:         docmodel.ChunkID("doc-1", i*100, i*100+100, "chunk text"),
				Ordinal:    i,
				Text:       "chunk text",
			},
			Score: score,
		})
	}
	return result
}

func TestAnswer_Scenarios(t *testing.T) {
	tests := []struct {
		name            string
		setupMocks      func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession)
		expectedOutcome docmodel.Outcome
		expectedAnswer  string
		expectProvider  int32
		expectTurns     int
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession) {
				v.OnQuery = func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
					return hitsAbove(0.9, 0.7), nil
				}
				p.OnGenerate = func(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
					return llm.Completion{Text: "final answer", Provider: "mock"}, nil
				}
			},
			expectedOutcome: docmodel.OutcomeGrounded,
			expectedAnswer:  "final answer",
			expectProvider:  1,
			expectTurns:     1,
		},
		{
			name: "Threshold_Guard_Skips_Provider",
			setupMocks: func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession) {
				v.OnQuery = func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
					return hitsAbove(0.2, 0.1), nil
				}
			},
			expectedOutcome: docmodel.OutcomeInsufficientContext,
			expectProvider:  0,
			expectTurns:     0,
		},
		{
			name: "Empty_Index_Skips_Provider",
			setupMocks: func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession) {
				v.OnQuery = func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
					return docmodel.RetrievalResult{}, nil
				}
			},
			expectedOutcome: docmodel.OutcomeInsufficientContext,
			expectProvider:  0,
			expectTurns:     0,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession) {
				e.OnEmbed = func(ctx context.Context, text string) ([]float32, error) {
					return nil, ragerrors.Wrap(ragerrors.ErrEmbeddingUnavailable, errors.New("api limit"))
				}
			},
			expectedOutcome: docmodel.OutcomeUnavailable,
			expectProvider:  0,
			expectTurns:     0,
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession) {
				v.OnQuery = func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
					return docmodel.RetrievalResult{}, ragerrors.Wrap(ragerrors.ErrIndexUnavailable, errors.New("db timeout"))
				}
			},
			expectedOutcome: docmodel.OutcomeUnavailable,
			expectProvider:  0,
			expectTurns:     0,
		},
		{
			name: "Provider_Timeout_Retries_Once_Then_Unavailable",
			setupMocks: func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession) {
				v.OnQuery = func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
					return hitsAbove(0.8), nil
				}
				p.OnGenerate = func(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
					return llm.Completion{}, ragerrors.Wrap(ragerrors.ErrProviderTimeout, errors.New("deadline"))
				}
			},
			expectedOutcome: docmodel.OutcomeUnavailable,
			expectProvider:  2,
			expectTurns:     0,
		},
		{
			name: "Provider_Auth_Failure_Does_Not_Retry",
			setupMocks: func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession) {
				v.OnQuery = func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
					return hitsAbove(0.8), nil
				}
				p.OnGenerate = func(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
					return llm.Completion{}, ragerrors.Wrap(ragerrors.ErrProviderAuth, errors.New("bad key"))
				}
			},
			expectedOutcome: docmodel.OutcomeUnavailable,
			expectProvider:  1,
			expectTurns:     0,
		},
		{
			name: "Retry_Succeeds_On_Second_Attempt",
			setupMocks: func(e *MockEmbedder, v *MockIndex, p *MockProvider, s *MockSession) {
				v.OnQuery = func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
					return hitsAbove(0.8), nil
				}
				p.OnGenerate = func(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
					if atomic.LoadInt32(&p.GenerateCalls) == 1 {
						return llm.Completion{}, ragerrors.Wrap(ragerrors.ErrProviderRateLimited, errors.New("429"))
					}
					return llm.Completion{Text: "second try answer", Provider: "mock"}, nil
				}
			},
			expectedOutcome: docmodel.OutcomeGrounded,
			expectedAnswer:  "second try answer",
			expectProvider:  2,
			expectTurns:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &MockEmbedder{}
			index := &MockIndex{}
			provider := &MockProvider{}
			sessions := &MockSession{}
			tt.setupMocks(embedder, index, provider, sessions)

			svc := rag.NewService(index, provider, embedder, sessions, testPolicy())
			answer := svc.Answer(context.Background(), "thread-1", "how do I deploy?")

			if answer.Outcome != tt.expectedOutcome {
				t.Errorf("Expected outcome %s, got %s", tt.expectedOutcome, answer.Outcome)
			}
			if tt.expectedAnswer != "" && answer.Text != tt.expectedAnswer {
				t.Errorf("Expected answer %q, got %q", tt.expectedAnswer, answer.Text)
			}
			if got := atomic.LoadInt32(&provider.GenerateCalls); got != tt.expectProvider {
				t.Errorf("Expected %d provider calls, got %d", tt.expectProvider, got)
			}
			if len(sessions.Appended) != tt.expectTurns {
				t.Errorf("Expected %d recorded turns, got %d", tt.expectTurns, len(sessions.Appended))
			}
		})
	}
}

func TestAnswer_CitationsAreSubsetOfPromptChunks(t *testing.T) {
	index := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
			return hitsAbove(0.9, 0.5, 0.1), nil
		},
	}
	var promptedContext []string
	provider := &MockProvider{
		OnGenerate: func(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
			promptedContext = prompt.Context
			return llm.Completion{Text: "grounded answer"}, nil
		},
	}
	sessions := &MockSession{}

	svc := rag.NewService(index, provider, &MockEmbedder{}, sessions, testPolicy())
	answer := svc.Answer(context.Background(), "thread-1", "what are the limits?")

	if answer.Outcome != docmodel.OutcomeGrounded {
		t.Fatalf("Expected grounded outcome, got %s", answer.Outcome)
	}
	// The 0.1 hit sits below the threshold: it must appear in neither the
	// prompt nor the citations.
	if len(promptedContext) != 2 {
		t.Errorf("Expected 2 chunks in prompt, got %d", len(promptedContext))
	}
	if len(answer.Citations) != 2 {
		t.Errorf("Expected 2 citations, got %d", len(answer.Citations))
	}
	for _, c := range answer.Citations {
		if c.Score < 0.35 {
			t.Errorf("Citation %s has score %f below threshold", c.Chunk.ID, c.Score)
		}
	}
}

func TestAnswer_QueryFilterPinsDocumentAndModel(t *testing.T) {
	var gotFilter docmodel.QueryFilter
	index := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
			gotFilter = f
			return hitsAbove(0.8), nil
		},
	}
	svc := rag.NewService(index, &MockProvider{}, &MockEmbedder{}, &MockSession{}, testPolicy())
	svc.Answer(context.Background(), "thread-1", "anything")

	if gotFilter.DocumentID != "doc-1" {
		t.Errorf("Expected document filter doc-1, got %q", gotFilter.DocumentID)
	}
	if gotFilter.ModelVersion != "mock-embedder@v1" {
		t.Errorf("Expected model version filter, got %q", gotFilter.ModelVersion)
	}
}

func TestAnswer_HistoryReachesPrompt(t *testing.T) {
	index := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, k int, f docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
			return hitsAbove(0.8), nil
		},
	}
	sessions := &MockSession{
		OnRecent: func(ctx context.Context, threadID string, n int) ([]docmodel.Turn, error) {
			return []docmodel.Turn{
				{ThreadID: threadID, Question: "earlier question", Answer: "earlier answer"},
			}, nil
		},
	}
	var gotHistory []string
	provider := &MockProvider{
		OnGenerate: func(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
			gotHistory = prompt.History
			return llm.Completion{Text: "ok"}, nil
		},
	}

	svc := rag.NewService(index, provider, &MockEmbedder{}, sessions, testPolicy())
	svc.Answer(context.Background(), "thread-1", "follow-up question")

	if len(gotHistory) != 2 {
		t.Fatalf("Expected question and answer lines in history, got %d lines", len(gotHistory))
	}
	if gotHistory[0] != "User: earlier question" {
		t.Errorf("Unexpected history line: %q", gotHistory[0])
	}
}

func TestCleanQuestion(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"strips user mention", "<@U123ABC> how do I deploy?", "how do I deploy?"},
		{"keeps channel label", "ask in <#C42|help-desk> first", "ask in #help-desk first"},
		{"keeps link label", "see <https://docs.example.com|the docs>", "see the docs"},
		{"keeps bare link", "see <https://docs.example.com>", "see https://docs.example.com"},
		{"collapses whitespace", "  what   is \n this  ", "what is this"},
		{"plain text untouched", "what is the retry policy?", "what is the retry policy?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rag.CleanQuestion(tt.in); got != tt.expected {
				t.Errorf("CleanQuestion(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/embedding"
	"github.com/akolanti/DocsBot/internal/rag/llm"
	"github.com/akolanti/DocsBot/internal/rag/vectorDB"
	"github.com/akolanti/DocsBot/internal/session"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract the chat workers depend on.
  - It defines the "behavior" (answer one question in one thread).

2. service (Private Struct):
  - This is the PRIVATE implementation.
  - It holds the state (vector index, LLM client, session store).
  - It is lowercase so external packages can never reach past the
    interface and grab our internal dependencies directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It lets us swap real backends for mocks during testing without
    touching the worker code.
*/

// Service is the only surface the chat layer calls. The worker does not need
// to know the embedder, the index or the provider.
type Service interface {
	Answer(ctx context.Context, threadID string, question string) docmodel.Answer
}

// Policy carries the retrieval knobs the orchestrator needs per query.
type Policy struct {
	DocumentID    string
	TopK          int
	MinSimilarity float32
	SessionWindow int
	RetryBackoff  time.Duration
}

type service struct {
	index    vectorDB.Index
	provider llm.Provider
	embedder embedding.Embedder
	sessions session.Store
	policy   Policy
	logger   *logger_i.Logger
}

// NewService constructor
func NewService(index vectorDB.Index, provider llm.Provider, em embedding.Embedder, sessions session.Store, policy Policy) Service {
	if policy.TopK <= 0 {
		policy.TopK = config.DefaultRetrievalTopK
	}
	if policy.SessionWindow <= 0 {
		policy.SessionWindow = config.DefaultSessionWindow
	}
	if policy.RetryBackoff <= 0 {
		policy.RetryBackoff = config.ProviderRetryBackoff
	}
	return &service{
		index:    index,
		provider: provider,
		embedder: em,
		sessions: sessions,
		policy:   policy,
		logger:   logger_i.NewLogger("RAG Service :"),
	}
}

// Answer runs the full read path. It never returns an error: every failure
// mode maps to an Answer with a non-grounded outcome, because the chat layer
// always owes the user a reply.
func (s *service) Answer(ctx context.Context, threadID string, question string) docmodel.Answer {
	inMethodLogger := s.logger.With("threadId", threadID)
	if traceID, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		inMethodLogger = inMethodLogger.With("traceId", traceID)
	}

	start := time.Now()
	answer := s.answer(ctx, inMethodLogger, threadID, question)
	observeAnswer(answer.Outcome, time.Since(start))
	return answer
}

func (s *service) answer(ctx context.Context, log *logger_i.Logger, threadID string, question string) docmodel.Answer {
	// Embedding
	queryVector, err := s.executeEmbeddingStep(ctx, log, question)
	if err != nil {
		return s.unavailable(log, err, "EMBEDDING_FAILURE")
	}

	// Vector search
	result, err := s.executeRetrievalStep(ctx, log, queryVector)
	if err != nil {
		return s.unavailable(log, err, "VECTOR_SEARCH_FAILURE")
	}

	// Threshold guard: without a strong enough hit the provider is never
	// called, so the bot cannot improvise an answer from thin air.
	supported := aboveThreshold(result.Hits, s.policy.MinSimilarity)
	if len(supported) == 0 {
		log.Info("No chunk above similarity threshold",
			"hits", len(result.Hits), "threshold", s.policy.MinSimilarity)
		return docmodel.Answer{
			Text:    config.InsufficientContextReply,
			Outcome: docmodel.OutcomeInsufficientContext,
		}
	}

	// History
	history := s.executeHistoryStep(ctx, log, threadID)

	// LLM generation with one retry on transient failures
	prompt := buildPrompt(question, supported, history)
	completion, err := s.executeGenerateStep(ctx, log, prompt)
	if err != nil && ragerrors.Retryable(err) {
		log.Warn("Provider call failed, retrying once", "err", err)
		select {
		case <-time.After(s.policy.RetryBackoff):
		case <-ctx.Done():
			return s.unavailable(log, ctx.Err(), "LLM_GENERATION_TIMEOUT")
		}
		completion, err = s.executeGenerateStep(ctx, log, prompt)
	}
	if err != nil {
		return s.unavailable(log, err, "LLM_GENERATION_FAILURE")
	}

	answer := docmodel.Answer{
		Text:      completion.Text,
		Citations: supported,
		Outcome:   docmodel.OutcomeGrounded,
	}

	// The turn is recorded only after a successful generation so failed
	// attempts never pollute the history window.
	s.recordTurn(ctx, log, threadID, question, answer)

	log.Debug("Question answered",
		"provider", completion.Provider,
		"tokensUsed", completion.TokensUsed,
		"citations", len(answer.Citations))
	return answer
}

func (s *service) recordTurn(ctx context.Context, log *logger_i.Logger, threadID, question string, answer docmodel.Answer) {
	chunkIDs := make([]string, len(answer.Citations))
	for i, hit := range answer.Citations {
		chunkIDs[i] = hit.Chunk.ID
	}
	turn := docmodel.Turn{
		ThreadID:  threadID,
		Question:  question,
		Answer:    answer.Text,
		Timestamp: time.Now(),
		ChunkIDs:  chunkIDs,
	}
	if err := s.sessions.AppendTurn(ctx, turn); err != nil {
		log.Error("Failed to record turn", "err", err)
	}
}

func (s *service) unavailable(log *logger_i.Logger, err error, message string) docmodel.Answer {
	log.Error(message, "error", err)
	return docmodel.Answer{
		Text:    config.UnavailableReply,
		Outcome: docmodel.OutcomeUnavailable,
	}
}

func buildPrompt(question string, supported []docmodel.ScoredChunk, history []docmodel.Turn) llm.Prompt {
	contextBlocks := make([]string, len(supported))
	for i, hit := range supported {
		contextBlocks[i] = fmt.Sprintf("[source %s chunk %d]\n%s",
			hit.Chunk.DocumentID, hit.Chunk.Ordinal, hit.Chunk.Text)
	}
	historyLines := make([]string, 0, len(history)*2)
	for _, turn := range history {
		historyLines = append(historyLines,
			"User: "+turn.Question,
			"Assistant: "+turn.Answer)
	}
	return llm.Prompt{
		System:   config.SystemInstructions,
		Context:  contextBlocks,
		History:  historyLines,
		Question: question,
	}
}

func aboveThreshold(hits []docmodel.ScoredChunk, threshold float32) []docmodel.ScoredChunk {
	supported := make([]docmodel.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Score >= threshold {
			supported = append(supported, hit)
		}
	}
	return supported
}

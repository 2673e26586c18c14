package rag

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/metrics"
	"github.com/akolanti/DocsBot/internal/rag/llm"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

func observeAnswer(outcome docmodel.Outcome, elapsed time.Duration) {
	metrics.CaptureQuestionOutcome(string(outcome))
	metrics.CaptureAnswerMetrics(string(outcome), elapsed)
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, question string) ([]float32, error) {
	log.Debug("Answer", "step", "embedding")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.Embed(ctx, question)
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, queryVector []float32) (docmodel.RetrievalResult, error) {
	log.Debug("Answer", "step", "vector_search")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	filter := docmodel.QueryFilter{
		DocumentID:   s.policy.DocumentID,
		ModelVersion: s.embedder.ModelIdentity(),
	}
	return s.index.Query(ctx, queryVector, s.policy.TopK, filter)
}

// executeHistoryStep is best effort: a session store failure degrades the
// answer to history-free, it never blocks it.
func (s *service) executeHistoryStep(ctx context.Context, log *logger_i.Logger, threadID string) []docmodel.Turn {
	log.Debug("Answer", "step", "session_history")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("session_lookup", time.Since(start)) }()

	history, err := s.sessions.Recent(ctx, threadID, s.policy.SessionWindow)
	if err != nil {
		log.Error("Failed to load thread history", "err", err)
		return nil
	}
	return history
}

func (s *service) executeGenerateStep(ctx context.Context, log *logger_i.Logger, prompt llm.Prompt) (llm.Completion, error) {
	log.Debug("Answer", "step", "llm_generation")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.provider.Generate(ctx, prompt)
}

// CleanQuestion strips chat-platform markup from the raw message text so
// mentions and channel links never reach the embedder.
func CleanQuestion(raw string) string {
	text := raw
	for {
		open := strings.Index(text, "<")
		if open < 0 {
			break
		}
		end := strings.Index(text[open:], ">")
		if end < 0 {
			break
		}
		token := text[open : open+end+1]
		text = text[:open] + replacementFor(token) + text[open+end+1:]
	}
	return strings.Join(strings.Fields(text), " ")
}

// replacementFor maps one <...> token to plain text: user and channel
// mentions vanish, links keep their label or URL.
func replacementFor(token string) string {
	inner := token[1 : len(token)-1]
	switch {
	case strings.HasPrefix(inner, "@") || strings.HasPrefix(inner, "!"):
		return ""
	case strings.HasPrefix(inner, "#"):
		if i := strings.Index(inner, "|"); i >= 0 {
			return "#" + inner[i+1:]
		}
		return ""
	default:
		if i := strings.Index(inner, "|"); i >= 0 {
			return inner[i+1:]
		}
		return inner
	}
}

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/chatmodel"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
)

func executeQuestion(question chatmodel.Question) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, question.TraceID)
	ctx, cancel := context.WithTimeout(ctxTrace, config.AnswerTimeout)
	defer cancel()

	inWorkerLogger := logger.With("traceId", question.TraceID, "threadId", question.ThreadID)
	inWorkerLogger.Debug("Processing question")

	answer := _answerer.Answer(ctx, question.ThreadID, question.Text)

	if question.Reply != nil {
		select {
		case question.Reply <- answer:
		default:
			inWorkerLogger.Warn("Caller gone before answer was ready")
		}
	}

	if err := _chatService.Notifier.Send(ctx, question.ThreadID, FormatAnswer(answer)); err != nil {
		inWorkerLogger.Error("Failed to deliver answer", "err", err)
	}
}

// FormatAnswer renders the answer the way chat platforms expect: the text
// followed by a sources block listing the cited chunks.
func FormatAnswer(answer docmodel.Answer) string {
	if answer.Outcome != docmodel.OutcomeGrounded || len(answer.Citations) == 0 {
		return answer.Text
	}

	var b strings.Builder
	b.WriteString(answer.Text)
	b.WriteString("\n\n*Sources:*\n")
	for _, c := range answer.Citations {
		fmt.Fprintf(&b, "• %s (section %d)\n", c.Chunk.DocumentID, c.Chunk.Ordinal+1)
	}
	return strings.TrimRight(b.String(), "\n")
}

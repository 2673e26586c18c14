package llm

import (
	"context"
	"fmt"
	"strings"
)

// Prompt carries everything a variant needs to build its provider-specific
// request: system instructions, retrieved context with provenance, the bounded
// recent-turn window and the user's question.
type Prompt struct {
	System   string
	Context  []string
	History  []string
	Question string
}

// Render flattens context, history and question into the user-facing prompt
// text. Variants that separate system instructions natively pass only this.
func (p Prompt) Render() string {
	var b strings.Builder

	if len(p.Context) > 0 {
		b.WriteString("Context from documentation:\n")
		b.WriteString(strings.Join(p.Context, "\n\n"))
		b.WriteString("\n\n")
	}
	if len(p.History) > 0 {
		b.WriteString("Recent conversation:\n")
		b.WriteString(strings.Join(p.History, "\n"))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "User question: %s", p.Question)
	return b.String()
}

type Completion struct {
	Text       string
	TokensUsed int
	Provider   string
}

// Provider is the single capability the orchestrator depends on. The variant
// is selected once at startup; no provider detail leaks past this interface.
type Provider interface {
	Generate(ctx context.Context, prompt Prompt) (Completion, error)
	Name() string
}

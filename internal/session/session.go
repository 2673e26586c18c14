package session

import (
	"context"
	"sync"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

// Store keeps the bounded per-thread turn window. Append evicts the oldest
// turn beyond the window; Recent never returns turns from another thread.
type Store interface {
	AppendTurn(ctx context.Context, turn docmodel.Turn) error
	Recent(ctx context.Context, threadID string, n int) ([]docmodel.Turn, error)
}

// InMemoryStore is the fallback when Redis is offline. Turns then live only
// for the process lifetime.
type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[string][]docmodel.Turn
	window  int
	logger  *logger_i.Logger
}

func InitInMemoryStore(window int) *InMemoryStore {
	if window <= 0 {
		window = 5
	}
	return &InMemoryStore{
		threads: make(map[string][]docmodel.Turn),
		window:  window,
		logger:  logger_i.NewLogger("InMemorySessionStore"),
	}
}

func (s *InMemoryStore) AppendTurn(ctx context.Context, turn docmodel.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.threads[turn.ThreadID], turn)
	if len(turns) > s.window {
		turns = turns[len(turns)-s.window:]
	}
	s.threads[turn.ThreadID] = turns
	return nil
}

func (s *InMemoryStore) Recent(ctx context.Context, threadID string, n int) ([]docmodel.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.threads[threadID]
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]docmodel.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

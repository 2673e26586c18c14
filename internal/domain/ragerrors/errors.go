package ragerrors

import (
	"errors"
	"fmt"
)

// Shared failure taxonomy. Variants wrap provider- or transport-specific
// errors into these sentinels; callers branch with errors.Is and never on
// provider SDK types.
var (
	ErrSourceFetch          = errors.New("document source fetch failed")
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")
	ErrIndexUnavailable     = errors.New("vector index unavailable")
	ErrProviderAuth         = errors.New("llm provider authentication failed")
	ErrProviderRateLimited  = errors.New("llm provider rate limited")
	ErrProviderTimeout      = errors.New("llm provider timed out")
)

func Wrap(sentinel error, err error) error {
	if err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Retryable reports whether the answering path may retry once with backoff.
// Auth failures stay fatal until the process is reconfigured.
func Retryable(err error) bool {
	return errors.Is(err, ErrProviderRateLimited) ||
		errors.Is(err, ErrProviderTimeout) ||
		errors.Is(err, ErrEmbeddingUnavailable) ||
		errors.Is(err, ErrIndexUnavailable) ||
		errors.Is(err, ErrSourceFetch)
}

package llm

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// guardedProvider wraps a variant with a token-bucket rate limiter (respects
// provider quotas before a 429 ever happens) and a circuit breaker (stops
// hammering a provider that is already failing).
type guardedProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *logger_i.Logger
}

func Guard(inner Provider) Provider {
	logger := logger_i.NewLogger("llm_guard")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// auth failures are configuration problems, not provider health
			return err == nil || errors.Is(err, ragerrors.ErrProviderAuth)
		},
	})

	return &guardedProvider{
		inner:   inner,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(config.ProviderRequestsPerSecond), config.ProviderBurst),
		logger:  logger,
	}
}

func (g *guardedProvider) Name() string {
	return g.inner.Name()
}

func (g *guardedProvider) Generate(ctx context.Context, prompt Prompt) (Completion, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Completion{}, ragerrors.Wrap(ragerrors.ErrProviderTimeout, err)
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Generate(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Completion{}, ragerrors.Wrap(ragerrors.ErrProviderRateLimited, err)
		}
		return Completion{}, err
	}
	return result.(Completion), nil
}

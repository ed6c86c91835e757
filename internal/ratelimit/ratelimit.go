package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/amishk599/uxcelerator/internal/ai"
)

// Ensure RateLimitedProvider implements ai.LLMProvider.
var _ ai.LLMProvider = (*RateLimitedProvider)(nil)

// NewLimiter returns a token-bucket limiter allowing rps calls per second with
// the given burst. A non-positive rps returns nil, meaning "no limit".
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// RateLimitedProvider is a decorator that waits for the shared limiter before
// delegating to the wrapped provider.
type RateLimitedProvider struct {
	inner   ai.LLMProvider
	limiter *rate.Limiter
	name    string // provider name, for error messages
}

// NewRateLimitedProvider wraps inner with limiter. All providers calling the
// same upstream account should share one limiter instance.
func NewRateLimitedProvider(inner ai.LLMProvider, limiter *rate.Limiter, name string) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: limiter,
		name:    name,
	}
}

// Wrap returns inner unchanged when limiter is nil, otherwise a RateLimitedProvider.
func Wrap(inner ai.LLMProvider, limiter *rate.Limiter, name string) ai.LLMProvider {
	if limiter == nil {
		return inner
	}
	return NewRateLimitedProvider(inner, limiter, name)
}

// Complete blocks until the limiter grants a token, then calls the wrapped provider.
// Returns an error if the context is cancelled while waiting.
func (p *RateLimitedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait for %s: %w", p.name, err)
	}
	return p.inner.Complete(ctx, prompt)
}

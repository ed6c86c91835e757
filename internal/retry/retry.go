package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/uxcelerator/internal/model"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay before the second attempt; zero retries immediately
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// CancelledError is returned when ctx ends the loop before it ran out of
// attempts. Attempts counts the calls to fn that actually happened.
type CancelledError struct {
	Attempts int
	Err      error // ctx.Err()
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("retry cancelled after %d attempts: %v", e.Attempts, e.Err)
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}

// Do runs fn up to p.MaxAttempts times, sequentially, until it returns nil.
// Each attempt starts from scratch; nothing from a failed attempt is kept.
// Every failure is logged with its attempt number.
func Do(ctx context.Context, p Policy, logger *slog.Logger, fn func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if delay := backoffDelay(p.BaseDelay, attempt-1, lastErr); delay > 0 {
				select {
				case <-ctx.Done():
					return &CancelledError{Attempts: attempt - 1, Err: ctx.Err()}
				case <-time.After(delay):
				}
			}
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		logger.Warn("attempt failed",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)

		if ctx.Err() != nil {
			return &CancelledError{Attempts: attempt, Err: ctx.Err()}
		}
	}

	return &ExhaustedError{Attempts: maxAttempts, Last: lastErr}
}

// backoffDelay computes the delay before retry n (1-based) with ±30% jitter.
// A Retry-After hint from an HTTP 429 takes precedence when a base delay is set.
func backoffDelay(base time.Duration, n int, err error) time.Duration {
	if base <= 0 {
		return 0
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: base * 2^(n-1)
	delay := base
	for i := 1; i < n; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

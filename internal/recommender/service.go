package recommender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/uxcelerator/internal/model"
	"github.com/amishk599/uxcelerator/internal/requestid"
	"github.com/amishk599/uxcelerator/internal/retry"
)

// DefaultMaxAttempts is how many full fan-outs a request gets before giving up.
const DefaultMaxAttempts = 5

// Ensure Service implements model.Recommender.
var _ model.Recommender = (*Service)(nil)

// Service owns the full recommendation pipeline for one request:
// fan out → parse each response → flatten, retried from scratch on any failure.
type Service struct {
	requester *Requester
	policy    retry.Policy
	notifier  model.Notifier
	logger    *slog.Logger
}

// NewService wires the pipeline. notifier receives a notice when every
// attempt for a request fails.
func NewService(requester *Requester, policy retry.Policy, notifier model.Notifier, logger *slog.Logger) *Service {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	return &Service{
		requester: requester,
		policy:    policy,
		notifier:  notifier,
		logger:    logger,
	}
}

// Recommend returns the flattened suggestions for html, in task order.
// The only error is model.ErrEmptyContent. When every attempt fails the
// result is an empty list: callers cannot tell "nothing to suggest" from
// "the model never produced usable output".
func (s *Service) Recommend(ctx context.Context, html, goal string) ([]model.Suggestion, error) {
	if html == "" {
		return nil, model.ErrEmptyContent
	}

	rid := requestid.FromContext(ctx)
	logger := s.logger.With("request_id", rid)

	var result []model.Suggestion
	err := retry.Do(ctx, s.policy, logger, func(ctx context.Context, attempt int) error {
		suggestions, err := s.attempt(ctx, html, goal)
		if err != nil {
			return err
		}
		result = suggestions
		logger.Info("generation succeeded", "attempt", attempt, "suggestions", len(suggestions))
		return nil
	})
	if err == nil {
		return result, nil
	}

	attempts := s.policy.MaxAttempts
	var (
		exhausted *retry.ExhaustedError
		cancelled *retry.CancelledError
	)
	switch {
	case errors.As(err, &cancelled):
		attempts = cancelled.Attempts
		logger.Warn("request cancelled, giving up", "attempts", attempts, "error", err)
	case errors.As(err, &exhausted):
		attempts = exhausted.Attempts
		logger.Error("reached maximum number of attempts, giving up", "attempts", attempts, "error", err)
	default:
		logger.Error("giving up", "attempts", attempts, "error", err)
	}

	notice := model.FailureNotice{RequestID: rid, Attempts: attempts, Goal: goal, Err: err}
	// The inbound context may already be cancelled; the notice should still go out.
	if nerr := s.notifier.NotifyFailure(context.WithoutCancel(ctx), notice); nerr != nil {
		logger.Error("failure notification failed", "error", nerr)
	}

	return []model.Suggestion{}, nil
}

// attempt runs one full fan-out and parses every response. Any failure
// discards the partial results of this attempt.
func (s *Service) attempt(ctx context.Context, html, goal string) ([]model.Suggestion, error) {
	raw, err := s.requester.GetRecommendations(ctx, html, goal)
	if err != nil {
		return nil, fmt.Errorf("get recommendations: %w", err)
	}

	flat := []model.Suggestion{}
	for i, r := range raw {
		suggestions, err := Parse(r)
		if err != nil {
			return nil, fmt.Errorf("parse response %d: %w", i, err)
		}
		flat = append(flat, suggestions...)
	}
	return flat, nil
}

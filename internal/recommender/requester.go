package recommender

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/uxcelerator/internal/ai"
	"github.com/amishk599/uxcelerator/internal/model"
)

// Requester renders one prompt per task and sends them to the LLM concurrently.
type Requester struct {
	provider    ai.LLMProvider
	tmpl        *ai.PromptTemplate
	tasks       []string
	defaultGoal string
	logger      *slog.Logger
}

// NewRequester creates a requester for the given tasks. defaultGoal is used
// when a request does not carry a goal of its own.
func NewRequester(provider ai.LLMProvider, tmpl *ai.PromptTemplate, tasks []string, defaultGoal string, logger *slog.Logger) *Requester {
	return &Requester{
		provider:    provider,
		tmpl:        tmpl,
		tasks:       tasks,
		defaultGoal: defaultGoal,
		logger:      logger,
	}
}

// GetRecommendations returns one raw model response per task, in task order.
// All calls run concurrently; the first provider error fails the whole batch
// and cancels the calls still in flight. Nothing is retried here.
func (r *Requester) GetRecommendations(ctx context.Context, html, goal string) ([]string, error) {
	if html == "" {
		return nil, model.ErrEmptyContent
	}
	if goal == "" {
		goal = r.defaultGoal
	}

	prompts := make([]string, len(r.tasks))
	for i, task := range r.tasks {
		prompt, err := r.tmpl.Render(map[string]string{
			ai.SlotWebpageContent: html,
			ai.SlotTask:           task,
			ai.SlotGoal:           goal,
		})
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		prompts[i] = prompt
	}

	r.logger.Info("calling llm", "tasks", len(prompts), "html_bytes", len(html))

	responses := make([]string, len(prompts))
	g, gctx := errgroup.WithContext(ctx)
	for i, prompt := range prompts {
		g.Go(func() error {
			resp, err := r.provider.Complete(gctx, prompt)
			if err != nil {
				return fmt.Errorf("task %d: %w", i, err)
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("llm responses received", "responses", responses)
	return responses, nil
}

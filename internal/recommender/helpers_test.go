package recommender

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/amishk599/uxcelerator/internal/ai"
	"github.com/amishk599/uxcelerator/internal/model"
)

// scriptedProvider answers each prompt through fn and records every prompt it saw.
type scriptedProvider struct {
	mu      sync.Mutex
	prompts []string
	fn      func(ctx context.Context, call int, prompt string) (string, error)
}

func (p *scriptedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	call := len(p.prompts)
	p.mu.Unlock()
	return p.fn(ctx, call, prompt)
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

// byTask returns the canned response for whichever task the prompt asks about.
func byTask(responses ...string) func(context.Context, int, string) (string, error) {
	return func(_ context.Context, _ int, prompt string) (string, error) {
		for i, task := range ai.Tasks {
			if strings.Contains(prompt, task) {
				return responses[i], nil
			}
		}
		return "", nil
	}
}

// recordingNotifier records every failure notice.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []model.FailureNotice
}

func (n *recordingNotifier) NotifyFailure(_ context.Context, notice model.FailureNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRequester(p ai.LLMProvider) *Requester {
	return NewRequester(p, ai.RecommendationTemplate, ai.Tasks, ai.DefaultGoal, discardLogger())
}

package recommender

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/uxcelerator/internal/ai"
	"github.com/amishk599/uxcelerator/internal/model"
)

func TestGetRecommendations_OneCallPerTaskInTaskOrder(t *testing.T) {
	provider := &scriptedProvider{fn: func(ctx context.Context, _ int, prompt string) (string, error) {
		// The first task answers last; order must still follow the task list.
		if strings.Contains(prompt, ai.Tasks[0]) {
			time.Sleep(30 * time.Millisecond)
			return "first", nil
		}
		return "second", nil
	}}

	got, err := newTestRequester(provider).GetRecommendations(context.Background(), "<div>Pay your taxes</div>", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("got %v, want [first second]", got)
	}
	if provider.calls() != len(ai.Tasks) {
		t.Errorf("calls = %d, want %d", provider.calls(), len(ai.Tasks))
	}
}

func TestGetRecommendations_RunsConcurrently(t *testing.T) {
	started := make(chan struct{}, len(ai.Tasks))
	release := make(chan struct{})
	provider := &scriptedProvider{fn: func(ctx context.Context, _ int, _ string) (string, error) {
		started <- struct{}{}
		select {
		case <-release:
			return "[]", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}

	done := make(chan error, 1)
	go func() {
		_, err := newTestRequester(provider).GetRecommendations(context.Background(), "<p/>", "")
		done <- err
	}()

	// Both calls must be in flight at the same time before either returns.
	for range ai.Tasks {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("calls were not issued concurrently")
		}
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetRecommendations_DefaultGoalAndVerbatimMarkup(t *testing.T) {
	provider := &scriptedProvider{fn: byTask("[]", "[]")}
	html := `<button style="color:#fff">Go & pay</button>`

	if _, err := newTestRequester(provider).GetRecommendations(context.Background(), html, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range provider.prompts {
		if !strings.Contains(p, ai.DefaultGoal) {
			t.Error("expected default goal in prompt")
		}
		if !strings.Contains(p, html) {
			t.Error("expected markup substituted verbatim")
		}
	}
}

func TestGetRecommendations_UsesGivenGoal(t *testing.T) {
	provider := &scriptedProvider{fn: byTask("[]", "[]")}

	if _, err := newTestRequester(provider).GetRecommendations(context.Background(), "<p/>", "book a table"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range provider.prompts {
		if !strings.Contains(p, "The goal of visitors to this website is: book a table") {
			t.Errorf("prompt missing goal: %q", p)
		}
	}
}

func TestGetRecommendations_EmptyHTML(t *testing.T) {
	provider := &scriptedProvider{fn: byTask("[]", "[]")}

	_, err := newTestRequester(provider).GetRecommendations(context.Background(), "", "")
	if !errors.Is(err, model.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if provider.calls() != 0 {
		t.Errorf("calls = %d, want 0", provider.calls())
	}
}

func TestGetRecommendations_ProviderErrorPropagates(t *testing.T) {
	rateLimited := &model.HTTPError{StatusCode: 429}
	provider := &scriptedProvider{fn: func(ctx context.Context, _ int, prompt string) (string, error) {
		if strings.Contains(prompt, ai.Tasks[1]) {
			return "", rateLimited
		}
		<-ctx.Done() // sibling is cancelled once the other task fails
		return "", ctx.Err()
	}}

	got, err := newTestRequester(provider).GetRecommendations(context.Background(), "<p/>", "")
	if got != nil {
		t.Errorf("got %v, want nil on failure", got)
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 429 {
		t.Fatalf("expected HTTPError 429, got %v", err)
	}
}

func TestGetRecommendations_MissingParameterFailsBeforeCalls(t *testing.T) {
	provider := &scriptedProvider{fn: byTask("[]", "[]")}
	tmpl := ai.MustPromptTemplate("needs-extra", "{{.webpage_content}} {{.task}} {{.audience}}")
	r := NewRequester(provider, tmpl, ai.Tasks, ai.DefaultGoal, discardLogger())

	_, err := r.GetRecommendations(context.Background(), "<p/>", "")
	var missing *model.MissingParameterError
	if !errors.As(err, &missing) || missing.Param != "audience" {
		t.Fatalf("expected MissingParameterError for audience, got %v", err)
	}
	if provider.calls() != 0 {
		t.Errorf("calls = %d, want 0", provider.calls())
	}
}

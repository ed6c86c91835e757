package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/uxcelerator/internal/ai"
	"github.com/amishk599/uxcelerator/internal/model"
	"github.com/amishk599/uxcelerator/internal/notifier"
	"github.com/amishk599/uxcelerator/internal/recommender"
	"github.com/amishk599/uxcelerator/internal/requestid"
	"github.com/amishk599/uxcelerator/internal/retry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRecommender returns canned results and records its inputs.
type stubRecommender struct {
	suggestions []model.Suggestion
	err         error
	calls       int
	html, goal  string
	requestID   string
}

func (s *stubRecommender) Recommend(ctx context.Context, html, goal string) ([]model.Suggestion, error) {
	s.calls++
	s.html, s.goal = html, goal
	s.requestID = requestid.FromContext(ctx)
	return s.suggestions, s.err
}

// countingProvider answers every prompt through fn and counts calls.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	fn    func(prompt string) (string, error)
}

func (p *countingProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.fn(prompt)
}

func newRouter(rec model.Recommender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return BuildRouter(RouterDeps{
		ServiceName: "uxcelerator",
		Version:     "test",
		Provider:    "anthropic",
		CORSOrigins: []string{"*"},
		Recommender: rec,
		Logger:      discardLogger(),
	})
}

func postRecommend(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/recommend", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRecommend_Success(t *testing.T) {
	rec := &stubRecommender{suggestions: []model.Suggestion{
		{Title: "Add a CTA", Description: "Tell visitors what to do", Details: "Primary button"},
		{Title: "Increase contrast", Description: "Body text is too light"},
	}}
	r := newRouter(rec)

	rr := postRecommend(t, r, `{"htmlContent":"<div>Pay your taxes</div>","goal":"pay taxes"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "<div>Pay your taxes</div>", rec.html)
	assert.Equal(t, "pay taxes", rec.goal)

	var got []map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Add a CTA", got[0]["title"])
	assert.Equal(t, "Primary button", got[0]["details"])
	_, hasDetails := got[1]["details"]
	assert.False(t, hasDetails, "empty details should be omitted")
}

func TestRecommend_MissingHTMLIsBadRequest(t *testing.T) {
	bodies := map[string]string{
		"empty string":  `{"htmlContent":""}`,
		"missing field": `{"goal":"x"}`,
		"not json":      `<html></html>`,
		"empty body":    ``,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := &stubRecommender{}
			rr := postRecommend(t, newRouter(rec), body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"error":"No HTML content provided"}`, rr.Body.String())
			assert.Equal(t, 0, rec.calls)
		})
	}
}

func TestRecommend_NilResultIsEmptyArray(t *testing.T) {
	rr := postRecommend(t, newRouter(&stubRecommender{}), `{"htmlContent":"<p/>"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestRecommend_UnexpectedErrorStillReturns200(t *testing.T) {
	rec := &stubRecommender{err: errors.New("boom")}
	rr := postRecommend(t, newRouter(rec), `{"htmlContent":"<p/>"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestRequestID_GeneratedAndPropagated(t *testing.T) {
	rec := &stubRecommender{}
	r := newRouter(rec)

	rr := postRecommend(t, r, `{"htmlContent":"<p/>"}`)
	rid := rr.Header().Get(requestid.Header)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, rec.requestID)

	req, _ := http.NewRequest(http.MethodPost, "/recommend", bytes.NewBufferString(`{"htmlContent":"<p/>"}`))
	req.Header.Set(requestid.Header, "client-chosen")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "client-chosen", rr.Header().Get(requestid.Header))
	assert.Equal(t, "client-chosen", rec.requestID)
}

func TestCORS_PreflightAllowed(t *testing.T) {
	r := newRouter(&stubRecommender{})

	req, _ := http.NewRequest(http.MethodOptions, "/recommend", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthCheck(t *testing.T) {
	r := newRouter(&stubRecommender{})

	for _, path := range []string{"/health", "/healthz"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "uxcelerator", resp.Service)
		assert.Equal(t, "anthropic", resp.Provider)
	}
}

// The tests below drive the real pipeline with a stubbed provider.

func newPipelineRouter(p ai.LLMProvider, logger *slog.Logger) *gin.Engine {
	requester := recommender.NewRequester(p, ai.RecommendationTemplate, ai.Tasks, ai.DefaultGoal, logger)
	svc := recommender.NewService(requester, retry.Policy{MaxAttempts: 5}, notifier.NewLogNotifier(logger), logger)
	return newRouter(svc)
}

func TestPipeline_ExampleRequest(t *testing.T) {
	provider := &countingProvider{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, ai.Tasks[0]) {
			return `[{"title":"Add a CTA","description":"Tell visitors how to pay"}]`, nil
		}
		return `[{"title":"Increase contrast","description":"Make the text readable"}]`, nil
	}}
	r := newPipelineRouter(provider, discardLogger())

	rr := postRecommend(t, r, `{"htmlContent":"<div>Pay your taxes</div>"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []model.Suggestion
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Add a CTA", got[0].Title)
	assert.Equal(t, "Increase contrast", got[1].Title)
	assert.Equal(t, 2, provider.calls)
}

func TestPipeline_EmptyHTMLMakesNoModelCalls(t *testing.T) {
	provider := &countingProvider{fn: func(string) (string, error) { return "[]", nil }}
	rr := postRecommend(t, newPipelineRouter(provider, discardLogger()), `{"htmlContent":""}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, provider.calls)
}

func TestPipeline_AllAttemptsMalformed(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	provider := &countingProvider{fn: func(string) (string, error) { return "I'm not sure.", nil }}

	rr := postRecommend(t, newPipelineRouter(provider, logger), `{"htmlContent":"<p/>"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
	assert.Equal(t, 10, provider.calls)
	assert.Equal(t, 5, strings.Count(buf.String(), "attempt failed"))
}

package model

import (
	"bytes"
	"context"
	"encoding/json"
)

// Suggestion is a single UX-improvement record returned by the model.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"` // implementation guidance
}

// UnmarshalJSON accepts details given as an object or list as well as text.
// Non-string details are kept as compact JSON text.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Details     json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Title, s.Description, s.Details = raw.Title, raw.Description, ""
	switch d := bytes.TrimSpace(raw.Details); {
	case len(d) == 0, bytes.Equal(d, []byte("null")):
	case d[0] == '"':
		if err := json.Unmarshal(d, &s.Details); err != nil {
			return err
		}
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, d); err != nil {
			return err
		}
		s.Details = buf.String()
	}
	return nil
}

// FailureNotice describes a request that ended without usable suggestions,
// either because every attempt failed or because the request was cancelled.
type FailureNotice struct {
	RequestID string
	Attempts  int // attempts actually made
	Goal      string
	Err       error
}

// Recommender turns webpage markup into a flat list of suggestions.
type Recommender interface {
	Recommend(ctx context.Context, html, goal string) ([]Suggestion, error)
}

// Notifier reports requests that ended without suggestions.
type Notifier interface {
	NotifyFailure(ctx context.Context, notice FailureNotice) error
}

package recommender

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/amishk599/uxcelerator/internal/model"
)

// Parse extracts the suggestion list from a raw model response. Any preamble
// before the first '[' is skipped; everything from there on must be a single
// JSON array whose elements all carry a title and a description.
func Parse(raw string) ([]model.Suggestion, error) {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return nil, &model.MalformedResponseError{Reason: "no JSON array found"}
	}

	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	var suggestions []model.Suggestion
	if err := dec.Decode(&suggestions); err != nil {
		return nil, &model.MalformedResponseError{Reason: "invalid JSON array", Err: err}
	}
	// The array must be the end of the response.
	if _, err := dec.Token(); err != io.EOF {
		return nil, &model.MalformedResponseError{Reason: "unexpected content after JSON array"}
	}

	for i, s := range suggestions {
		if strings.TrimSpace(s.Title) == "" {
			return nil, &model.MalformedResponseError{Reason: fmt.Sprintf("suggestion %d has no title", i)}
		}
		if strings.TrimSpace(s.Description) == "" {
			return nil, &model.MalformedResponseError{Reason: fmt.Sprintf("suggestion %d has no description", i)}
		}
	}

	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	return suggestions, nil
}

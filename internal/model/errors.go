package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyContent is returned when a request carries no webpage markup.
// It is a validation error and is never retried.
var ErrEmptyContent = errors.New("no HTML content provided")

// HTTPError wraps a non-2xx status from the LLM provider so callers can
// inspect the status code and any Retry-After hint.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports model output that does not hold a usable
// JSON array of suggestions.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// MissingParameterError is returned when a prompt is rendered without one of
// its required slots.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing prompt parameter %q", e.Param)
}

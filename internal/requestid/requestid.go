// Package requestid carries a per-request identifier through context.Context
// so that log lines and failure notices from one HTTP request can be tied together.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to read and echo request IDs.
const Header = "X-Request-Id"

type ctxKey struct{}

// New returns a fresh random request ID.
func New() string {
	return uuid.NewString()
}

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored in ctx, or "" if none.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyHTMX    ctxKey = "htmx"
	ctxKeySession ctxKey = "session"
)

// WithHTMX stores the parsed htmx request headers.
func WithHTMX(ctx context.Context, h HTMXRequest) context.Context {
	return context.WithValue(ctx, ctxKeyHTMX, h)
}

// HTMXFromContext returns the htmx headers of the request, zero when absent.
func HTMXFromContext(ctx context.Context) HTMXRequest {
	v, _ := ctx.Value(ctxKeyHTMX).(HTMXRequest)
	return v
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	return HTMXFromContext(ctx).Request
}

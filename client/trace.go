package client

import (
	"context"

	"github.com/google/uuid"
)

// WithTraceID stashes a freshly generated trace id on ctx, so that every
// log line emitted while serving one request/reply exchange can be
// correlated via RequestIDField.
func WithTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, traceIDKey, uuid.NewString())
}

// TraceID returns the trace id stashed on ctx, or "" if none is set.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

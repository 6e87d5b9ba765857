package logging

import (
	"context"
	"crypto/rand"
	"os"

	"github.com/oklog/ulid/v2"
)

// EnvTraceID lets callers pin the trace ID of an invocation.
const EnvTraceID = "BUDGETTREE_TRACE_ID"

type traceIDKey struct{}

// ContextWithTraceID stores traceID in ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace ID stored in ctx or "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// GetOrGenerateTraceID returns the trace ID from ctx, then from the
// environment, and otherwise a fresh ULID.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	if id := os.Getenv(EnvTraceID); id != "" {
		return id
	}
	return NewTraceID()
}

// NewTraceID returns a new lexicographically sortable trace ID.
func NewTraceID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

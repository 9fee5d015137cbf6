// Package trace carries request-correlation identifiers through context and
// generates the header values the client injects into outgoing requests.
package trace

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// contextKey is the type for context keys to avoid collisions.
type contextKey string

const (
	traceIDKey     contextKey = "trace_id"
	traceParentKey contextKey = "traceparent"

	// HeaderXRequestID is the header name used for request correlation.
	HeaderXRequestID = "X-Request-ID"
	// HeaderTraceParent is the W3C trace context header name.
	HeaderTraceParent = "traceparent"
)

// WithID adds a trace ID to the context.
func WithID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// IDFromContext returns a trace ID from context if present.
func IDFromContext(ctx context.Context) (string, bool) {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
		return traceID, true
	}
	return "", false
}

// EnsureID returns an existing trace ID from context or generates a new one.
func EnsureID(ctx context.Context) string {
	if traceID, ok := IDFromContext(ctx); ok {
		return traceID
	}
	return uuid.New().String()
}

// WithParent adds a W3C traceparent value to the context.
func WithParent(ctx context.Context, traceParent string) context.Context {
	return context.WithValue(ctx, traceParentKey, traceParent)
}

// ParentFromContext returns a traceparent from context if present.
func ParentFromContext(ctx context.Context) (string, bool) {
	if tp, ok := ctx.Value(traceParentKey).(string); ok && tp != "" {
		return tp, true
	}
	return "", false
}

// GenerateParent creates a minimal W3C traceparent header value.
// Format: version(2)-trace-id(32)-span-id(16)-flags(2).
func GenerateParent() string {
	traceID := randomHex(16)
	spanID := randomHex(8)
	return "00-" + traceID + "-" + spanID + "-01"
}

// EnsureParent returns an existing traceparent from context or generates one.
func EnsureParent(ctx context.Context) string {
	if tp, ok := ParentFromContext(ctx); ok {
		return tp
	}
	return GenerateParent()
}

// randomHex returns n random bytes hex-encoded, avoiding the all-zero value
// that W3C trace context treats as invalid.
func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		// Fall back to a uuid-derived value on RNG failure.
		id := strings.ReplaceAll(uuid.New().String(), "-", "")
		return id[:n*2]
	}
	allZero := true
	for _, b := range buf {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		buf[len(buf)-1] = 1
	}
	return hex.EncodeToString(buf)
}

package shared

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// ContextKey is the type of values this package stores on a request context.
type ContextKey string

const (
	// PrincipalIDContextKey holds the authenticated principal id (the token subject).
	PrincipalIDContextKey ContextKey = "principalID"

	// TraceIDKey holds the request trace id.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes in a generated trace id.
	TraceIDLength = 16 // 32 hex characters

	// maxInboundTraceID bounds trace ids accepted from the X-Trace-ID header.
	maxInboundTraceID = 64
)

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// WithTraceID stores a caller-supplied trace id, falling back to a generated
// one when the id is empty, too long or contains characters other than
// letters, digits and dashes.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if !validInboundTraceID(traceID) {
		return SetTraceID(ctx)
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithPrincipalID stores the authenticated principal id on the context.
func WithPrincipalID(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, PrincipalIDContextKey, principalID)
}

// GetPrincipalID returns the authenticated principal id, or false when the
// request was not authenticated.
func GetPrincipalID(ctx context.Context) (string, bool) {
	principalID, ok := ctx.Value(PrincipalIDContextKey).(string)
	if !ok || principalID == "" {
		return "", false
	}
	return principalID, true
}

func validInboundTraceID(id string) bool {
	if id == "" || len(id) > maxInboundTraceID {
		return false
	}
	for _, c := range id {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '-':
		default:
			return false
		}
	}
	return true
}

// generateTraceID returns the hex form of a random UUID. If the random
// source fails it falls back to a time and process based id, never a static value.
func generateTraceID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		slog.Error("failed to generate random trace ID",
			"error", err,
			"fallback", "time-based generation")
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(id[:])
}

// generateFallbackTraceID builds a trace id from the wall clock, the process
// id and the monotonic nanosecond counter.
func generateFallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint32(b[8:12], uint32(os.Getpid()))
	binary.BigEndian.PutUint32(b[12:16], uint32(now.Nanosecond()))
	return hex.EncodeToString(b)
}

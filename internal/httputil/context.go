package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const requestIDKey contextKey = "requestID"

// WithRequestID adds a request ID to the request context
func WithRequestID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
}

// GetRequestID returns the request ID, or "" when none was assigned
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

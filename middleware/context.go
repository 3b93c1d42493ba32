package middleware

import "context"

type skipBearerContextKey struct{}
type requestIDContextKey struct{}

// WithoutBearer marks ctx so [Bearer] leaves the request anonymous. Login,
// registration and token refresh use it.
func WithoutBearer(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipBearerContextKey{}, true)
}

func bearerSkipped(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	skip, _ := ctx.Value(skipBearerContextKey{}).(bool)
	return skip
}

// WithRequestID pins the X-Request-ID used by [RequestID] for requests made
// with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the ID set by [WithRequestID].
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

package goBlog

import (
	"context"

	"github.com/MrEthical07/goBlog/middleware"
)

type pinnedTokenContextKey struct{}

// WithRequestID pins the X-Request-ID sent for calls made with ctx, so callers
// can correlate their own logs with the API's.
func WithRequestID(ctx context.Context, id string) context.Context {
	return middleware.WithRequestID(ctx, id)
}

// withPinnedToken makes the bearer middleware send token instead of the
// in-memory one. Identity resolution uses it so the request carries exactly
// the durable token it read.
func withPinnedToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, pinnedTokenContextKey{}, token)
}

func pinnedToken(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	tok, ok := ctx.Value(pinnedTokenContextKey{}).(string)
	return tok, ok
}

package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TokenSource yields the access token to attach to a request. An empty string
// means "send anonymously".
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// TokenSourceFunc adapts a function to [TokenSource].
type TokenSourceFunc func(ctx context.Context) string

// AccessToken implements [TokenSource].
func (f TokenSourceFunc) AccessToken(ctx context.Context) string {
	return f(ctx)
}

// Bearer attaches the current access token. Requests that already carry an
// Authorization header, or whose context was marked with [WithoutBearer], pass
// through untouched.
func Bearer(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if src == nil || bearerSkipped(r.Context()) || r.Header.Get("Authorization") != "" {
				return next.RoundTrip(r)
			}
			token := src.AccessToken(r.Context())
			if token == "" {
				return next.RoundTrip(r)
			}
			r2 := r.Clone(r.Context())
			r2.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r2)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

package middleware

import (
	"context"
	"net/http"
)

// UnauthorizedEvent describes a 401 returned for a bearer-authenticated request.
type UnauthorizedEvent struct {
	// Token is the bearer token the rejected request carried.
	Token     string
	Method    string
	Path      string
	RequestID string
}

// UnauthorizedHook receives [UnauthorizedEvent]s. It runs synchronously on the
// request goroutine before the response is returned to the caller.
type UnauthorizedHook func(ctx context.Context, ev UnauthorizedEvent)

// Unauthorized reports 401 responses to requests that carried a bearer token.
// Anonymous requests that fail with 401 (a wrong password at login, for
// example) are not reported. The response is always passed back unchanged.
func Unauthorized(hook UnauthorizedHook) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil || hook == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				return resp, err
			}

			hook(r.Context(), UnauthorizedEvent{
				Token:     token,
				Method:    r.Method,
				Path:      r.URL.Path,
				RequestID: r.Header.Get(RequestIDHeader),
			})
			return resp, err
		})
	}
}

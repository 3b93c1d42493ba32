package middleware

import (
	"context"
	"net/http"
)

// Waiter blocks until a request may proceed or ctx ends.
type Waiter interface {
	Wait(ctx context.Context) error
}

// RateLimit delays requests until w admits them. A Wait error (usually the
// request context ending) is returned without sending the request.
func RateLimit(w Waiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if w == nil {
			return next
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if err := w.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

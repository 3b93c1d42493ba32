package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID stamps each request with an ID from [WithRequestID], or a fresh
// UUIDv4 when the context has none. An existing header is preserved.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(r)
			}
			id := RequestIDFromContext(r.Context())
			if id == "" {
				id = uuid.NewString()
			}
			r2 := r.Clone(WithRequestID(r.Context(), id))
			r2.Header.Set(RequestIDHeader, id)
			return next.RoundTrip(r2)
		})
	}
}

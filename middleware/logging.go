package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Logging writes one debug event per round trip. Headers and bodies are never
// logged, so tokens and passwords stay out of the log stream.
func Logging(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			ev := logger.Debug()
			if err != nil {
				ev = logger.Warn().Err(err)
			}
			ev = ev.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", r.Header.Get(RequestIDHeader)).
				Dur("duration", time.Since(start))
			if resp != nil {
				ev = ev.Int("status", resp.StatusCode)
			}
			ev.Msg("goblog: api request")

			return resp, err
		})
	}
}

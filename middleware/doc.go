// Package middleware provides http.RoundTripper adapters that the goBlog API client
// stacks on top of its base transport.
//
// # Adapters
//
//   - [Bearer]: attaches "Authorization: Bearer <token>" from a [TokenSource].
//   - [Unauthorized]: reports 401 responses to bearer-authenticated requests.
//   - [RequestID]: stamps X-Request-ID on every outgoing request.
//   - [RateLimit]: blocks until a [Waiter] admits the request.
//   - [Logging]: structured request/response logging via zerolog.
//   - [Tracing]: OpenTelemetry client spans via otelhttp.
//
// Adapters clone the request before modifying headers, as required by the
// http.RoundTripper contract.
//
// # What this package must NOT do
//
//   - Import goBlog or api (no upward imports).
//   - Mutate session state directly; 401 handling is reported through a callback.
package middleware

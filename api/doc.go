// Package api is a typed client for the blog platform's REST API.
//
// Every endpoint answers with an envelope {code, message, data}; [Client] unwraps
// it and decodes data into the caller's type. Failures surface as *[Error], which
// matches the status sentinels ([ErrUnauthorized], [ErrNotFound], ...) under
// errors.Is.
//
// Request inputs are validated locally with go-playground/validator before any
// network call, so obviously bad input never costs a round trip.
//
// # Architecture boundaries
//
// The client is stateless apart from its transport. Bearer tokens, request IDs,
// rate limiting and 401 handling are supplied by the middleware stack on the
// http.Client passed in [Options]; this package only marks calls that must stay
// anonymous.
package api

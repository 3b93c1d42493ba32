// Package goBlog is a Go client for the blog platform's REST API built around a
// session store.
//
// A [Client] owns the current identity and the access/refresh token pair. It
// keeps them in memory and in a durable [session.TokenStore], resolves "who am
// I" with at most one request in flight, and clears itself when the API rejects
// the bearer token. Typed API services (posts, categories, tags, users) are
// reachable through [Client.API] and share the same transport.
//
// Clients are built with [Builder]:
//
//	c, err := goBlog.New().
//		WithConfig(cfg).
//		WithTokenStore(session.NewFileStore(path)).
//		Build()
//
// All Client methods are safe for concurrent use.
//
// # Architecture boundaries
//
// goBlog is the public surface. Request construction and failure
// classification live in internal/flows; transport behaviour lives in
// middleware; persistence lives in session.
//
// # What this package must NOT do
//
//   - Perform network I/O while holding the state lock.
//   - Expose a package-level default Client.
//   - Import any sub-package that re-imports goBlog.
package goBlog

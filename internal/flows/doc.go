// Package flows contains pure-function orchestrators for the goBlog session
// operations.
//
// Each flow (RunLogin, RunRegister, RunResolve, RunRefresh) accepts a typed
// dependency struct and returns a result value carrying either the outcome or
// a classified failure. The root Client owns state, locking and persistence;
// flows only call the API and decide what happened.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goBlog (to avoid import cycles).
//   - Touch session state or write to a token store.
package flows

package goBlog

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountExists is returned by Register for a taken username or email.
	ErrAccountExists = errors.New("account already exists")
	// ErrValidation is returned when input fails local or server-side validation.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized is returned when the API rejects the bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the API denies an action for the current role
	// or the account is disabled.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is returned when the local request budget or the server
	// throttles a call.
	ErrRateLimited = errors.New("rate limited")
	// ErrServerUnavailable covers 5xx answers, timeouts and transport failures.
	ErrServerUnavailable = errors.New("server unavailable")
	// ErrSessionExpired is recorded when a stored session is no longer accepted.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoSession is returned by operations that need stored tokens when none exist.
	ErrNoSession = errors.New("no session")
	// ErrPermissionDenied is returned when the current role lacks a capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrClientNotReady is returned after Close.
	ErrClientNotReady = errors.New("client not ready")
	// ErrTokenStore is returned when the durable token store fails.
	ErrTokenStore = errors.New("token store failure")
)

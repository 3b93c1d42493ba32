package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/session"
)

// ResolveOutcome is what an identity resolution settled on.
type ResolveOutcome int

const (
	// ResolveGuest means no durable token exists; nothing was sent.
	ResolveGuest ResolveOutcome = iota
	// ResolveAuthenticated means the server returned the identity.
	ResolveAuthenticated
	// ResolveFailed means the attempt completed unsuccessfully and the session
	// must be cleared.
	ResolveFailed
)

// ResolveResult carries the resolved identity or failure metadata.
type ResolveResult struct {
	Outcome ResolveOutcome
	Failure FailureKind
	Err     error
	User    *api.User
	// Tokens is the durable pair the attempt used.
	Tokens session.TokenPair
	// Network reports whether the identity endpoint was called.
	Network bool
}

// ResolveDeps captures identity resolution dependencies.
type ResolveDeps struct {
	LoadTokens func(context.Context) (session.TokenPair, error)
	// Expired reports whether an access token is already past its expiry. Nil
	// disables the local check.
	Expired func(token string) bool
	// Loaded is called with the durable pair before the network call.
	Loaded func(session.TokenPair)
	// Me fetches the identity for token.
	Me func(ctx context.Context, token string) (*api.User, error)
	// SessionExpired is the host sentinel reported for local expiry.
	SessionExpired error
}

// RunResolve reads the durable token and asks the API who it belongs to.
func RunResolve(ctx context.Context, deps ResolveDeps) ResolveResult {
	pair, err := deps.LoadTokens(ctx)
	if errors.Is(err, session.ErrNoTokens) {
		return ResolveResult{Outcome: ResolveGuest}
	}
	if err != nil {
		return ResolveResult{Outcome: ResolveFailed, Failure: Classify(err, EndpointOther), Err: err}
	}
	if pair.AccessToken == "" {
		return ResolveResult{Outcome: ResolveGuest}
	}
	if deps.Loaded != nil {
		deps.Loaded(pair)
	}

	if deps.Expired != nil && deps.Expired(pair.AccessToken) {
		return ResolveResult{
			Outcome: ResolveFailed,
			Failure: FailureExpired,
			Err:     deps.SessionExpired,
			Tokens:  pair,
		}
	}

	user, err := deps.Me(ctx, pair.AccessToken)
	if err != nil {
		return ResolveResult{
			Outcome: ResolveFailed,
			Failure: Classify(err, EndpointOther),
			Err:     err,
			Tokens:  pair,
			Network: true,
		}
	}
	if user == nil {
		return ResolveResult{Outcome: ResolveFailed, Failure: FailureMalformed, Err: api.ErrMalformedResponse, Tokens: pair, Network: true}
	}
	return ResolveResult{Outcome: ResolveAuthenticated, User: user, Tokens: pair, Network: true}
}

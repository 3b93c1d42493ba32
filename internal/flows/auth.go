package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/goBlog/api"
)

// AuthResult is the outcome of a login or registration.
type AuthResult struct {
	Failure FailureKind
	Err     error
	User    *api.User
	Tokens  api.Tokens
}

// AuthDeps captures the API calls used by login and registration.
type AuthDeps struct {
	Login    func(context.Context, api.LoginInput) (*api.AuthResult, error)
	Register func(context.Context, api.RegisterInput) (*api.AuthResult, error)
}

// RunLogin validates the credentials locally, then exchanges them for an
// identity and token pair. Exactly one network call is made for valid input.
func RunLogin(ctx context.Context, email, password string, deps AuthDeps) AuthResult {
	in := api.LoginInput{Email: strings.TrimSpace(email), Password: password}
	if err := api.Validate(in); err != nil {
		return AuthResult{Failure: FailureValidation, Err: err}
	}
	if deps.Login == nil {
		return AuthResult{Failure: FailureTransport, Err: errors.New("flows: login dependency missing")}
	}

	res, err := deps.Login(ctx, in)
	return authResult(res, err, EndpointLogin)
}

// RunRegister is RunLogin for account creation.
func RunRegister(ctx context.Context, username, email, password string, deps AuthDeps) AuthResult {
	in := api.RegisterInput{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := api.Validate(in); err != nil {
		return AuthResult{Failure: FailureValidation, Err: err}
	}
	if deps.Register == nil {
		return AuthResult{Failure: FailureTransport, Err: errors.New("flows: register dependency missing")}
	}

	res, err := deps.Register(ctx, in)
	return authResult(res, err, EndpointRegister)
}

func authResult(res *api.AuthResult, err error, ep Endpoint) AuthResult {
	if err != nil {
		return AuthResult{Failure: Classify(err, ep), Err: err}
	}
	if res == nil || res.Tokens.AccessToken == "" {
		return AuthResult{Failure: FailureMalformed, Err: api.ErrMalformedResponse}
	}
	user := res.User
	return AuthResult{User: &user, Tokens: res.Tokens}
}

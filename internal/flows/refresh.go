package flows

import (
	"context"

	"github.com/MrEthical07/goBlog/api"
)

// RefreshResult carries either the rotated pair or failure metadata.
type RefreshResult struct {
	Failure FailureKind
	Err     error
	Tokens  api.Tokens
}

// RefreshDeps captures refresh dependencies.
type RefreshDeps struct {
	// RefreshToken returns the token to trade, or "" when there is none.
	RefreshToken func(context.Context) string
	Refresh      func(context.Context, string) (*api.Tokens, error)
	NoSession    error
}

// RunRefresh trades the stored refresh token for a new pair. A rejected token
// is classified as [FailureExpired].
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	token := deps.RefreshToken(ctx)
	if token == "" {
		return RefreshResult{Failure: FailureNoSession, Err: deps.NoSession}
	}

	tokens, err := deps.Refresh(ctx, token)
	if err != nil {
		return RefreshResult{Failure: Classify(err, EndpointRefresh), Err: err}
	}
	if tokens.RefreshToken == "" {
		// The server may rotate only the access token.
		tokens.RefreshToken = token
	}
	return RefreshResult{Tokens: *tokens}
}

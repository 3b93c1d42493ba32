package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrEthical07/goBlog/middleware"
)

var errMissingTokens = errors.Join(ErrMalformedResponse, errors.New("response carried no access token"))

// AuthService covers /api/auth. All calls are sent without a bearer token.
type AuthService struct {
	c *Client
}

// Login exchanges credentials for an identity and token pair. Wrong credentials
// surface as an *Error matching [ErrUnauthorized].
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out AuthResult
	if err := s.c.do(middleware.WithoutBearer(ctx), http.MethodPost, "/api/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	if out.Tokens.AccessToken == "" {
		return nil, errMissingTokens
	}
	return &out, nil
}

// Register creates an account and signs it in. A duplicate username or email
// surfaces as an *Error matching [ErrBadRequest].
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out AuthResult
	if err := s.c.do(middleware.WithoutBearer(ctx), http.MethodPost, "/api/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	if out.Tokens.AccessToken == "" {
		return nil, errMissingTokens
	}
	return &out, nil
}

// Refresh trades a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, &ValidationError{Fields: map[string]string{"refresh_token": "is required"}}
	}
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	var out Tokens
	if err := s.c.do(middleware.WithoutBearer(ctx), http.MethodPost, "/api/auth/refresh", nil, body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, errMissingTokens
	}
	return &out, nil
}

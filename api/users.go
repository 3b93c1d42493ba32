package api

import (
	"context"
	"net/http"
	"net/url"
)

// UsersService covers /api/users.
type UsersService struct {
	c *Client
}

// Me returns the identity bound to the bearer token on the request.
func (s *UsersService) Me(ctx context.Context) (*User, error) {
	var out User
	if err := s.c.do(ctx, http.MethodGet, "/api/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe patches the caller's profile and returns the updated identity.
func (s *UsersService) UpdateMe(ctx context.Context, in UpdateProfileInput) (*User, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out User
	if err := s.c.do(ctx, http.MethodPut, "/api/users/me", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the caller's password. A wrong old password surfaces
// as an *Error matching [ErrBadRequest].
func (s *UsersService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := Validate(in); err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodPut, "/api/users/me/password", nil, in, nil)
}

// Get returns a public profile by user ID.
func (s *UsersService) Get(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, &ValidationError{Fields: map[string]string{"id": "is required"}}
	}
	var out User
	if err := s.c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package goBlog

import (
	"context"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/flows"
)

// UpdateProfile edits the signed-in user's profile and replaces the held
// identity with the server's answer.
func (c *Client) UpdateProfile(ctx context.Context, in api.UpdateProfileInput) (*Identity, error) {
	if err := c.requireSession(ctx); err != nil {
		return nil, err
	}
	u, err := c.api.Users.UpdateMe(ctx, in)
	if err != nil {
		return nil, c.failure(flows.Classify(err, flows.EndpointOther), err)
	}
	c.SetUser(u)

	c.metrics.Inc(MetricProfileUpdated)
	c.emitAudit(ctx, AuditEvent{EventType: AuditProfileUpdated, UserID: u.ID, Success: true})
	return u.Clone(), nil
}

// ChangePassword replaces the signed-in user's password. A wrong old password
// matches [ErrValidation]. The session stays valid.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}
	err := c.api.Users.ChangePassword(ctx, api.ChangePasswordInput{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})

	userID := ""
	if u := c.User(); u != nil {
		userID = u.ID
	}
	if err != nil {
		err = c.failure(flows.Classify(err, flows.EndpointOther), err)
		c.emitAudit(ctx, AuditEvent{EventType: AuditPasswordChanged, UserID: userID, Error: err.Error()})
		return err
	}

	c.metrics.Inc(MetricPasswordChanged)
	c.emitAudit(ctx, AuditEvent{EventType: AuditPasswordChanged, UserID: userID, Success: true})
	return nil
}

// Can reports whether the held identity's role grants capability. A guest can
// do nothing.
func (c *Client) Can(capability string) bool {
	c.mu.Lock()
	u := c.state.user
	role := api.Role("")
	if u != nil {
		role = u.Role
	}
	c.mu.Unlock()

	if role == "" || c.roles == nil {
		return false
	}
	return c.roles.Can(string(role), capability)
}

// Require is Can returning [ErrPermissionDenied] when the capability is missing.
func (c *Client) Require(capability string) error {
	if !c.Can(capability) {
		return ErrPermissionDenied
	}
	return nil
}

func (c *Client) requireSession(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClientNotReady
	}
	if c.AccessToken(ctx) == "" {
		return ErrNoSession
	}
	return nil
}

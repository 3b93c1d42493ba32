package goBlog

import (
	"context"
	"errors"
	"strconv"

	"github.com/MrEthical07/goBlog/internal/flows"
	"github.com/MrEthical07/goBlog/session"
)

var errSessionChanged = errors.New("session changed during refresh")

func refreshKey(epoch uint64) string {
	return "refresh:" + strconv.FormatUint(epoch, 10)
}

// Refresh trades the refresh token for a new pair and persists it. Concurrent
// callers share one request. A refresh token the API no longer accepts clears
// the session and returns an error matching [ErrSessionExpired]; with no
// refresh token at all it returns [ErrNoSession].
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientNotReady
	}
	epoch := c.epoch
	c.mu.Unlock()

	ch := c.flights.DoChan(refreshKey(epoch), func() (any, error) {
		return nil, c.refresh(ctx, epoch)
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) refresh(parent context.Context, epoch uint64) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.cfg.API.Timeout)
	defer cancel()

	res := flows.RunRefresh(ctx, flows.RefreshDeps{
		RefreshToken: func(ctx context.Context) string {
			c.mu.Lock()
			tok := c.state.refreshToken
			c.mu.Unlock()
			if tok != "" {
				return tok
			}
			return session.RefreshToken(ctx, c.store)
		},
		Refresh:   c.api.Auth.Refresh,
		NoSession: ErrNoSession,
	})

	var (
		err      error
		storeErr error
		userID   string
	)

	c.mu.Lock()
	if c.state.user != nil {
		userID = c.state.user.ID
	}
	switch {
	case c.closed:
		err = ErrClientNotReady
	case c.epoch != epoch:
		err = c.failure(flows.FailureNoSession, errSessionChanged)
	case res.Failure == flows.FailureNone:
		pair := session.NewTokenPair(res.Tokens.AccessToken, res.Tokens.RefreshToken)
		if res.Tokens.TokenType != "" {
			pair.TokenType = res.Tokens.TokenType
		}
		if storeErr = c.store.Save(context.WithoutCancel(ctx), pair); storeErr != nil {
			err = c.failure(flows.FailureStore, storeErr)
			break
		}
		c.state.accessToken = pair.AccessToken
		c.state.refreshToken = pair.RefreshToken
		c.publishLocked()
	case res.Failure == flows.FailureExpired:
		err = c.failure(res.Failure, res.Err)
		storeErr = c.store.Clear(context.WithoutCancel(ctx))
		c.state.expire(err)
		c.epoch++
		c.publishLocked()
	default:
		err = c.failure(res.Failure, res.Err)
	}
	c.mu.Unlock()

	if storeErr != nil {
		c.tokenStoreFailure(parent, "refresh", storeErr)
	}
	if err != nil {
		c.metrics.Inc(MetricRefreshFailure)
		c.emitAudit(parent, AuditEvent{
			EventType: AuditRefreshFailure,
			UserID:    userID,
			Error:     err.Error(),
			Metadata:  map[string]string{"failure": res.Failure.String()},
		})
		return err
	}
	c.metrics.Inc(MetricRefreshSuccess)
	c.emitAudit(parent, AuditEvent{EventType: AuditRefreshSuccess, UserID: userID, Success: true})
	return nil
}

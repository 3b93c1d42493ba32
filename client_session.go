package goBlog

import (
	"context"
	"strconv"
	"time"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/flows"
	"github.com/MrEthical07/goBlog/session"
)

// State returns a snapshot of the session.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot()
}

// User returns a copy of the current identity, or nil.
func (c *Client) User() *Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.user.Clone()
}

// IsLoading reports whether an identity resolution is in progress.
func (c *Client) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.loading > 0
}

// IsAuthenticated reports whether a user is signed in.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.user != nil
}

func (c *Client) authDeps() flows.AuthDeps {
	return flows.AuthDeps{
		Login:    c.api.Auth.Login,
		Register: c.api.Auth.Register,
	}
}

// Login signs in with email and password. On success the returned token pair
// is persisted and the identity and tokens replace the in-memory ones in a
// single step. On failure the previous session is left as it was.
//
// Wrong credentials return an error matching [ErrInvalidCredentials]; input
// that fails local validation matches [ErrValidation] and is never sent.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.signIn(ctx, AuditLoginSuccess, AuditLoginFailure, MetricLoginSuccess, MetricLoginFailure,
		func(ctx context.Context) flows.AuthResult {
			return flows.RunLogin(ctx, email, password, c.authDeps())
		})
}

// Register creates an account and signs it in, with the same contract as
// [Client.Login]. A taken username or email matches [ErrAccountExists].
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	return c.signIn(ctx, AuditRegisterSuccess, AuditRegisterFailure, MetricRegisterSuccess, MetricRegisterFailure,
		func(ctx context.Context) flows.AuthResult {
			return flows.RunRegister(ctx, username, email, password, c.authDeps())
		})
}

func (c *Client) signIn(
	ctx context.Context,
	okEvent, failEvent string,
	okMetric, failMetric MetricID,
	run func(context.Context) flows.AuthResult,
) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientNotReady
	}
	c.state.loading++
	c.publishLocked()
	c.mu.Unlock()

	res := run(ctx)

	c.mu.Lock()
	c.state.loading--
	if c.closed {
		c.mu.Unlock()
		return ErrClientNotReady
	}
	if res.Failure != flows.FailureNone {
		c.publishLocked()
		c.mu.Unlock()

		err := c.failure(res.Failure, res.Err)
		c.metrics.Inc(failMetric)
		c.emitAudit(ctx, AuditEvent{EventType: failEvent, Error: errString(err)})
		return err
	}

	pair := session.NewTokenPair(res.Tokens.AccessToken, res.Tokens.RefreshToken)
	if res.Tokens.TokenType != "" {
		pair.TokenType = res.Tokens.TokenType
	}
	if err := c.store.Save(context.WithoutCancel(ctx), pair); err != nil {
		c.publishLocked()
		c.mu.Unlock()

		c.tokenStoreFailure(ctx, "save", err)
		c.metrics.Inc(failMetric)
		return c.failure(flows.FailureStore, err)
	}
	c.epoch++
	c.state.authenticate(res.User, pair.AccessToken, pair.RefreshToken)
	c.publishLocked()
	c.mu.Unlock()

	c.metrics.Inc(okMetric)
	c.emitAudit(ctx, AuditEvent{EventType: okEvent, UserID: res.User.ID, Success: true})
	return nil
}

// Logout forgets the session: durable tokens are cleared, the in-memory
// identity and tokens are dropped and HasFetchedOnce is reset. A resolution
// still in flight from before the logout cannot write its result back. Logout
// never fails; a store error is logged and audited.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	userID := ""
	if c.state.user != nil {
		userID = c.state.user.ID
	}
	err := c.store.Clear(context.WithoutCancel(ctx))
	c.state.reset()
	c.epoch++
	c.publishLocked()
	c.mu.Unlock()

	c.metrics.Inc(MetricLogout)
	if err != nil {
		c.tokenStoreFailure(ctx, "clear", err)
	}
	c.emitAudit(ctx, AuditEvent{EventType: AuditLogout, UserID: userID, Success: err == nil, Error: errString(err)})
}

// SetUser replaces the identity directly, for example after a profile edit.
// A non-nil identity marks the session authenticated; nil drops the identity
// and leaves the tokens alone. Any resolution still in flight is discarded.
func (c *Client) SetUser(u *Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.state.user = u.Clone()
	if u != nil {
		c.state.hasFetchedOnce = true
		c.state.status = StatusAuthenticated
		c.state.resolveErr = nil
	} else {
		c.state.status = StatusGuest
	}
	c.publishLocked()
}

func fetchKey(epoch uint64) string {
	return "fetch:" + strconv.FormatUint(epoch, 10)
}

// FetchUser resolves the identity behind the durable access token. It is
// idempotent and safe to call from any number of goroutines at once:
//
//   - with no durable token it does nothing;
//   - once an identity is held it does nothing;
//   - otherwise concurrent callers share a single request to /api/users/me.
//
// Any failure of that request clears the session and settles it into
// [StatusExpired] with State.ResolveErr set; FetchUser itself still returns
// nil. It returns ctx.Err() only when ctx ends before the shared outcome
// arrives, in which case the resolution still completes and commits.
func (c *Client) FetchUser(ctx context.Context) error {
	c.metrics.Inc(MetricFetchCalls)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientNotReady
	}
	if c.state.hasFetchedOnce && c.state.user != nil {
		c.mu.Unlock()
		c.metrics.Inc(MetricFetchSkipped)
		return nil
	}
	epoch := c.epoch
	c.mu.Unlock()

	ch := c.flights.DoChan(fetchKey(epoch), func() (any, error) {
		c.fetchFlight(ctx, epoch)
		return nil, nil
	})

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		c.metrics.Inc(MetricFetchAbandoned)
		return ctx.Err()
	}
}

// fetchFlight resolves the identity for epoch unless a flight that finished
// after the caller's check already did.
func (c *Client) fetchFlight(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	done := c.epoch == epoch && c.state.hasFetchedOnce && c.state.user != nil
	c.mu.Unlock()
	if done {
		c.metrics.Inc(MetricFetchSkipped)
		return
	}
	c.resolve(ctx, epoch)
}

// resolve runs one identity resolution for epoch. It is detached from the
// first caller's cancellation and bounded by the API timeout.
func (c *Client) resolve(parent context.Context, epoch uint64) {
	start := time.Now()
	c.metrics.Inc(MetricFetchFlights)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.cfg.API.Timeout)
	defer cancel()

	marked := false
	deps := flows.ResolveDeps{
		LoadTokens: c.store.Load,
		Loaded: func(session.TokenPair) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.epoch != epoch || c.closed {
				return
			}
			c.state.loading++
			marked = true
			c.publishLocked()
		},
		Me: func(ctx context.Context, token string) (*api.User, error) {
			return c.api.Users.Me(withPinnedToken(ctx, token))
		},
		SessionExpired: ErrSessionExpired,
	}
	if c.cfg.Session.DiscardExpiredAccess {
		deps.Expired = c.accessExpired
	}

	res := flows.RunResolve(ctx, deps)
	c.commitResolve(ctx, epoch, res, marked)
	if res.Network {
		c.metrics.Observe(MetricFetchLatency, time.Since(start))
	}
}

func (c *Client) commitResolve(ctx context.Context, epoch uint64, res flows.ResolveResult, marked bool) {
	var (
		cause    error
		clearErr error
	)

	c.mu.Lock()
	if marked {
		c.state.loading--
	}
	if c.epoch != epoch || c.closed {
		if marked {
			c.publishLocked()
		}
		c.mu.Unlock()

		c.metrics.Inc(MetricFetchStale)
		c.log.Debug().Uint64("epoch", epoch).Msg("goblog: discarding identity resolved for a superseded session")
		return
	}

	switch res.Outcome {
	case flows.ResolveGuest:
		if c.state.user == nil {
			c.state.accessToken = ""
			c.state.refreshToken = ""
		}
	case flows.ResolveAuthenticated:
		c.state.authenticate(res.User, res.Tokens.AccessToken, res.Tokens.RefreshToken)
	case flows.ResolveFailed:
		cause = c.failure(res.Failure, res.Err)
		// ctx may already be past the API timeout.
		clearErr = c.store.Clear(context.WithoutCancel(ctx))
		c.state.expire(cause)
	}
	c.publishLocked()
	c.mu.Unlock()

	switch res.Outcome {
	case flows.ResolveAuthenticated:
		c.metrics.Inc(MetricFetchSuccess)
		c.emitAudit(ctx, AuditEvent{EventType: AuditIdentityResolved, UserID: res.User.ID, Success: true})
	case flows.ResolveFailed:
		c.metrics.Inc(MetricFetchFailure)
		c.log.Info().Err(cause).Str("failure", res.Failure.String()).Msg("goblog: stored session rejected, cleared")
		if clearErr != nil {
			c.tokenStoreFailure(ctx, "clear", clearErr)
		}
		c.emitAudit(ctx, AuditEvent{
			EventType: AuditIdentityRejected,
			Error:     errString(cause),
			Metadata:  map[string]string{"failure": res.Failure.String()},
		})
	}
}

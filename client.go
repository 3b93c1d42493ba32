package goBlog

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/rate"
	"github.com/MrEthical07/goBlog/jwt"
	"github.com/MrEthical07/goBlog/middleware"
	"github.com/MrEthical07/goBlog/permission"
	"github.com/MrEthical07/goBlog/session"
)

// UnauthorizedEvent describes a bearer-authenticated request the API rejected
// with 401.
type UnauthorizedEvent = middleware.UnauthorizedEvent

// UnauthorizedHandler is invoked after the Client cleared itself in response
// to a 401. It is where an application sends the user back to its login
// screen. It runs on the goroutine of the rejected request.
type UnauthorizedHandler func(ctx context.Context, ev UnauthorizedEvent)

// Client is the session store. Build one with [Builder]; the zero value is not
// usable.
type Client struct {
	cfg       Config
	log       zerolog.Logger
	store     session.TokenStore
	api       *api.Client
	inspector *jwt.Inspector
	limiter   *rate.Limiter
	roles     *permission.RoleManager
	audit     *auditDispatcher
	metrics   *Metrics

	onUnauthorized UnauthorizedHandler
	flights        singleflight.Group

	mu       sync.Mutex
	state    sessionState
	epoch    uint64
	closed   bool
	watchers map[*watcher]struct{}
	done     chan struct{}
}

// transport assembles the outbound chain around base.
func (c *Client) transport(base http.RoundTripper) http.RoundTripper {
	mws := []middleware.Middleware{middleware.RequestID()}
	if c.cfg.Transport.LogRequests {
		mws = append(mws, middleware.Logging(c.log))
	}
	if c.limiter != nil {
		mws = append(mws, middleware.RateLimit(c.limiter))
	}
	mws = append(mws,
		middleware.Bearer(middleware.TokenSourceFunc(c.AccessToken)),
		middleware.Unauthorized(c.handleUnauthorized),
	)
	if c.cfg.Transport.EnableTracing {
		mws = append(mws, middleware.Tracing())
	}
	return middleware.Chain(base, mws...)
}

// AccessToken returns the token the transport attaches to authenticated
// requests: the in-memory token, or the durable one before the first
// resolution. It satisfies [middleware.TokenSource].
func (c *Client) AccessToken(ctx context.Context) string {
	if tok, ok := pinnedToken(ctx); ok {
		return tok
	}
	c.mu.Lock()
	tok := c.state.accessToken
	c.mu.Unlock()
	if tok != "" {
		return tok
	}
	return session.AccessToken(ctx, c.store)
}

// handleUnauthorized clears the session when the API rejects the token the
// session currently holds. A 401 for a token that was already replaced (by a
// login or refresh racing the request) is ignored.
func (c *Client) handleUnauthorized(ctx context.Context, ev middleware.UnauthorizedEvent) {
	storeCtx := context.WithoutCancel(ctx)

	c.mu.Lock()
	current := c.state.accessToken
	if current == "" {
		current = session.AccessToken(storeCtx, c.store)
	}
	if c.closed || current == "" || ev.Token != current {
		c.mu.Unlock()
		c.metrics.Inc(MetricUnauthorizedIgnored)
		c.log.Debug().Str("path", ev.Path).Str("request_id", ev.RequestID).Msg("goblog: ignoring 401 for a superseded token")
		return
	}

	userID := ""
	if c.state.user != nil {
		userID = c.state.user.ID
	}
	clearErr := c.store.Clear(storeCtx)
	c.state.expire(fmt.Errorf("%w: %w", ErrSessionExpired, ErrUnauthorized))
	c.epoch++
	c.publishLocked()
	c.mu.Unlock()

	c.metrics.Inc(MetricUnauthorized)
	c.log.Info().Str("method", ev.Method).Str("path", ev.Path).Str("request_id", ev.RequestID).Msg("goblog: session rejected by API, cleared")
	if clearErr != nil {
		c.tokenStoreFailure(ctx, "clear", clearErr)
	}
	c.emitAudit(ctx, AuditEvent{
		EventType: AuditSessionUnauthorized,
		UserID:    userID,
		RequestID: ev.RequestID,
		Success:   true,
		Metadata:  map[string]string{"method": ev.Method, "path": ev.Path},
	})

	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx, ev)
	}
}

// API returns the typed API services. Calls made through them share the
// Client's transport, so they carry the session's bearer token and a 401 on
// any of them clears the session.
func (c *Client) API() *api.Client {
	return c.api
}

// Roles returns the capability table used by [Client.Can].
func (c *Client) Roles() *permission.RoleManager {
	return c.roles
}

// Close stops the audit dispatcher and closes every watcher channel. Session
// operations fail with [ErrClientNotReady] afterwards. Durable tokens are kept.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.closeWatchersLocked()
	close(c.done)
	c.mu.Unlock()

	c.audit.close()
}

// AuditDropped returns how many audit events were discarded because the
// buffer was full.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.droppedCount()
}

// MetricsSnapshot returns a copy of the in-process counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// accessExpired reports whether token carries an exp that has passed. Tokens
// that are not JWTs are left to the server.
func (c *Client) accessExpired(token string) bool {
	expired, err := c.inspector.Expired(token)
	return err == nil && expired
}

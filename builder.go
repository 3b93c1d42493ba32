package goBlog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/rate"
	"github.com/MrEthical07/goBlog/jwt"
	"github.com/MrEthical07/goBlog/permission"
	"github.com/MrEthical07/goBlog/session"
)

// Builder assembles a [Client]. A Builder can be built once.
type Builder struct {
	config     Config
	store      session.TokenStore
	httpClient *http.Client
	logger     zerolog.Logger
	auditSink  AuditSink
	onUnauth   UnauthorizedHandler

	built bool
}

// New returns a Builder holding [DefaultConfig] and an in-memory token store.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the whole configuration with a copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets Config.API.BaseURL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithTokenStore sets where the token pair is persisted. Without one the
// session lives only as long as the process.
func (b *Builder) WithTokenStore(store session.TokenStore) *Builder {
	b.store = store
	return b
}

// WithHTTPClient supplies the client whose transport the middleware chain
// wraps. Its Timeout is overridden by Config.API.Timeout.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithUnauthorizedHandler registers the callback run after a 401 cleared the
// session.
func (b *Builder) WithUnauthorizedHandler(h UnauthorizedHandler) *Builder {
	b.onUnauth = h
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histograms for fetch and refresh.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready [Client].
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inspector, err := jwt.NewInspector(jwt.Config{Leeway: cfg.Session.ExpiryLeeway})
	if err != nil {
		return nil, fmt.Errorf("token inspector: %w", err)
	}

	roles, err := permission.Blog()
	if err != nil {
		return nil, fmt.Errorf("role table: %w", err)
	}

	store := b.store
	if store == nil {
		store = session.NewMemoryStore()
	}

	c := &Client{
		cfg:       cfg,
		log:       b.logger,
		store:     store,
		inspector: inspector,
		limiter: rate.New(rate.Config{
			PerMinute: cfg.Transport.RequestsPerMinute,
			Burst:     cfg.Transport.Burst,
		}),
		roles:          roles,
		metrics:        NewMetrics(cfg.Metrics),
		onUnauthorized: b.onUnauth,
		watchers:       make(map[*watcher]struct{}),
		done:           make(chan struct{}),
	}

	// Copy the caller's client so wrapping its transport leaves it untouched.
	hc := &http.Client{}
	if b.httpClient != nil {
		*hc = *b.httpClient
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = c.transport(base)
	hc.Timeout = cfg.API.Timeout

	c.api, err = api.New(api.Options{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: hc,
		UserAgent:  cfg.API.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	c.audit = newAuditDispatcher(cfg.Audit, b.auditSink, b.logger)

	b.built = true
	return c, nil
}

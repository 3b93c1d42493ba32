package goBlog

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config controls a [Client]. Start from [DefaultConfig] and override fields.
type Config struct {
	API       APIConfig
	Session   SessionConfig
	Transport TransportConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the blog API.
type APIConfig struct {
	// BaseURL is the API origin, without the /api prefix.
	BaseURL string
	// Timeout bounds every request, including identity resolution.
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig tunes identity resolution.
type SessionConfig struct {
	// DiscardExpiredAccess settles FetchUser into StatusExpired without a
	// network call when the stored access token's exp has passed.
	DiscardExpiredAccess bool
	// ExpiryLeeway is the clock skew tolerated by the local expiry check.
	ExpiryLeeway time.Duration
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig controls the outbound middleware chain.
type TransportConfig struct {
	// RequestsPerMinute caps outbound calls. Zero disables the limiter.
	RequestsPerMinute int
	// Burst is the limiter bucket size. Zero picks a tenth of RequestsPerMinute.
	Burst int
	// LogRequests logs every request at debug level.
	LogRequests bool
	// EnableTracing wraps the transport with OpenTelemetry client spans using
	// the global tracer provider.
	EnableTracing bool
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used when none is supplied. BaseURL
// is left empty and must be set.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:   15 * time.Second,
			UserAgent: "goblog/1",
		},
		Session: SessionConfig{
			DiscardExpiredAccess: false,
			ExpiryLeeway:         30 * time.Second,
		},
		Transport: TransportConfig{
			RequestsPerMinute: 90,
			LogRequests:       true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.API.BaseURL = strings.TrimSpace(cfg.API.BaseURL)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("API BaseURL must be an absolute http(s) URL")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}
	if c.API.Timeout > 5*time.Minute {
		return errors.New("API Timeout must be <= 5m")
	}

	if c.Session.ExpiryLeeway < 0 || c.Session.ExpiryLeeway > 2*time.Minute {
		return errors.New("Session ExpiryLeeway must be between 0 and 2m")
	}

	if c.Transport.RequestsPerMinute < 0 {
		return errors.New("Transport RequestsPerMinute must be >= 0")
	}
	if c.Transport.Burst < 0 {
		return errors.New("Transport Burst must be >= 0")
	}
	if c.Transport.Burst > 0 && c.Transport.RequestsPerMinute == 0 {
		return errors.New("Transport Burst requires RequestsPerMinute")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

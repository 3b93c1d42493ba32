package rate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Config holds limiter tuning parameters.
type Config struct {
	// PerMinute is the sustained request budget. Zero or negative disables limiting.
	PerMinute int
	// Burst is the bucket capacity. Zero defaults to PerMinute/10 (minimum 1).
	Burst int
}

// Limiter admits outbound requests according to a token bucket.
type Limiter struct {
	lim *rate.Limiter
}

// New creates a [Limiter]. A nil *Limiter (returned for a disabled config) admits
// everything.
func New(cfg Config) *Limiter {
	if cfg.PerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.PerMinute / 10
		if burst < 1 {
			burst = 1
		}
	}
	every := time.Minute / time.Duration(cfg.PerMinute)
	return &Limiter{lim: rate.NewLimiter(rate.Every(every), burst)}
}

// Wait blocks until a token is available or ctx ends. When ctx's deadline is
// too close for a token to arrive, it fails fast with [ErrRateLimited].
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.lim.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return nil
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.lim.Allow()
}

// Tokens returns the number of tokens currently available.
func (l *Limiter) Tokens() float64 {
	if l == nil {
		return 0
	}
	return l.lim.Tokens()
}

package goBlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goBlog/internal/flows"
)

func (c *Client) emitAudit(ctx context.Context, ev AuditEvent) {
	if c.audit == nil {
		return
	}
	c.audit.emit(ctx, ev)
}

func (c *Client) tokenStoreFailure(ctx context.Context, op string, err error) {
	c.metrics.Inc(MetricTokenStoreFailure)
	c.log.Warn().Err(err).Str("op", op).Msg("goblog: token store failure")
	c.emitAudit(ctx, AuditEvent{
		EventType: AuditTokenStoreFailure,
		Error:     err.Error(),
		Metadata:  map[string]string{"op": op},
	})
}

// failure converts a classified flow failure into an error matching one of the
// root sentinels. The cause stays reachable through errors.Is and errors.As.
func (c *Client) failure(kind flows.FailureKind, cause error) error {
	var sentinel error
	switch kind {
	case flows.FailureNone:
		return nil
	case flows.FailureValidation:
		sentinel = ErrValidation
	case flows.FailureInvalidCredentials:
		sentinel = ErrInvalidCredentials
	case flows.FailureAccountExists:
		sentinel = ErrAccountExists
	case flows.FailureUnauthorized:
		sentinel = ErrUnauthorized
	case flows.FailureForbidden:
		sentinel = ErrForbidden
	case flows.FailureNotFound:
		sentinel = ErrNotFound
	case flows.FailureRateLimited:
		sentinel = ErrRateLimited
		c.metrics.Inc(MetricRateLimited)
	case flows.FailureExpired:
		sentinel = ErrSessionExpired
	case flows.FailureNoSession:
		sentinel = ErrNoSession
	case flows.FailureStore:
		sentinel = ErrTokenStore
	case flows.FailureCanceled:
		if cause != nil {
			return cause
		}
		return context.Canceled
	default:
		sentinel = ErrServerUnavailable
	}
	if cause == nil {
		return sentinel
	}
	if errors.Is(cause, sentinel) {
		return cause
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package flows

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/rate"
	"github.com/MrEthical07/goBlog/session"
)

// FailureKind classifies flow failures for root-level error mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureValidation
	FailureInvalidCredentials
	FailureAccountExists
	FailureUnauthorized
	FailureForbidden
	FailureNotFound
	FailureRateLimited
	FailureServer
	FailureTransport
	FailureTimeout
	FailureCanceled
	FailureMalformed
	FailureNoSession
	FailureExpired
	FailureStore
)

var failureNames = [...]string{
	FailureNone:               "none",
	FailureValidation:         "validation",
	FailureInvalidCredentials: "invalid_credentials",
	FailureAccountExists:      "account_exists",
	FailureUnauthorized:       "unauthorized",
	FailureForbidden:          "forbidden",
	FailureNotFound:           "not_found",
	FailureRateLimited:        "rate_limited",
	FailureServer:             "server",
	FailureTransport:          "transport",
	FailureTimeout:            "timeout",
	FailureCanceled:           "canceled",
	FailureMalformed:          "malformed",
	FailureNoSession:          "no_session",
	FailureExpired:            "expired",
	FailureStore:              "store",
}

func (k FailureKind) String() string {
	if k < 0 || int(k) >= len(failureNames) {
		return "unknown"
	}
	return failureNames[k]
}

// Endpoint tells Classify which call failed; login and registration give some
// statuses a specific meaning.
type Endpoint int

const (
	EndpointOther Endpoint = iota
	EndpointLogin
	EndpointRegister
	EndpointRefresh
)

// Classify maps an error from the api, transport or token store onto a
// [FailureKind].
func Classify(err error, ep Endpoint) FailureKind {
	if err == nil {
		return FailureNone
	}

	switch {
	case errors.Is(err, api.ErrValidation):
		return FailureValidation
	case errors.Is(err, rate.ErrRateLimited), errors.Is(err, api.ErrRateLimited):
		return FailureRateLimited
	case errors.Is(err, session.ErrNoTokens):
		return FailureNoSession
	case errors.Is(err, session.ErrCorruptTokens), errors.Is(err, session.ErrStoreUnavailable):
		return FailureStore
	case errors.Is(err, api.ErrMalformedResponse):
		return FailureMalformed
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, ep)
	}

	if errors.Is(err, context.Canceled) {
		return FailureCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureTransport
}

func classifyStatus(status int, ep Endpoint) FailureKind {
	switch ep {
	case EndpointLogin:
		if status == http.StatusUnauthorized {
			return FailureInvalidCredentials
		}
	case EndpointRegister:
		if status == http.StatusBadRequest || status == http.StatusConflict {
			return FailureAccountExists
		}
	case EndpointRefresh:
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return FailureExpired
		}
	}

	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return FailureValidation
	case status == http.StatusUnauthorized:
		return FailureUnauthorized
	case status == http.StatusForbidden:
		return FailureForbidden
	case status == http.StatusNotFound:
		return FailureNotFound
	case status == http.StatusTooManyRequests:
		return FailureRateLimited
	case status >= http.StatusInternalServerError:
		return FailureServer
	}
	return FailureTransport
}

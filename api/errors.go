package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrBadRequest matches 400 responses.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized matches 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden matches 403 responses.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrConflict matches 409 responses.
	ErrConflict = errors.New("conflict")
	// ErrValidation matches 422 responses and local input validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited matches 429 responses.
	ErrRateLimited = errors.New("rate limited by server")
	// ErrServer matches 5xx responses.
	ErrServer = errors.New("server error")
	// ErrMalformedResponse is returned when a response body is not a valid envelope.
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is a non-success answer from the API.
type Error struct {
	StatusCode int
	// Code is the envelope code when present, otherwise the HTTP status.
	Code      int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api: %d %s (request %s)", e.StatusCode, msg, e.RequestID)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, msg)
}

// Is maps the status code onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrValidation:
		return e.StatusCode == http.StatusUnprocessableEntity
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// errorBody covers both the envelope shape and the framework's {"detail": ...}
// shape, where detail is either a string or a list of field errors.
type errorBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func newError(status int, body []byte, requestID string) *Error {
	e := &Error{StatusCode: status, Code: status, RequestID: requestID}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		e.Message = strings.TrimSpace(string(body))
		if len(e.Message) > 200 {
			e.Message = e.Message[:200]
		}
		return e
	}
	if eb.Code != 0 {
		e.Code = eb.Code
	}
	e.Message = eb.Message

	if len(eb.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(eb.Detail, &detail); err == nil {
			e.Message = detail
			return e
		}
		var fields []fieldError
		if err := json.Unmarshal(eb.Detail, &fields); err == nil && len(fields) > 0 {
			parts := make([]string, 0, len(fields))
			for _, f := range fields {
				parts = append(parts, fieldPath(f.Loc)+": "+f.Msg)
			}
			e.Message = strings.Join(parts, "; ")
		}
	}
	return e
}

func fieldPath(loc []any) string {
	parts := make([]string, 0, len(loc))
	for _, p := range loc {
		s := fmt.Sprint(p)
		if s == "body" || s == "query" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

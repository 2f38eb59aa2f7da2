package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// ErrorCode is a machine-readable classification of a client error.
type ErrorCode string

const (
	// ErrBadRequest indicates a malformed request (HTTP 400) or a local argument error.
	ErrBadRequest ErrorCode = "bad_request"
	// ErrUnauthorized indicates authentication is required or failed (HTTP 401).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrForbidden indicates the user lacks permission (HTTP 403).
	ErrForbidden ErrorCode = "forbidden"
	// ErrNotFound indicates the requested resource does not exist (HTTP 404).
	ErrNotFound ErrorCode = "not_found"
	// ErrConflict indicates a conflict with current state (HTTP 409).
	ErrConflict ErrorCode = "conflict"
	// ErrValidation indicates input validation failed (HTTP 422).
	ErrValidation ErrorCode = "validation_failed"
	// ErrRateLimited indicates too many requests (HTTP 429).
	ErrRateLimited ErrorCode = "rate_limited"
	// ErrServerError indicates an internal server error (HTTP 5xx).
	ErrServerError ErrorCode = "server_error"
	// ErrTimeout indicates the request timed out.
	ErrTimeout ErrorCode = "timeout"
	// ErrNetwork indicates the server could not be reached.
	ErrNetwork ErrorCode = "network_error"
	// ErrUnknown indicates an unknown or unclassified error.
	ErrUnknown ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
// The client itself never retries; this is advice for the caller.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrRateLimited, ErrServerError, ErrTimeout, ErrNetwork:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'directus auth login' to authenticate"
	case ErrForbidden:
		return "Check the privileges of your user group"
	case ErrNotFound:
		return "Verify the table, row or file ID exists"
	case ErrRateLimited:
		return "Wait a moment and retry"
	case ErrValidation:
		return "Check the input values"
	case ErrBadRequest:
		return "Check the request format and parameters"
	case ErrConflict:
		return "The resource state may have changed; refresh and retry"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrTimeout:
		return "The request timed out; check network connectivity and retry"
	case ErrNetwork:
		return "Check the Directus URL and that the server is running"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 422:
		return ErrValidation
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromRemote converts a RemoteError to a StructuredError.
func StructuredErrorFromRemote(remoteErr *RemoteError) *StructuredError {
	code := ErrorCodeFromStatus(remoteErr.StatusCode)
	ctx := map[string]any{
		"status_code": remoteErr.StatusCode,
	}
	if remoteErr.RequestID != "" {
		ctx["request_id"] = remoteErr.RequestID
	}
	if dc := remoteErr.Code(); dc != 0 {
		ctx["directus_code"] = dc
	}
	msg := remoteErr.Message()
	if msg == "" {
		msg = remoteErr.Error()
	}
	return &StructuredError{
		Code:       code,
		Message:    msg,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
		Context:    ctx,
	}
}

// StructuredErrorFromError attempts to convert any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return StructuredErrorFromRemote(remoteErr)
	}

	if IsUsageError(err) {
		return NewStructuredError(ErrBadRequest, err.Error())
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		code := ErrNetwork
		switch {
		case transportErr.StatusCode != 0:
			code = ErrorCodeFromStatus(transportErr.StatusCode)
		case isTimeout(transportErr.Err):
			code = ErrTimeout
		}
		se := NewStructuredError(code, err.Error())
		se.Context = map[string]any{"method": transportErr.Method, "url": transportErr.URL}
		return se
	}

	// Generic error - classify as unknown
	return &StructuredError{
		Code:    ErrUnknown,
		Message: err.Error(),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

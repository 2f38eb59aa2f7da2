package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigError reports a client that cannot be constructed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %s", e.Field, e.Reason)
}

// MissingParameterError reports a required argument that was not supplied.
type MissingParameterError struct {
	Operation string
	Parameter string
}

func (e *MissingParameterError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("missing parameter [%s]", e.Parameter)
	}
	return fmt.Sprintf("%s: missing parameter [%s]", e.Operation, e.Parameter)
}

// TypeMismatchError reports a payload of the wrong shape, such as a single
// object handed to a bulk operation.
type TypeMismatchError struct {
	Operation string
	Parameter string
	Expected  string
	Got       string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: parameter %s should be %s, got %s", e.Operation, e.Parameter, e.Expected, e.Got)
}

// UnknownOperationError reports a catalog lookup miss.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Name)
}

// UnexpectedArgumentError reports positional arguments beyond the ones an
// operation declares.
type UnexpectedArgumentError struct {
	Operation string
	Expected  int
	Got       int
}

func (e *UnexpectedArgumentError) Error() string {
	return fmt.Sprintf("%s: expected %d positional arguments, got %d", e.Operation, e.Expected, e.Got)
}

// RemoteError is the payload the server sent back with a failed request,
// either an HTTP error status or a success:false envelope.
type RemoteError struct {
	StatusCode int
	Payload    any
	Body       []byte
	RequestID  string
}

func (e *RemoteError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

// Message extracts a human readable message from the payload. Directus
// reports errors as {"error": {"code": N, "message": "..."}}; plain
// {"message": "..."} and {"error": "..."} shapes are accepted too.
func (e *RemoteError) Message() string {
	switch p := e.Payload.(type) {
	case string:
		return strings.TrimSpace(p)
	case map[string]any:
		switch inner := p["error"].(type) {
		case map[string]any:
			if msg, ok := inner["message"].(string); ok && msg != "" {
				return msg
			}
		case string:
			if inner != "" {
				return inner
			}
		}
		if msg, ok := p["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// Code returns the Directus error code from the payload, or 0.
func (e *RemoteError) Code() int {
	p, ok := e.Payload.(map[string]any)
	if !ok {
		return 0
	}
	inner, ok := p["error"].(map[string]any)
	if !ok {
		return 0
	}
	if code, ok := inner["code"].(float64); ok {
		return int(code)
	}
	return 0
}

// TransportError is a failure that produced no structured server payload:
// connection refused, DNS, TLS, timeouts, or an error status with an empty body.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRemoteError checks if the error carries a server payload.
func IsRemoteError(err error) bool {
	var e *RemoteError
	return errors.As(err, &e)
}

// IsTransportError checks if the error is a transport-level failure.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsUsageError checks if the error was raised locally before any request.
func IsUsageError(err error) bool {
	var (
		missing    *MissingParameterError
		mismatch   *TypeMismatchError
		unknown    *UnknownOperationError
		unexpected *UnexpectedArgumentError
		cfg        *ConfigError
	)
	return errors.As(err, &missing) || errors.As(err, &mismatch) ||
		errors.As(err, &unknown) || errors.As(err, &unexpected) || errors.As(err, &cfg)
}

// IsUnauthorized checks if the server rejected the credentials.
func IsUnauthorized(err error) bool {
	var e *RemoteError
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusUnauthorized
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var e *RemoteError
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusNotFound ||
			strings.Contains(strings.ToLower(e.Message()), "not found")
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode == http.StatusNotFound
	}
	return false
}

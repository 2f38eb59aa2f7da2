package cmd

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/spf13/pflag"

	"github.com/directus/directus-go/internal/config"
	"github.com/directus/directus-go/pkg/api"
)

// Exit codes are part of the CLI contract; scripts branch on them.
const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitForbidden   = 5
	exitRateLimited = 6
	exitServer      = 7
	exitNetwork     = 8
)

// exitByCode maps machine error codes from pkg/api onto exit codes. Codes not
// listed here (unknown) fall through to the message checks in ExitCode.
var exitByCode = map[api.ErrorCode]int{
	api.ErrUnauthorized: exitAuth,
	api.ErrForbidden:    exitForbidden,
	api.ErrNotFound:     exitNotFound,
	api.ErrRateLimited:  exitRateLimited,
	api.ErrServerError:  exitServer,
	api.ErrTimeout:      exitNetwork,
	api.ErrNetwork:      exitNetwork,
	api.ErrBadRequest:   exitUsage,
	api.ErrValidation:   exitUsage,
	api.ErrConflict:     exitUsage,
}

// usageMessages match cobra/pflag argument errors and the CLI's own flag
// validation, which are plain errors without a type to test for.
var usageMessages = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"requires at least",
	"requires exactly",
	"accepts at most",
	"invalid argument",
	"invalid value",
	"must be",
	"is required",
	"conflicts with",
	"cannot be used together",
}

// networkMessages catch dial and TLS failures that reach us already flattened
// into strings.
var networkMessages = []string{
	"connection refused",
	"no such host",
	"certificate",
	"i/o timeout",
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return exitOK
	}

	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	if errors.Is(err, config.ErrNotConfigured) {
		return exitAuth
	}
	if se := api.StructuredErrorFromError(err); se != nil {
		if code, ok := exitByCode[se.Code]; ok {
			return code
		}
	}
	switch {
	case isUsageError(err):
		return exitUsage
	case isNetworkError(err):
		return exitNetwork
	}
	return exitGeneric
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var (
		netErr net.Error
		urlErr *url.Error
	)
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return true
	}
	return containsAny(err.Error(), networkMessages)
}

func isUsageError(err error) bool {
	return containsAny(err.Error(), usageMessages)
}

func containsAny(msg string, needles []string) bool {
	msg = strings.ToLower(msg)
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}

// Package debug carries the debug switch through contexts and configures slog.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

const envDebug = "DIRECTUS_DEBUG"

// redactedKeys are attribute keys whose values never reach the log output.
var redactedKeys = map[string]struct{}{
	"authorization": {},
	"password":      {},
	"token":         {},
	"access_token":  {},
}

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// FromEnv reports whether DIRECTUS_DEBUG asks for debug output.
func FromEnv() bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(envDebug)))
	return err == nil && v
}

// SetupLogger installs a text slog handler on w as the default logger.
// Debug mode lowers the level from warn to debug.
func SetupLogger(w io.Writer, debugEnabled bool) *slog.Logger {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := redactedKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

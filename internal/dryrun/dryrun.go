// Package dryrun carries dry-run mode through the context and renders
// previews of requests that were resolved but not sent.
package dryrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview describes one request that would be sent.
type Preview struct {
	Operation string   `json:"operation,omitempty"`
	Method    string   `json:"method"`
	URL       string   `json:"url"`
	Body      any      `json:"body,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// WarnDestructive adds a warning for methods that delete data.
func (p *Preview) WarnDestructive() {
	if p.Method == http.MethodDelete {
		p.Warnings = append(p.Warnings, "DELETE cannot be undone")
	}
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	label := p.Method + " " + p.URL
	if p.Operation != "" {
		label = p.Operation + ": " + label
	}
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would send %s\n", label)

	if p.Body != nil {
		body, err := json.MarshalIndent(p.Body, "  ", "  ")
		if err != nil {
			body = []byte(fmt.Sprintf("%v", p.Body))
		}
		_, _ = fmt.Fprintf(w, "  %s\n", strings.TrimSpace(string(body)))
	}

	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
	}
}

// WriteAll writes previews followed by a single footer.
func WriteAll(w io.Writer, previews []*Preview) {
	for _, p := range previews {
		p.Write(w)
	}
	_, _ = fmt.Fprintln(w, "No requests sent (dry-run mode)")
}

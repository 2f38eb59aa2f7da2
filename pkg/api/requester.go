package api

import "context"

// HTTPExecutor issues one request per call and normalizes failures.
//
// The catalog dispatcher depends only on this interface, so tests can count
// outbound calls without a server.
type HTTPExecutor interface {
	Get(ctx context.Context, endpoint string, params map[string]any, root Root, result any) error
	Post(ctx context.Context, endpoint string, data any, root Root, result any) error
	Put(ctx context.Context, endpoint string, data any, root Root, result any) error
	Delete(ctx context.Context, endpoint string, data any, root Root, result any) error
}

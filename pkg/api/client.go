package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/directus/directus-go/internal/debug"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultAPIVersion = "1.1"
)

// Root selects which base path a request is resolved against.
type Root int

const (
	// RootVersioned resolves endpoints under <base>/api/<version>/.
	RootVersioned Root = iota
	// RootAPI resolves endpoints under <base>/api/.
	RootAPI
)

func (r Root) String() string {
	if r == RootAPI {
		return "api"
	}
	return "versioned"
}

// Options configures a Client. Only URL is required.
type Options struct {
	AccessToken string
	URL         string
	Version     string
	Headers     map[string]string
	HTTPClient  *http.Client
	UserAgent   string
}

// Client is the Directus API client.
//
// Everything except the access token is fixed at construction. The token is
// read fresh for every request, so a token obtained through Authenticate is
// picked up by all later calls, including calls issued from other goroutines.
type Client struct {
	HTTP *http.Client

	baseURL     string
	version     string
	userAgent   string
	headers     map[string]string
	apiRoot     string
	versionRoot string

	tokenMu     sync.RWMutex
	accessToken string
}

var _ HTTPExecutor = (*Client)(nil)

// New creates a new Directus API client.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	if baseURL == "" {
		return nil, &ConfigError{Field: "url", Reason: "no Directus URL provided"}
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = DefaultAPIVersion
	}

	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient()
	}

	c := &Client{
		HTTP:        httpClient,
		baseURL:     baseURL,
		version:     version,
		userAgent:   opts.UserAgent,
		headers:     headers,
		accessToken: opts.AccessToken,
	}
	c.apiRoot = baseURL + "/api/"
	c.versionRoot = c.apiRoot + version + "/"
	return c, nil
}

func newHTTPClient() *http.Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}

// BaseURL returns the server URL without trailing slashes.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Version returns the API version segment used by VersionedRoot.
func (c *Client) Version() string {
	return c.version
}

// UserAgent returns the User-Agent sent with every request, if any.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// APIRoot returns the unversioned API base, always ending in a single slash.
func (c *Client) APIRoot() string {
	return c.apiRoot
}

// VersionedRoot returns the versioned API base, always ending in a single slash.
func (c *Client) VersionedRoot() string {
	return c.versionRoot
}

// AccessToken returns the bearer token currently in use.
func (c *Client) AccessToken() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.accessToken
}

// SetAccessToken replaces the bearer token used by subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	c.accessToken = token
}

// Logout forgets the bearer token. No request is sent.
func (c *Client) Logout() {
	c.SetAccessToken("")
}

// StaticHeaders returns a copy of the headers configured at construction.
func (c *Client) StaticHeaders() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// resolve joins an endpoint onto the selected root. No separator is added.
func (c *Client) resolve(endpoint string, root Root) string {
	if root == RootAPI {
		return c.apiRoot + endpoint
	}
	return c.versionRoot + endpoint
}

// requestHeaders builds the header set for a single request.
func (c *Client) requestHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	if c.userAgent != "" {
		h.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		h.Set(k, v)
	}
	if token := c.AccessToken(); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// Get performs a GET request. params are sent as a bracket-notation query string.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]any, root Root, result any) error {
	reqURL := c.resolve(endpoint, root)
	if q := EncodeQuery(params); q != "" {
		reqURL += "?" + q
	}
	return c.do(ctx, http.MethodGet, reqURL, nil, result)
}

// Post performs a POST request with data as the JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, data any, root Root, result any) error {
	return c.do(ctx, http.MethodPost, c.resolve(endpoint, root), bodyOrEmpty(data), result)
}

// Put performs a PUT request with data as the JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, data any, root Root, result any) error {
	return c.do(ctx, http.MethodPut, c.resolve(endpoint, root), bodyOrEmpty(data), result)
}

// Delete performs a DELETE request. data, when non-nil, is sent as the JSON body.
func (c *Client) Delete(ctx context.Context, endpoint string, data any, root Root, result any) error {
	return c.do(ctx, http.MethodDelete, c.resolve(endpoint, root), data, result)
}

func bodyOrEmpty(data any) any {
	if data == nil {
		return map[string]any{}
	}
	return data
}

// do performs an HTTP request and decodes the response
func (c *Client) do(ctx context.Context, method, url string, body any, result any) error {
	_, respBody, err := c.doRaw(ctx, method, url, body)
	if err != nil {
		return err
	}
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
		}
	}
	return nil
}

// doRaw performs exactly one HTTP request and returns the status code and raw
// response body. Every failure leaves here either as a *RemoteError or a
// *TransportError.
func (c *Client) doRaw(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := marshalBody(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.requestHeaders()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", method, "url", url, "error", err)
		}
		return 0, nil, &TransportError{Method: method, URL: url, Err: err}
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Method: method, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", url, "status", resp.StatusCode, "duration", time.Since(start))
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, respBody, normalizeStatusError(method, url, resp, respBody)
	}
	return resp.StatusCode, respBody, nil
}

// marshalBody encodes a request body. Raw JSON passes through untouched.
func marshalBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		if json.Valid(v) {
			return v, nil
		}
		return nil, fmt.Errorf("body is not valid JSON")
	}
	return json.Marshal(body)
}

// normalizeStatusError turns an HTTP error status into the error callers see.
// A body from the server is surfaced as the error payload; without one there is
// nothing structured to report, so the failure is treated like any other
// transport failure.
func normalizeStatusError(method, url string, resp *http.Response, respBody []byte) error {
	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 {
		return &TransportError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("request failed with status code %d", resp.StatusCode),
		}
	}

	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		payload = string(trimmed)
	}
	return &RemoteError{
		StatusCode: resp.StatusCode,
		Payload:    payload,
		Body:       respBody,
		RequestID:  requestIDFromHeader(resp.Header),
	}
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return header.Get("X-Request-Id")
}

// HealthCheck reports whether GET <base>/api/server/ping succeeds. The ping
// carries the same headers as every other request. An HTTP error status means
// not healthy; only a failure to reach the server is returned as an error.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	_, _, err := c.doRaw(ctx, http.MethodGet, c.resolve("server/ping", RootAPI), nil)
	if err == nil {
		return true, nil
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return false, nil
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		return false, nil
	}
	return false, err
}

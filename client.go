package filters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Client calls the Compile API of a policy engine. Use NewClient to create
// one. A Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiURL     string
	config     clientConfig
}

// NewClient creates a new Compile API client.
//
// The server URL is resolved in priority order:
//  1. Explicit WithAPIURL option
//  2. OPA_URL environment variable
//  3. DefaultAPIURL
//
// A bearer token is taken from WithToken or, failing that, OPA_TOKEN. No
// token means requests are sent unauthenticated.
func NewClient(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	cfg.applyEnv()

	apiURL := strings.TrimRight(cfg.apiURL, "/")
	if apiURL == "" {
		return nil, errorf("API URL is required")
	}

	httpClient := cfg.httpClient
	if cfg.token != "" {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *httpClient
		wrapped.Transport = &bearerTransport{base: base, token: cfg.token}
		httpClient = &wrapped
	}

	return &Client{
		httpClient: httpClient,
		apiURL:     apiURL,
		config:     cfg,
	}, nil
}

// Compile partially evaluates the policy at path (e.g. "filters/include")
// and returns the data filter in dialect d, plus any column masks.
//
// The Accept header is set from d. When req carries no target dialects, d is
// sent as the only one; req itself is not modified.
func (c *Client) Compile(ctx context.Context, path string, d Dialect, req *CompileRequest) (*CompileResponse, error) {
	if !d.Valid() {
		return nil, errorf("compile: invalid dialect %d", uint8(d))
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, errorf("compile: policy path is required")
	}

	body, err := json.Marshal(req.withDialect(d))
	if err != nil {
		return nil, errorf("compile: encode request: %w", err)
	}

	url := c.apiURL + "/v1/compile/" + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errorf("compile: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", d.AcceptHeader())

	c.config.logger.Debug("compile request", "path", path, "dialect", d.OptionString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errorf("compile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errorf("compile: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// The error body is best effort; the status alone is reported otherwise.
		_ = json.Unmarshal(data, apiErr)
		c.config.logger.Debug("compile failed", "path", path, "status", resp.StatusCode, "code", apiErr.Code)
		return nil, apiErr
	}

	c.checkContentType(resp.Header.Get("Content-Type"), d)

	var out CompileResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errorf("compile: decode response: %w", err)
	}
	return &out, nil
}

// checkContentType logs when the server answered in a dialect other than
// the one requested.
func (c *Client) checkContentType(header string, want Dialect) {
	if header == "" {
		return
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		c.config.logger.Warn("compile: unparseable content type", "content_type", header, "error", err)
		return
	}
	got, err := DialectFromAcceptHeader(mediaType)
	if err != nil {
		// Plain application/json carries no dialect.
		return
	}
	if got != want {
		c.config.logger.Warn("compile: response dialect differs from request",
			"requested", want.OptionString(),
			"received", got.OptionString(),
		)
	}
}

// bearerTransport injects a static Bearer token into every outgoing request.
type bearerTransport struct {
	base  http.RoundTripper
	token string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}

package filters

import (
	"log/slog"
	"net/http"
	"os"
)

const (
	// DefaultAPIURL is the default policy engine address for local development.
	DefaultAPIURL = "http://localhost:8181"

	// maxResponseBytes bounds how much of a Compile API response is read.
	maxResponseBytes = 50 << 20
)

// clientConfig holds resolved configuration for the client.
type clientConfig struct {
	apiURL     string
	apiURLSet  bool
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*clientConfig)

// WithAPIURL sets the policy engine URL.
func WithAPIURL(url string) Option {
	return func(c *clientConfig) {
		c.apiURL = url
		c.apiURLSet = true
	}
}

// WithToken sets a static bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *clientConfig) {
		c.token = token
	}
}

// WithHTTPClient sets the HTTP client used for requests. Its transport is
// wrapped when a token is configured.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom slog logger. By default, the client uses slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func defaultConfig() clientConfig {
	return clientConfig{
		apiURL:     DefaultAPIURL,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
}

// applyEnv fills settings the options left unset from OPA_URL and OPA_TOKEN.
func (c *clientConfig) applyEnv() {
	if !c.apiURLSet {
		if v := os.Getenv("OPA_URL"); v != "" {
			c.apiURL = v
		}
	}
	if c.token == "" {
		c.token = os.Getenv("OPA_TOKEN")
	}
}

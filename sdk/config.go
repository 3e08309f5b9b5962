package sdk

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"kvctl.io/kvctl/internal/metrics"
)

// ClientConfig contains the configuration for creating a new SDK client.
type ClientConfig struct {
	// BaseURL is the controller root URL (e.g., "http://127.0.0.1:9379").
	// The client appends /api/v1 itself.
	BaseURL string

	// HTTPClient is the HTTP client to use for requests.
	// Optional: if nil, a default client with Timeout will be created.
	HTTPClient *http.Client

	// Timeout is the HTTP request timeout.
	// Default: 30 seconds
	Timeout time.Duration

	// Transport replaces the HTTP transport entirely.
	// Optional: when set, BaseURL and HTTPClient are ignored.
	Transport Transport

	// Logger receives per-call debug logs and failure warnings.
	// Default: no-op logger
	Logger *zap.Logger

	// Metrics records per-call counters and durations.
	// Optional: nil disables metrics.
	Metrics *metrics.Client

	// RateLimit caps outgoing calls per second.
	// Default: 0 (unlimited)
	RateLimit float64

	// Burst is the number of calls allowed at once under RateLimit.
	// Default: 1
	Burst int
}

// Validate checks if the client configuration is valid and sets defaults.
func (c *ClientConfig) Validate() error {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit > 0 && c.Burst <= 0 {
		c.Burst = 1
	}

	if c.Transport != nil {
		return nil
	}

	url := strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if url == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%w: base URL must start with http:// or https://", ErrInvalidConfig)
	}
	c.BaseURL = url

	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	c.Transport = &HTTPTransport{BaseURL: c.BaseURL, HTTPClient: c.HTTPClient}
	return nil
}

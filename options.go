package ptv

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithMinInterval sets the minimum delay between successive dispatches.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		c.minInterval = d
	}
}

// WithMaxBackoff sets the ceiling for the adaptive backoff delay.
func WithMaxBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.maxBackoff = d
	}
}

// WithTimeout sets the per-request timeout enforced by the dispatch guard.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTransport injects a custom transport for dispatching requests.
func WithTransport(rt RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithHTTPClient dispatches through an existing *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport = RoundTripperFunc(hc.Do)
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a plain console logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithZapLogger enables debug logging through a zap logger.
func WithZapLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewZapLogger(l)
	}
}

// WithDebug enables debug logging with the default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets a custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// ValidateConfiguration validates the client configuration, accumulating
// every problem before reporting.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	if c.baseURL == "" {
		problems = append(problems, "baseURL must not be empty")
	} else if !strings.HasPrefix(c.baseURL, "http://") && !strings.HasPrefix(c.baseURL, "https://") {
		problems = append(problems, "baseURL must start with http:// or https://")
	}
	if c.creds.DeveloperID == "" {
		problems = append(problems, "credentials must include a developer id")
	}
	if c.creds.Key == "" {
		problems = append(problems, "credentials must include a signing key")
	}
	if c.minInterval < 0 {
		problems = append(problems, "minInterval must be non-negative")
	}
	if c.maxBackoff <= 0 {
		problems = append(problems, "maxBackoff must be positive")
	}
	if c.timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}

	if len(problems) > 0 {
		return newAPIError(KindValidation,
			"configuration validation failed: "+strings.Join(problems, "; "), 0, "", nil, nil)
	}
	return nil
}

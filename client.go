package ptv

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client is the facade that turns a (path, params, schema) triple into a
// validated typed result. It owns the signing credentials and delegates
// execution to an instance-owned RequestManager. Safe for concurrent use.
type Client struct {
	baseURL string
	creds   SigningCredentials
	manager *RequestManager

	minInterval time.Duration
	maxBackoff  time.Duration
	timeout     time.Duration
	transport   RoundTripper

	logger  Logger
	debug   *DebugConfig
	metrics *MetricsCollector

	validationError error
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; call IsValid / ValidationError for errors.
func New(baseURL string, creds SigningCredentials, options ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		creds:       creds,
		minInterval: DefaultMinInterval,
		maxBackoff:  DefaultMaxBackoff,
		timeout:     DefaultTimeout,
		debug:       DefaultDebugConfig(),
	}

	for _, option := range options {
		option(c)
	}

	if err := c.ValidateConfiguration(); err != nil {
		c.validationError = err
	}

	c.manager = NewRequestManager(ManagerConfig{
		MinInterval: c.minInterval,
		MaxBackoff:  c.maxBackoff,
		Timeout:     c.timeout,
		Transport:   c.transport,
		Logger:      c.logger,
		Debug:       c.debug,
		Metrics:     c.metrics,
	})

	return c
}

// SignedURL builds the fully qualified signed URL for path and params,
// without dispatching it. Deterministic for identical inputs.
func (c *Client) SignedURL(path string, params Params) string {
	return BuildSignedURL(c.baseURL, path, params, c.creds)
}

// Call executes an API operation: sign, dispatch under the manager's pacing
// policy, then decode and validate the response against schema. Non-2xx
// statuses the manager passed upward are classified here via ErrorFromStatus;
// schema failures surface as a Validation error carrying the issue list and
// the offending decoded body.
func (c *Client) Call(ctx context.Context, path string, params Params, schema Schema) (any, error) {
	start := time.Now()

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}
	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("starting request", "requestID", requestID, "endpoint", path)
	}

	url := c.SignedURL(path, params)

	resp, err := c.manager.Execute(ctx, url, path)
	if err != nil {
		if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
			c.logger.Warn("request failed", "requestID", requestID, "endpoint", path, "error", err)
		}
		return nil, err
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("request complete", "requestID", requestID, "endpoint", path,
			"status", resp.StatusCode, "duration", time.Since(start))
	}

	if !resp.OK() {
		apiErr := ErrorFromStatus(resp.StatusCode, path, decodeErrorBody(resp.Bytes()))
		if c.metrics != nil {
			c.metrics.RecordError(string(apiErr.Kind), path)
		}
		return nil, apiErr
	}

	data, issues := schema.SafeParse(resp.Bytes())
	if len(issues) > 0 {
		if c.metrics != nil {
			c.metrics.RecordError(string(KindValidation), path)
		}
		return nil, NewValidationError(path, issues, decodeErrorBody(resp.Bytes()))
	}

	return data, nil
}

// CallAs is the typed convenience wrapper around Call: it validates the
// response with a StructSchema for T and returns the decoded value.
func CallAs[T any](ctx context.Context, c *Client, path string, params Params) (T, error) {
	var zero T
	data, err := c.Call(ctx, path, params, NewStructSchema[T]())
	if err != nil {
		return zero, err
	}
	out, ok := data.(T)
	if !ok {
		return zero, NewValidationError(path, []Issue{{
			Path:    "$",
			Message: fmt.Sprintf("decoded value has unexpected type %T", data),
		}}, data)
	}
	return out, nil
}

// Backoff exposes the manager's current backoff delay, for diagnostics.
func (c *Client) Backoff() time.Duration {
	return c.manager.Backoff()
}

// ResetBackoff manually clears the manager's backoff delay.
func (c *Client) ResetBackoff() {
	c.manager.ResetBackoff()
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

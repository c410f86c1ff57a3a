package ptv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/thesammykins/ptv-api/internal/backoff"
	"github.com/thesammykins/ptv-api/internal/inflight"
)

// Default pacing and timeout configuration for the request manager.
const (
	DefaultMinInterval = 200 * time.Millisecond
	DefaultMaxBackoff  = 60 * time.Second
	DefaultTimeout     = 10 * time.Second
)

// RoundTripper is the transport seam the manager dispatches through.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc adapts a function to the RoundTripper interface.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Response is a fully buffered transport response. Buffering happens once in
// the manager; every logical caller that attached to the same in-flight
// request reads the body independently through Bytes, Reader or JSON.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	body       []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Bytes returns a copy of the buffered body.
func (r *Response) Bytes() []byte {
	out := make([]byte, len(r.body))
	copy(out, r.body)
	return out
}

// Reader returns a fresh reader over the buffered body.
func (r *Response) Reader() io.Reader {
	return bytes.NewReader(r.body)
}

// JSON decodes the buffered body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.body, v)
}

// ManagerConfig configures a RequestManager. Zero values take the package
// defaults; a nil Transport binds to the standard library HTTP client.
type ManagerConfig struct {
	MinInterval time.Duration
	MaxBackoff  time.Duration
	Timeout     time.Duration
	Transport   RoundTripper
	Logger      Logger
	Debug       *DebugConfig
	Metrics     *MetricsCollector
}

// RequestManager executes signed URLs under single-flight de-duplication,
// min-interval throttling and adaptive backoff. All state is owned by the
// instance: independently configured managers never share pacing state.
// Safe for concurrent use.
//
// The manager never retries: a 429 or 5xx escalates the delay applied before
// the next dispatch, and the failure propagates to the caller.
type RequestManager struct {
	mu           sync.Mutex
	lastDispatch time.Time

	inflight *inflight.Table
	backoff  *backoff.Escalator

	minInterval time.Duration
	maxBackoff  time.Duration
	timeout     time.Duration
	transport   RoundTripper

	logger  Logger
	debug   *DebugConfig
	metrics *MetricsCollector
}

// NewRequestManager constructs a manager from cfg, applying defaults for
// unset fields.
func NewRequestManager(cfg ManagerConfig) *RequestManager {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	return &RequestManager{
		inflight:    inflight.New(),
		backoff:     backoff.New(backoff.DefaultInitial, cfg.MaxBackoff),
		minInterval: cfg.MinInterval,
		maxBackoff:  cfg.MaxBackoff,
		timeout:     cfg.Timeout,
		transport:   cfg.Transport,
		logger:      cfg.Logger,
		debug:       cfg.Debug,
		metrics:     cfg.Metrics,
	}
}

// Execute performs at most one physical request for url, no matter how many
// logical callers ask for it concurrently. Callers attaching to an existing
// in-flight request share its outcome; once a request settles its entry is
// gone and the next Execute for the same URL dispatches anew.
//
// 429 and 5xx responses come back as *APIError and escalate backoff. Every
// other status — including 4xx the manager declines to classify — returns
// the buffered response for the facade to interpret, and resets backoff.
func (m *RequestManager) Execute(ctx context.Context, url, endpoint string) (*Response, error) {
	v, err, shared := m.inflight.Do(ctx, url, func() (any, error) {
		return m.dispatch(ctx, url, endpoint)
	})
	if shared {
		if m.metrics != nil {
			m.metrics.RecordDedupHit(endpoint)
		}
		if m.debug != nil && m.debug.Enabled && m.debug.LogDedup && m.logger != nil {
			m.logger.Debug("joined in-flight request", "endpoint", endpoint)
		}
	}
	resp, _ := v.(*Response)
	return resp, err
}

// Backoff returns the current backoff delay, for diagnostics and tests.
func (m *RequestManager) Backoff() time.Duration {
	return m.backoff.Current()
}

// ResetBackoff manually clears the backoff delay.
func (m *RequestManager) ResetBackoff() {
	m.backoff.Reset()
	if m.metrics != nil {
		m.metrics.RecordBackoff(0)
	}
}

func (m *RequestManager) dispatch(ctx context.Context, url, endpoint string) (*Response, error) {
	if err := m.awaitTurn(ctx, endpoint); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m.mu.Lock()
	m.lastDispatch = start
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordRequestStart(endpoint)
		defer m.metrics.RecordRequestEnd(endpoint)
	}

	httpResp, err := m.transport.RoundTrip(req)
	if err != nil {
		return nil, m.classifyTransportError(err, endpoint)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if m.metrics != nil {
			m.metrics.RecordError(string(KindNetwork), endpoint)
		}
		return nil, NewNetworkError(endpoint, err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header.Clone(),
		body:       body,
	}

	if m.metrics != nil {
		m.metrics.RecordRequest(endpoint, resp.StatusCode, time.Since(start))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, m.failSlowDown(KindRateLimit, resp, endpoint)
	case resp.StatusCode >= 500:
		return nil, m.failSlowDown(KindServer, resp, endpoint)
	default:
		// Optimistic decay: any settle that is not a 429/5xx clears
		// backoff, including 4xx statuses left for the facade.
		m.backoff.Reset()
		if m.metrics != nil {
			m.metrics.RecordBackoff(0)
		}
		return resp, nil
	}
}

// failSlowDown escalates backoff for a throttling-relevant status and
// builds the matching taxonomy error.
func (m *RequestManager) failSlowDown(kind ErrorKind, resp *Response, endpoint string) error {
	delay := m.backoff.Escalate()
	if m.metrics != nil {
		m.metrics.RecordBackoff(delay)
		m.metrics.RecordError(string(kind), endpoint)
	}
	if m.debug != nil && m.debug.Enabled && m.debug.LogBackoff && m.logger != nil {
		m.logger.Warn("backoff escalated", "endpoint", endpoint, "status", resp.StatusCode, "backoff", delay)
	}
	return ErrorFromStatus(resp.StatusCode, endpoint, decodeErrorBody(resp.body))
}

// awaitTurn suspends until the single coupled throttle-plus-backoff wait
// has elapsed since the last dispatch. The wait is computed once, at the
// moment this request reaches the front.
func (m *RequestManager) awaitTurn(ctx context.Context, endpoint string) error {
	m.mu.Lock()
	var wait time.Duration
	if !m.lastDispatch.IsZero() {
		wait = m.minInterval + m.backoff.Current() - time.Since(m.lastDispatch)
	}
	m.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	if m.metrics != nil {
		m.metrics.RecordThrottleWait(endpoint, wait)
	}
	if m.debug != nil && m.debug.Enabled && m.debug.LogThrottle && m.logger != nil {
		m.logger.Debug("throttling dispatch", "endpoint", endpoint, "wait", wait)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// classifyTransportError maps transport failures into the taxonomy: the
// timeout guard's deadline becomes Timeout, net-layer failures become
// Network, and anything unrecognized propagates unmodified so unanticipated
// failure modes are not silently miscategorized.
func (m *RequestManager) classifyTransportError(err error, endpoint string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if m.metrics != nil {
			m.metrics.RecordError(string(KindTimeout), endpoint)
		}
		return NewTimeoutError(endpoint, m.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if m.metrics != nil {
			m.metrics.RecordError(string(KindNetwork), endpoint)
		}
		return NewNetworkError(endpoint, err)
	}
	return err
}

// decodeErrorBody turns a failure body into its most useful form for error
// reporting: decoded JSON when possible, the raw text otherwise.
func decodeErrorBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		return decoded
	}
	return string(body)
}

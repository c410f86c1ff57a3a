package ptv

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrorKind discriminates the closed set of failure modes surfaced by the
// client. Every failure callers see is an *APIError carrying one of these.
type ErrorKind string

const (
	KindBadRequest ErrorKind = "BadRequest"
	KindAuth       ErrorKind = "Auth"
	KindNotFound   ErrorKind = "NotFound"
	KindRateLimit  ErrorKind = "RateLimit"
	KindServer     ErrorKind = "Server"
	KindValidation ErrorKind = "Validation"
	KindNetwork    ErrorKind = "Network"
	KindTimeout    ErrorKind = "Timeout"
	// KindHTTP is the fallback for HTTP statuses the taxonomy does not
	// name, with the status preserved and message "HTTP {status}".
	KindHTTP ErrorKind = "HTTP"
)

// Issue describes a single schema validation failure.
type Issue struct {
	Path    string
	Message string
}

// APIError is the single error type raised by the client. Immutable after
// construction; message and body are credential-redacted at construction
// and the endpoint is stored with any query string stripped.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // 0 for non-HTTP failures
	Endpoint   string
	Body       any
	Issues     []Issue
	Timeout    time.Duration
	Cause      error
}

const redactedPlaceholder = "REDACTED"

// credentialPattern matches key=value substrings whose key names credential
// material. Ordering matters: longer alternatives first so "api_key" is not
// half-matched as "key".
var credentialPattern = regexp.MustCompile(`(?i)\b(api_key|apikey|devid|signature|key)\s*=\s*[^&\s"',}]+`)

// Redact replaces credential-shaped values in s with a fixed placeholder,
// leaving the key name visible.
func Redact(s string) string {
	return credentialPattern.ReplaceAllString(s, "${1}="+redactedPlaceholder)
}

// redactBody scrubs a response body payload. Strings are scrubbed directly;
// structured values round-trip through JSON. If the round trip fails the
// original body is returned unscrubbed rather than raising.
func redactBody(body any) any {
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return Redact(b)
	case []byte:
		return Redact(string(b))
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return body
		}
		var out any
		if err := json.Unmarshal([]byte(Redact(string(raw))), &out); err != nil {
			return body
		}
		return out
	}
}

// stripQuery normalizes an endpoint by dropping everything from the first
// '?' onward, so the stored endpoint can never leak signed query material.
func stripQuery(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

func newAPIError(kind ErrorKind, message string, status int, endpoint string, body any, cause error) *APIError {
	return &APIError{
		Kind:       kind,
		Message:    Redact(message),
		StatusCode: status,
		Endpoint:   stripQuery(endpoint),
		Body:       redactBody(body),
		Cause:      cause,
	}
}

// NewValidationError reports a response that decoded but failed its schema.
// The offending decoded body travels with the error for diagnostics.
func NewValidationError(endpoint string, issues []Issue, body any) *APIError {
	e := newAPIError(KindValidation, "response validation failed", 0, endpoint, body, nil)
	e.Issues = issues
	return e
}

// NewTimeoutError reports a transport call abandoned by the timeout guard.
func NewTimeoutError(endpoint string, timeout time.Duration) *APIError {
	e := newAPIError(KindTimeout, fmt.Sprintf("request timed out after %v", timeout), 0, endpoint, nil, nil)
	e.Timeout = timeout
	return e
}

// NewNetworkError wraps a lower-level transport failure such as a DNS or
// connection error.
func NewNetworkError(endpoint string, cause error) *APIError {
	return newAPIError(KindNetwork, "network request failed", 0, endpoint, nil, cause)
}

// ErrorFromStatus classifies an HTTP status into the taxonomy, attaching the
// given endpoint and (redacted) body.
func ErrorFromStatus(status int, endpoint string, body any) *APIError {
	switch {
	case status == http.StatusBadRequest:
		return newAPIError(KindBadRequest, "bad request", status, endpoint, body, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newAPIError(KindAuth, "authentication failed", status, endpoint, body, nil)
	case status == http.StatusNotFound:
		return newAPIError(KindNotFound, "not found", status, endpoint, body, nil)
	case status == http.StatusTooManyRequests:
		return newAPIError(KindRateLimit, "rate limited", status, endpoint, body, nil)
	case status >= 500:
		return newAPIError(KindServer, "server error", status, endpoint, body, nil)
	default:
		return newAPIError(KindHTTP, fmt.Sprintf("HTTP %d", status), status, endpoint, body, nil)
	}
}

// Error implements the error interface. The rendered text is re-scrubbed so
// a cause carrying a signed URL never surfaces secret material.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Endpoint)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	return Redact(msg)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches two APIErrors by kind, so errors.Is(err, &APIError{Kind: KindTimeout})
// works without comparing diagnostic fields.
func (e *APIError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*APIError); ok {
		return e.Kind == t.Kind
	}
	return false
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorKind classifies a transport failure. Timeout and Connection are
// retryable; everything else is terminal for the call.
type ErrorKind string

const (
	KindTimeout          ErrorKind = "timeout"
	KindConnection       ErrorKind = "connection"
	KindRateLimited      ErrorKind = "rate_limited"
	KindModelUnsupported ErrorKind = "model_unsupported"
	KindHTTPStatus       ErrorKind = "http_status"
	KindMalformed        ErrorKind = "malformed_response"
)

// APIError is the single error type returned by the client. StatusCode is
// zero when the failure happened below the HTTP layer, Body carries a short
// excerpt of the offending response.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Body)
	default:
		return string(e.Kind)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could reasonably succeed.
func (e *APIError) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindConnection
}

// ErrorKindOf extracts the kind from err, or "" when err is not an APIError.
func ErrorKindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// unsupportedHints are the phrases gateways use when a listed model cannot
// actually be served.
var unsupportedHints = []string{
	"model_not_supported",
	"the requested model is not supported",
}

func looksUnsupported(s string) bool {
	lower := strings.ToLower(s)
	for _, hint := range unsupportedHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// classifyTransportErr maps a low-level http.Client error onto the taxonomy.
func classifyTransportErr(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &APIError{Kind: KindTimeout, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &APIError{Kind: KindTimeout, Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &APIError{Kind: KindConnection, Err: err}
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return &APIError{Kind: KindConnection, Err: err}
	}

	if looksUnsupported(err.Error()) {
		return &APIError{Kind: KindModelUnsupported, Err: err}
	}

	return &APIError{Kind: KindConnection, Err: err}
}

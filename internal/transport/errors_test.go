package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTransportErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: KindTimeout,
		},
		{
			name: "wrapped deadline exceeded",
			err:  fmt.Errorf("doing request: %w", context.DeadlineExceeded),
			want: KindTimeout,
		},
		{
			name: "connection refused",
			err:  fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED),
			want: KindConnection,
		},
		{
			name: "connection reset",
			err:  fmt.Errorf("read: %w", syscall.ECONNRESET),
			want: KindConnection,
		},
		{
			name: "net op error",
			err:  &net.OpError{Op: "dial", Err: errors.New("no route to host")},
			want: KindConnection,
		},
		{
			name: "unsupported model hint",
			err:  errors.New("The requested model is not supported"),
			want: KindModelUnsupported,
		},
		{
			name: "unknown errors default to connection",
			err:  errors.New("something odd"),
			want: KindConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := classifyTransportErr(tt.err)
			assert.Equal(t, tt.want, apiErr.Kind)
			assert.ErrorIs(t, apiErr, tt.err)
		})
	}
}

func TestAPIErrorRetryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{KindTimeout, true},
		{KindConnection, true},
		{KindRateLimited, false},
		{KindModelUnsupported, false},
		{KindHTTPStatus, false},
		{KindMalformed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := &APIError{Kind: tt.kind}
			assert.Equal(t, tt.want, e.Retryable())
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "status and body",
			err:  &APIError{Kind: KindRateLimited, StatusCode: 429, Body: "slow down"},
			want: "rate_limited (status 429): slow down",
		},
		{
			name: "status only",
			err:  &APIError{Kind: KindHTTPStatus, StatusCode: 503},
			want: "http_status (status 503)",
		},
		{
			name: "wrapped error",
			err:  &APIError{Kind: KindTimeout, Err: errors.New("deadline exceeded")},
			want: "timeout: deadline exceeded",
		},
		{
			name: "body only",
			err:  &APIError{Kind: KindModelUnsupported, Body: "model_not_supported"},
			want: "model_unsupported: model_not_supported",
		},
		{
			name: "bare kind",
			err:  &APIError{Kind: KindMalformed},
			want: "malformed_response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorKindOf(t *testing.T) {
	inner := &APIError{Kind: KindRateLimited}
	wrapped := fmt.Errorf("testing model: %w", inner)

	assert.Equal(t, KindRateLimited, ErrorKindOf(wrapped))
	assert.Equal(t, ErrorKind(""), ErrorKindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), ErrorKindOf(nil))
}

func TestLooksUnsupported(t *testing.T) {
	assert.True(t, looksUnsupported(`{"error":{"code":"model_not_supported"}}`))
	assert.True(t, looksUnsupported("The Requested Model Is Not Supported"))
	assert.False(t, looksUnsupported("internal server error"))
	assert.False(t, looksUnsupported(""))
}

package transport

import (
	"context"
	"time"
)

// RetryPolicy bounds the retry loop for retryable failures. MaxRetries counts
// attempts after the first, so MaxRetries=2 allows three attempts total.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy mirrors the documented defaults: two retries with
// exponential backoff starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// retryState is the explicit state threaded through a retry loop: how many
// retries have happened and how long the next wait is. Values are immutable;
// next returns the successor state.
type retryState struct {
	attempt int
	delay   time.Duration
}

func (p RetryPolicy) start() retryState {
	return retryState{attempt: 0, delay: p.BaseDelay}
}

// exhausted reports whether the policy allows no further retries.
func (s retryState) exhausted(p RetryPolicy) bool {
	return s.attempt >= p.MaxRetries
}

// next returns the state for the following retry, doubling the delay up to
// the policy cap.
func (s retryState) next(p RetryPolicy) retryState {
	d := s.delay * 2
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return retryState{attempt: s.attempt + 1, delay: d}
}

// wait blocks for the state's delay or until the context is done.
func (s retryState) wait(ctx context.Context) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package clients

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/ajitpratap0/metactx/pkg/omerrors"
)

// RetryAfterDetail is the omerrors detail key holding a server-requested
// wait as a time.Duration.
const RetryAfterDetail = "retry_after"

// RetryPolicy retries transient failures with capped exponential backoff.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter spreads each delay uniformly over +/- Jitter of its value.
	Jitter float64
	// ShouldRetry classifies errors; nil means omerrors.IsRetryable.
	ShouldRetry func(error) bool
	// OnRetry is called before each wait with the failed attempt (from 1).
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewRetryPolicy returns a policy doubling from initialDelay up to maxDelay.
func NewRetryPolicy(maxAttempts int, initialDelay, maxDelay time.Duration) *RetryPolicy {
	rp := &RetryPolicy{
		MaxAttempts:  max(maxAttempts, 1),
		InitialDelay: initialDelay,
		MaxDelay:     maxDelay,
		Multiplier:   2,
		Jitter:       0.25,
	}
	if rp.MaxDelay <= 0 {
		rp.MaxDelay = time.Minute
	}
	return rp
}

// Execute runs fn until it succeeds, fails with a permanent error, the
// attempts run out or ctx is done. The last error of fn is returned as is.
func (rp *RetryPolicy) Execute(ctx context.Context, fn func() error) error {
	retryable := rp.ShouldRetry
	if retryable == nil {
		retryable = omerrors.IsRetryable
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !retryable(err) || attempt >= rp.MaxAttempts {
			return err
		}

		delay := rp.Backoff(attempt - 1)
		if wait, ok := RetryAfter(err); ok && wait > delay {
			delay = min(wait, rp.MaxDelay)
		}
		if rp.OnRetry != nil {
			rp.OnRetry(attempt, delay, err)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return omerrors.Wrap(ctx.Err(), omerrors.ErrorTypeTimeout, "retry cancelled")
		case <-t.C:
		}
	}
}

// Backoff returns the jittered wait after the n-th failed attempt (from 0).
func (rp *RetryPolicy) Backoff(n int) time.Duration {
	d := float64(rp.InitialDelay)
	for i := 0; i < n && d < float64(rp.MaxDelay); i++ {
		d *= rp.Multiplier
	}
	d = min(d, float64(rp.MaxDelay))
	if rp.Jitter > 0 {
		d += d * rp.Jitter * (2*rand.Float64() - 1) //nolint:gosec // jitter only
	}
	return time.Duration(d)
}

// RetryAfter returns the wait a server asked for, if err carries one.
func RetryAfter(err error) (time.Duration, bool) {
	var e *omerrors.Error
	if !errors.As(err, &e) || e.Details == nil {
		return 0, false
	}
	d, ok := e.Details[RetryAfterDetail].(time.Duration)
	return d, ok && d > 0
}

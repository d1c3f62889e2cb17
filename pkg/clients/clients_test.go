package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          20 * time.Millisecond,
	}, zaptest.NewLogger(t))

	boom := errors.New("boom")
	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(func() error { return nil })
	assert.True(t, omerrors.IsPropertyServer(err))

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, "closed", cb.Snapshot().State.String())
}

func TestCircuitBreakerTripsOnFailureRate(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 3, Window: 4}, nil)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	snap := cb.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Equal(t, 4, snap.Requests)
	assert.Equal(t, 3, snap.Failures)
	assert.InDelta(t, 0.75, snap.FailureRate, 0.001)
}

func TestCircuitBreakerReportsTransitions(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var seen []string
	cb := NewCircuitBreaker(BreakerConfig{
		Name:             "cocoMDS1",
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          time.Minute,
		Now:              func() time.Time { return now },
		OnStateChange: func(from, to CircuitState) {
			seen = append(seen, from.String()+"->"+to.String())
		},
	}, zaptest.NewLogger(t))

	cb.RecordFailure()
	assert.False(t, cb.Allow())
	assert.Equal(t, now.Add(time.Minute), cb.Snapshot().OpenUntil)

	now = now.Add(time.Minute)
	assert.True(t, cb.Allow())
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow(), "only SuccessThreshold probes are admitted")

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, seen)
}

func TestCircuitBreakerIgnoresCallerErrors(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{
		FailureThreshold: 1,
		ShouldTrip:       func(err error) bool { return !omerrors.IsInvalidParameter(err) },
	}, nil)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return omerrors.InvalidParameter("guid", "unknown") })
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestRetryPolicyRetriesOnlyRetryable(t *testing.T) {
	rp := NewRetryPolicy(3, time.Millisecond, 2*time.Millisecond)

	calls := 0
	err := rp.Execute(context.Background(), func() error {
		calls++
		return omerrors.New(omerrors.ErrorTypeRateLimit, "slow down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, omerrors.IsType(err, omerrors.ErrorTypeRateLimit))

	calls = 0
	err = rp.Execute(context.Background(), func() error {
		calls++
		return omerrors.InvalidParameter("name", "missing")
	})
	assert.Equal(t, 1, calls)
	assert.True(t, omerrors.IsInvalidParameter(err))

	calls = 0
	err = rp.Execute(context.Background(), func() error {
		calls++
		if calls < 2 {
			return omerrors.New(omerrors.ErrorTypeConnection, "reset")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicyDelayIsCapped(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, rp.Backoff(0))
	assert.Equal(t, 2*time.Second, rp.Backoff(1))
	assert.Equal(t, 3*time.Second, rp.Backoff(4))
}

func TestRetryPolicyHonoursRetryAfter(t *testing.T) {
	rp := NewRetryPolicy(2, time.Millisecond, 20*time.Millisecond)
	rp.Jitter = 0

	var waits []time.Duration
	rp.OnRetry = func(attempt int, delay time.Duration, err error) {
		assert.Equal(t, 1, attempt)
		waits = append(waits, delay)
	}
	calls := 0
	err := rp.Execute(context.Background(), func() error {
		calls++
		return omerrors.New(omerrors.ErrorTypeRateLimit, "slow down").
			WithDetail(RetryAfterDetail, time.Hour)
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{20 * time.Millisecond}, waits)

	_, ok := RetryAfter(omerrors.New(omerrors.ErrorTypeRateLimit, "no hint"))
	assert.False(t, ok)
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	rp := NewRetryPolicy(5, time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	rp.OnRetry = func(int, time.Duration, error) { cancel() }

	err := rp.Execute(ctx, func() error {
		return omerrors.New(omerrors.ErrorTypeConnection, "reset")
	})
	assert.True(t, omerrors.IsType(err, omerrors.ErrorTypeTimeout))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	unlimited := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(context.Background()))
	}
	stats := unlimited.GetStats()
	assert.Equal(t, int64(100), stats.AllowedRequests)
}

func TestHTTPClientSendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := DefaultHTTPConfig()
	cfg.BearerToken = "secret"
	client := NewHTTPClient(context.Background(), cfg, zaptest.NewLogger(t))

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "Bearer secret", got)
}

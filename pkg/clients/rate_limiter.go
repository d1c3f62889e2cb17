package clients

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket limiter with request statistics.
// A zero or negative rate disables limiting.
type RateLimiter struct {
	limiter *rate.Limiter

	allowedRequests int64
	blockedRequests int64
	totalWaitTime   int64
}

// RateLimiterStats provides statistics about rate limiter behaviour.
type RateLimiterStats struct {
	Rate            float64       `json:"rate"`
	Burst           int           `json:"burst"`
	AllowedRequests int64         `json:"allowed_requests"`
	BlockedRequests int64         `json:"blocked_requests"`
	AverageWaitTime time.Duration `json:"average_wait_time"`
}

// NewRateLimiter creates a limiter allowing perSecond requests per second
// with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Allow reports whether a request may proceed now.
func (rl *RateLimiter) Allow() bool {
	if rl.limiter.Allow() {
		atomic.AddInt64(&rl.allowedRequests, 1)
		return true
	}
	atomic.AddInt64(&rl.blockedRequests, 1)
	return false
}

// Wait blocks until a request may proceed or ctx ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := rl.limiter.Wait(ctx); err != nil {
		atomic.AddInt64(&rl.blockedRequests, 1)
		return err
	}
	atomic.AddInt64(&rl.allowedRequests, 1)
	atomic.AddInt64(&rl.totalWaitTime, int64(time.Since(start)))
	return nil
}

// SetRate updates the rate limit
func (rl *RateLimiter) SetRate(perSecond float64) {
	if perSecond <= 0 {
		rl.limiter.SetLimit(rate.Inf)
		return
	}
	rl.limiter.SetLimit(rate.Limit(perSecond))
}

// SetBurst updates the burst size
func (rl *RateLimiter) SetBurst(burst int) {
	rl.limiter.SetBurst(burst)
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() RateLimiterStats {
	allowed := atomic.LoadInt64(&rl.allowedRequests)
	var avg time.Duration
	if allowed > 0 {
		avg = time.Duration(atomic.LoadInt64(&rl.totalWaitTime) / allowed)
	}
	return RateLimiterStats{
		Rate:            float64(rl.limiter.Limit()),
		Burst:           rl.limiter.Burst(),
		AllowedRequests: allowed,
		BlockedRequests: atomic.LoadInt64(&rl.blockedRequests),
		AverageWaitTime: avg,
	}
}

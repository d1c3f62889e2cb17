// Package clients provides the resilience primitives used by the remote
// metadata client: a circuit breaker, a rate limiter and a retry policy.
package clients

import (
	"sync"
	"time"

	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned by Execute while the breaker rejects calls.
var ErrCircuitOpen = omerrors.New(omerrors.ErrorTypePropertyServer, "circuit breaker is open")

// CircuitState is the state of a circuit breaker.
type CircuitState int32

const (
	// StateClosed lets every call through
	StateClosed CircuitState = iota
	// StateOpen rejects every call until the open timeout passes
	StateOpen
	// StateHalfOpen lets SuccessThreshold probe calls through
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// Name identifies the guarded server in logs
	Name             string
	FailureThreshold int           // consecutive failures that open the circuit
	SuccessThreshold int           // half-open successes that close it again
	Timeout          time.Duration // how long the circuit stays open
	// Window is the number of recent outcomes used for the failure rate;
	// 0 means 4*FailureThreshold
	Window int
	// ShouldTrip decides whether an error counts as a failure; nil counts
	// every error. Caller mistakes should not open the circuit.
	ShouldTrip func(error) bool
	// OnStateChange is called after every transition, outside the lock.
	OnStateChange func(from, to CircuitState)
	// Now replaces time.Now.
	Now func() time.Time
}

// CircuitBreaker guards calls to a metadata server so a failing server is
// not hammered by every connector call.
type CircuitBreaker struct {
	config BreakerConfig
	logger *zap.Logger

	mu                   sync.Mutex
	state                CircuitState
	changedAt            time.Time
	openUntil            time.Time
	consecutiveFailures  int
	consecutiveSuccesses int
	probes               int

	// ring of recent outcomes, true = failure
	outcomes []bool
	next     int
	filled   bool
}

// BreakerSnapshot is a point-in-time view of a circuit breaker.
type BreakerSnapshot struct {
	State               CircuitState `json:"state"`
	ChangedAt           time.Time    `json:"changed_at"`
	OpenUntil           time.Time    `json:"open_until,omitempty"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	Requests            int          `json:"requests"`
	Failures            int          `json:"failures"`
	FailureRate         float64      `json:"failure_rate"`
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
func NewCircuitBreaker(config BreakerConfig, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Window <= 0 {
		config.Window = 4 * config.FailureThreshold
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &CircuitBreaker{
		config:    config,
		logger:    logger.With(zap.String("component", "circuit_breaker"), zap.String("server", config.Name)),
		state:     StateClosed,
		changedAt: config.Now(),
		outcomes:  make([]bool, config.Window),
	}
}

// Execute runs fn unless the circuit is open, and records its outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.Allow() {
		return ErrCircuitOpen
	}

	err := fn()
	if err != nil && (cb.config.ShouldTrip == nil || cb.config.ShouldTrip(err)) {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return err
}

// Allow reports whether a call may proceed. An open circuit whose timeout
// has passed moves to half-open and admits up to SuccessThreshold probes.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	var from CircuitState
	changed := false
	if cb.state == StateOpen && !cb.config.Now().Before(cb.openUntil) {
		from, changed = cb.transition(StateHalfOpen), true
	}

	allowed := false
	switch cb.state {
	case StateClosed:
		allowed = true
	case StateHalfOpen:
		if cb.probes < cb.config.SuccessThreshold {
			cb.probes++
			allowed = true
		}
	}
	cb.mu.Unlock()

	if changed {
		cb.notify(from, StateHalfOpen)
	}
	return allowed
}

// RecordSuccess records a successful call. Enough half-open successes close
// the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	cb.record(false)
	cb.consecutiveFailures = 0

	var from CircuitState
	changed := false
	if cb.state == StateHalfOpen {
		cb.consecutiveSuccesses++
		if cb.consecutiveSuccesses >= cb.config.SuccessThreshold {
			from, changed = cb.transition(StateClosed), true
		}
	}
	cb.mu.Unlock()

	if changed {
		cb.notify(from, StateClosed)
	}
}

// RecordFailure records a failed call. The circuit opens after
// FailureThreshold consecutive failures, when more than half of a full
// window failed, or on any half-open failure.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	cb.record(true)
	cb.consecutiveFailures++

	trip := false
	switch cb.state {
	case StateClosed:
		_, failures, rate := cb.window()
		trip = cb.consecutiveFailures >= cb.config.FailureThreshold ||
			(cb.filled && failures > 0 && rate > 0.5)
	case StateHalfOpen:
		trip = true
	}

	var from CircuitState
	if trip {
		from = cb.transition(StateOpen)
	}
	failures := cb.consecutiveFailures
	openUntil := cb.openUntil
	cb.mu.Unlock()

	if trip {
		cb.logger.Warn("circuit breaker opened",
			zap.Time("retry_after", openUntil),
			zap.Int("consecutive_failures", failures))
		cb.notify(from, StateOpen)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Snapshot returns the state together with the window statistics.
func (cb *CircuitBreaker) Snapshot() BreakerSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	requests, failures, rate := cb.window()
	return BreakerSnapshot{
		State:               cb.state,
		ChangedAt:           cb.changedAt,
		OpenUntil:           cb.openUntil,
		ConsecutiveFailures: cb.consecutiveFailures,
		Requests:            requests,
		Failures:            failures,
		FailureRate:         rate,
	}
}

// transition must be called with mu held; it returns the previous state.
func (cb *CircuitBreaker) transition(to CircuitState) CircuitState {
	from := cb.state
	now := cb.config.Now()
	cb.state = to
	cb.changedAt = now
	cb.consecutiveSuccesses = 0
	cb.probes = 0

	switch to {
	case StateOpen:
		cb.openUntil = now.Add(cb.config.Timeout)
	case StateHalfOpen:
		cb.consecutiveFailures = 0
	case StateClosed:
		cb.consecutiveFailures = 0
		cb.openUntil = time.Time{}
		cb.resetWindow()
	}
	return from
}

func (cb *CircuitBreaker) notify(from, to CircuitState) {
	if to != StateOpen {
		cb.logger.Info("circuit breaker state changed",
			zap.Stringer("from", from), zap.Stringer("to", to))
	}
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

func (cb *CircuitBreaker) record(failure bool) {
	cb.outcomes[cb.next] = failure
	cb.next = (cb.next + 1) % len(cb.outcomes)
	if cb.next == 0 {
		cb.filled = true
	}
}

func (cb *CircuitBreaker) window() (requests, failures int, rate float64) {
	requests = cb.next
	if cb.filled {
		requests = len(cb.outcomes)
	}
	for i := 0; i < requests; i++ {
		if cb.outcomes[i] {
			failures++
		}
	}
	if requests > 0 {
		rate = float64(failures) / float64(requests)
	}
	return requests, failures, rate
}

func (cb *CircuitBreaker) resetWindow() {
	for i := range cb.outcomes {
		cb.outcomes[i] = false
	}
	cb.next = 0
	cb.filled = false
}

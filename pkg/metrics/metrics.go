// Package metrics provides Prometheus collectors for metactx.
//
// # Overview
//
// Every connector context client call, report event, remote request and
// repository write is counted and timed:
//
//	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
//
//	timer := metrics.NewTimer("create")
//	guid, err := handler.Create(ctx, ...)
//	collector.ObserveCall("GlossaryTerm", "create", timer.Stop(), err)
//
// # Metric Types
//
// Counter: monotonically increasing values (e.g. client calls)
// Gauge: values that can go up or down (e.g. elements in the current report)
// Histogram: distribution of values (e.g. call latency)
//
// Collectors are registered with the supplied Registerer so tests can use a
// private prometheus.Registry.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "metactx"

// Collector holds the metactx Prometheus collectors.
type Collector struct {
	clientCalls      *prometheus.CounterVec   // Calls by entity kind, operation and outcome
	clientLatency    *prometheus.HistogramVec // Call latency distribution
	reportEvents     *prometheus.CounterVec   // Integration report events
	reportedElements *prometheus.GaugeVec     // Elements listed in the open recording
	remoteRequests   *prometheus.CounterVec   // HTTP requests to a metadata server
	repositoryWrites *prometheus.CounterVec   // Repository writes by operation
	published        *prometheus.CounterVec   // Events handed to a publisher
	breakerState     *prometheus.GaugeVec     // Remote circuit breaker state
}

var (
	defaultOnce      sync.Once
	defaultCollector *Collector
)

// Default returns the collector registered with the default registry.
func Default() *Collector {
	defaultOnce.Do(func() {
		defaultCollector = NewCollector(prometheus.DefaultRegisterer)
	})
	return defaultCollector
}

// NewCollector creates and registers the collectors with reg. A nil reg
// creates unregistered collectors.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		clientCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_calls_total",
				Help:      "Total number of connector context client calls",
			},
			[]string{"kind", "operation", "status"},
		),
		clientLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_call_duration_seconds",
				Help:      "Connector context client call latency in seconds",
				Buckets: []float64{
					0.0001, // 100μs - in-memory repository
					0.001,  // 1ms
					0.01,   // 10ms - local database
					0.1,    // 100ms - remote server
					1,      // 1s
					10,     // 10s - template cascades
				},
			},
			[]string{"kind", "operation"},
		),
		reportEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_events_total",
				Help:      "Element events recorded by integration report writers",
			},
			[]string{"event"},
		),
		reportedElements: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "report_elements",
				Help:      "Elements listed in the current integration report recording",
			},
			[]string{"connector", "list"},
		),
		remoteRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_requests_total",
				Help:      "HTTP requests sent to a remote metadata server",
			},
			[]string{"method", "code"},
		),
		repositoryWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "repository_writes_total",
				Help:      "Repository write operations",
			},
			[]string{"operation", "status"},
		),
		published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Element events handed to a publisher",
			},
			[]string{"publisher", "status"},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "remote_circuit_state",
				Help:      "Circuit breaker state per metadata server (0 closed, 1 open, 2 half-open)",
			},
			[]string{"server"},
		),
	}
}

// ObserveCall records one client call.
func (c *Collector) ObserveCall(kind, operation string, duration time.Duration, err error) {
	c.clientCalls.WithLabelValues(kind, operation, Status(err)).Inc()
	c.clientLatency.WithLabelValues(kind, operation).Observe(duration.Seconds())
}

// RecordReportEvent counts a created, updated or deleted report event.
func (c *Collector) RecordReportEvent(event string) {
	c.reportEvents.WithLabelValues(event).Inc()
}

// SetReportedElements sets the size of one list of the open recording.
func (c *Collector) SetReportedElements(connector, list string, n int) {
	c.reportedElements.WithLabelValues(connector, list).Set(float64(n))
}

// RecordRemoteRequest counts an HTTP request by method and status code;
// code 0 means the request never got a response.
func (c *Collector) RecordRemoteRequest(method string, code int) {
	c.remoteRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// RecordRepositoryWrite counts a repository write.
func (c *Collector) RecordRepositoryWrite(operation string, err error) {
	c.repositoryWrites.WithLabelValues(operation, Status(err)).Inc()
}

// SetBreakerState records the circuit breaker state for a server.
func (c *Collector) SetBreakerState(server string, state int) {
	c.breakerState.WithLabelValues(server).Set(float64(state))
}

// RecordPublished counts an event handed to a publisher.
func (c *Collector) RecordPublished(publisher string, err error) {
	c.published.WithLabelValues(publisher, Status(err)).Inc()
}

// Status labels an outcome with the error category, or success.
func Status(err error) string {
	if err == nil {
		return "success"
	}
	return string(omerrors.TypeOf(err))
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the name the timer was created with.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called
// multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// Package events publishes element events: creations, updates and
// deletions reported by connector context clients, and integration report
// publication.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metrics"
	"go.uber.org/zap"
)

// Kind is the kind of an element event.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
	KindReport  Kind = "report"
)

// Event describes one change made by a connector.
type Event struct {
	Kind      Kind           `json:"kind"`
	GUID      string         `json:"guid"`
	TypeName  string         `json:"typeName,omitempty"`
	Connector string         `json:"connector,omitempty"`
	Time      time.Time      `json:"time"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Publisher delivers events.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogPublisher writes events to a zap logger.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger.With(zap.String("component", "event_log"))}
}

func (p *LogPublisher) Name() string { return "log" }

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info("Element event",
		zap.String("kind", string(event.Kind)),
		zap.String("guid", event.GUID),
		zap.String("type", event.TypeName),
		zap.String("connector", event.Connector),
		zap.Time("time", event.Time))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// MultiPublisher fans events out to several publishers. Every publisher
// sees every event; failures are joined.
type MultiPublisher struct {
	publishers []Publisher
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// NewMultiPublisher creates a MultiPublisher. collector may be nil.
func NewMultiPublisher(collector *metrics.Collector, logger *zap.Logger, publishers ...Publisher) *MultiPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MultiPublisher{
		publishers: publishers,
		metrics:    collector,
		logger:     logger.With(zap.String("component", "event_publisher")),
	}
}

func (m *MultiPublisher) Name() string { return "multi" }

// Add appends a publisher.
func (m *MultiPublisher) Add(p Publisher) {
	m.publishers = append(m.publishers, p)
}

// Publish hands the event to every publisher.
func (m *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m.publishers {
		err := p.Publish(ctx, event)
		if m.metrics != nil {
			m.metrics.RecordPublished(p.Name(), err)
		}
		if err != nil {
			m.logger.Warn("Failed to publish element event",
				zap.String("publisher", p.Name()),
				zap.String("guid", event.GUID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher.
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

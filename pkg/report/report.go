// Package report records the elements an integration connector changes
// during a refresh and publishes the summary as an IntegrationReport
// element.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/ajitpratap0/metactx/pkg/audit"
	"github.com/ajitpratap0/metactx/pkg/events"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntegrationReportWriter is told about every element a connector changes.
// Empty GUIDs are ignored.
type IntegrationReportWriter interface {
	ReportElementCreation(guid string)
	ReportElementUpdate(guid string)
	ReportElementDelete(guid string)
}

// Config identifies the connector the reports describe.
type Config struct {
	ServerName    string
	ConnectorID   string
	ConnectorName string
	// ConnectorGUID links published reports to the connector element
	ConnectorGUID string
	UserID        string
	Source        metadata.MetadataSourceOptions
}

// Report is the content of one recording.
type Report struct {
	ServerName      string    `json:"serverName"`
	ConnectorID     string    `json:"connectorId"`
	ConnectorName   string    `json:"connectorName"`
	RefreshPhase    string    `json:"refreshPhase"`
	StartDate       time.Time `json:"startDate"`
	CompletionDate  time.Time `json:"completionDate"`
	CreatedElements []string  `json:"createdElements"`
	UpdatedElements []string  `json:"updatedElements"`
	DeletedElements []string  `json:"deletedElements"`
}

// Option customises a Writer.
type Option func(*Writer)

// WithPublisher notifies p of every reported change and published report.
func WithPublisher(p events.Publisher) Option {
	return func(w *Writer) { w.publisher = p }
}

// WithMetrics counts report events.
func WithMetrics(c *metrics.Collector) Option {
	return func(w *Writer) { w.metrics = c }
}

// WithAudit writes an audit message for every published report.
func WithAudit(l *audit.Log) Option {
	return func(w *Writer) { w.audit = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// Writer is the IntegrationReportWriter used by connector contexts.
type Writer struct {
	client metadata.Client
	cfg    Config

	publisher events.Publisher
	metrics   *metrics.Collector
	audit     *audit.Log
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	phase   string
	start   time.Time
	created []string
	updated []string
	deleted []string
	// listed tracks which list holds each GUID
	listed map[string]events.Kind
}

var _ IntegrationReportWriter = (*Writer)(nil)

// NewWriter creates a writer and starts an unnamed recording.
func NewWriter(client metadata.Client, cfg Config, logger *zap.Logger, opts ...Option) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Writer{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "report_writer"), zap.String("connector", cfg.ConnectorName)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.StartRecording("")
	return w
}

// SetConnectorGUID sets the connector element reports are linked to.
func (w *Writer) SetConnectorGUID(guid string) {
	w.mu.Lock()
	w.cfg.ConnectorGUID = guid
	w.mu.Unlock()
}

// StartRecording discards the current lists and starts a recording for
// the refresh phase.
func (w *Writer) StartRecording(phase string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset(phase)
}

func (w *Writer) reset(phase string) {
	w.phase = phase
	w.start = w.now().UTC()
	w.created = nil
	w.updated = nil
	w.deleted = nil
	w.listed = make(map[string]events.Kind)
	w.gauge()
}

// ReportElementCreation lists a created element once.
func (w *Writer) ReportElementCreation(guid string) {
	if guid == "" {
		return
	}
	w.mu.Lock()
	if _, ok := w.listed[guid]; !ok {
		w.created = append(w.created, guid)
		w.listed[guid] = events.KindCreated
	}
	w.gauge()
	w.mu.Unlock()
	w.notify(events.KindCreated, guid)
}

// ReportElementUpdate lists an updated element unless it was created or
// already listed in this recording.
func (w *Writer) ReportElementUpdate(guid string) {
	if guid == "" {
		return
	}
	w.mu.Lock()
	if _, ok := w.listed[guid]; !ok {
		w.updated = append(w.updated, guid)
		w.listed[guid] = events.KindUpdated
	}
	w.gauge()
	w.mu.Unlock()
	w.notify(events.KindUpdated, guid)
}

// ReportElementDelete moves the element to the deleted list.
func (w *Writer) ReportElementDelete(guid string) {
	if guid == "" {
		return
	}
	w.mu.Lock()
	switch w.listed[guid] {
	case events.KindDeleted:
	case events.KindCreated:
		w.created = remove(w.created, guid)
		w.deleted = append(w.deleted, guid)
	case events.KindUpdated:
		w.updated = remove(w.updated, guid)
		w.deleted = append(w.deleted, guid)
	default:
		w.deleted = append(w.deleted, guid)
	}
	w.listed[guid] = events.KindDeleted
	w.gauge()
	w.mu.Unlock()
	w.notify(events.KindDeleted, guid)
}

// Report returns the current recording.
func (w *Writer) Report() Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Writer) snapshot() Report {
	return Report{
		ServerName:      w.cfg.ServerName,
		ConnectorID:     w.cfg.ConnectorID,
		ConnectorName:   w.cfg.ConnectorName,
		RefreshPhase:    w.phase,
		StartDate:       w.start,
		CompletionDate:  w.now().UTC(),
		CreatedElements: append([]string(nil), w.created...),
		UpdatedElements: append([]string(nil), w.updated...),
		DeletedElements: append([]string(nil), w.deleted...),
	}
}

// Publish stores the recording as an IntegrationReport, links it to the
// connector element when its GUID is known and starts a new recording for
// the same phase. It returns the report's GUID.
func (w *Writer) Publish(ctx context.Context) (string, error) {
	if w.client == nil {
		return "", omerrors.New(omerrors.ErrorTypeConfig, "report writer has no metadata client")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	r := w.snapshot()
	opts := metadata.NewElementOptions{MetadataSourceOptions: w.cfg.Source, IsOwnAnchor: true}
	if w.cfg.ConnectorGUID != "" {
		opts.ParentGUID = w.cfg.ConnectorGUID
		opts.ParentRelationshipTypeName = typedefs.RelatedIntegrationReport
		opts.ParentAtEnd1 = true
	}
	guid, err := w.client.CreateElement(ctx, w.cfg.UserID, typedefs.IntegrationReport, opts, r.properties())
	if err != nil {
		return "", err
	}

	if w.audit != nil {
		w.audit.Log(audit.ReportPublished, w.cfg.ConnectorName, guid, r.RefreshPhase,
			len(r.CreatedElements), len(r.UpdatedElements), len(r.DeletedElements))
	}
	if w.metrics != nil {
		w.metrics.RecordReportEvent(string(events.KindReport))
	}
	w.publish(events.Event{
		Kind:      events.KindReport,
		GUID:      guid,
		TypeName:  typedefs.IntegrationReport,
		Connector: w.cfg.ConnectorName,
		Time:      r.CompletionDate,
		Payload: map[string]any{
			"refreshPhase":    r.RefreshPhase,
			"createdElements": len(r.CreatedElements),
			"updatedElements": len(r.UpdatedElements),
			"deletedElements": len(r.DeletedElements),
		},
	})

	w.reset(w.phase)
	return guid, nil
}

func (r Report) properties() metadata.Properties {
	return metadata.Properties{
		"qualifiedName":   "IntegrationReport::" + r.ConnectorName + "::" + r.StartDate.Format(time.RFC3339Nano) + "::" + uuid.NewString(),
		"serverName":      r.ServerName,
		"connectorId":     r.ConnectorID,
		"connectorName":   r.ConnectorName,
		"refreshPhase":    r.RefreshPhase,
		"startDate":       r.StartDate.Format(time.RFC3339Nano),
		"completionDate":  r.CompletionDate.Format(time.RFC3339Nano),
		"createdElements": r.CreatedElements,
		"updatedElements": r.UpdatedElements,
		"deletedElements": r.DeletedElements,
	}
}

func (w *Writer) notify(kind events.Kind, guid string) {
	if w.metrics != nil {
		w.metrics.RecordReportEvent(string(kind))
	}
	w.publish(events.Event{
		Kind:      kind,
		GUID:      guid,
		Connector: w.cfg.ConnectorName,
		Time:      w.now().UTC(),
	})
}

func (w *Writer) publish(e events.Event) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.Publish(context.Background(), e); err != nil {
		w.logger.Warn("Failed to publish report event",
			zap.String("kind", string(e.Kind)),
			zap.String("guid", e.GUID),
			zap.Error(err))
	}
}

// gauge updates the list sizes; callers hold mu.
func (w *Writer) gauge() {
	if w.metrics == nil {
		return
	}
	w.metrics.SetReportedElements(w.cfg.ConnectorName, "created", len(w.created))
	w.metrics.SetReportedElements(w.cfg.ConnectorName, "updated", len(w.updated))
	w.metrics.SetReportedElements(w.cfg.ConnectorName, "deleted", len(w.deleted))
}

func remove(list []string, guid string) []string {
	for i, g := range list {
		if g == guid {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

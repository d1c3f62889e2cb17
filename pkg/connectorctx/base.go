// Package connectorctx gives integration connectors typed clients for the
// metadata kinds they maintain.
//
// # Overview
//
// A ConnectorContext is created once per connector. It holds the identity
// the connector acts as, its external metadata source and a set of
// defaults that are forwarded on every call:
//   - effective time, lineage and duplicate-processing visibility
//   - result sequencing and the maximum page size
//   - the delete method
//
// Each kind (ActorProfile, Glossary, Project, ...) has its own client. All
// of them share the generic EntityClient, which delegates to a
// handler.Handler over the connector's metadata.Client, traces and times
// every call and tells the integration report writer which elements the
// connector created, updated or deleted.
//
// # Usage
//
//	ctx, err := connectorctx.New(client, cfg.Context, logger,
//	    connectorctx.WithReportWriter(writer))
//	guid, err := ctx.Glossaries().Create(c, connectorctx.GlossaryProperties{
//	    ReferenceableProperties: connectorctx.ReferenceableProperties{QualifiedName: "Glossary::Sales"},
//	    DisplayName:             "Sales",
//	})
//
// Clients never recover errors: invalid_parameter, property_server and
// user_not_authorized errors from the metadata client are returned as they
// were received.
package connectorctx

import (
	"context"
	"sync"
	"time"

	"github.com/ajitpratap0/metactx/pkg/audit"
	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/observability"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/report"
	"go.uber.org/zap"
)

// Option customises a ClientBase.
type Option func(*ClientBase)

// WithReportWriter reports every created, updated and deleted element.
func WithReportWriter(w report.IntegrationReportWriter) Option {
	return func(b *ClientBase) { b.reports = w }
}

// WithAudit replaces the audit log.
func WithAudit(l *audit.Log) Option {
	return func(b *ClientBase) { b.audit = l }
}

// WithMetrics replaces the default metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(b *ClientBase) { b.metrics = c }
}

// WithTracer replaces the tracer.
func WithTracer(t *observability.ClientTracer) Option {
	return func(b *ClientBase) { b.tracer = t }
}

// ClientBase holds what every client of a connector context shares.
type ClientBase struct {
	client        metadata.Client
	userID        string
	connectorName string
	connectorGUID string
	sourceGUID    string
	sourceName    string

	reports report.IntegrationReportWriter
	audit   *audit.Log
	tracer  *observability.ClientTracer
	metrics *metrics.Collector
	logger  *zap.Logger

	// Defaults, set once per context and read on every call
	mu                     sync.RWMutex
	effectiveTime          *time.Time
	forLineage             bool
	forDuplicateProcessing bool
	sequencingOrder        metadata.SequencingOrder
	sequencingProperty     string
	deleteMethod           metadata.DeleteMethod
	maxPageSize            int
}

// NewClientBase creates the shared state of a connector context.
func NewClientBase(client metadata.Client, cfg config.ContextConfig, logger *zap.Logger, opts ...Option) (*ClientBase, error) {
	if client == nil {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "a connector context needs a metadata client")
	}
	if cfg.UserID == "" {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "a connector context needs a user id")
	}
	order, err := metadata.ParseSequencingOrder(cfg.SequencingOrder)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConfig, "invalid sequencing order")
	}
	method, err := metadata.ParseDeleteMethod(cfg.DeleteMethod)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConfig, "invalid delete method")
	}
	if cfg.PageSize < 0 {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "page size must not be negative")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &ClientBase{
		client:                 client,
		userID:                 cfg.UserID,
		connectorName:          cfg.ConnectorName,
		connectorGUID:          cfg.ConnectorGUID,
		sourceGUID:             cfg.ExternalSourceGUID,
		sourceName:             cfg.ExternalSourceName,
		logger:                 logger.With(zap.String("component", "connector_context"), zap.String("connector", cfg.ConnectorName)),
		forLineage:             cfg.ForLineage,
		forDuplicateProcessing: cfg.ForDuplicateProcessing,
		sequencingOrder:        order,
		sequencingProperty:     cfg.SequencingProperty,
		deleteMethod:           method,
		maxPageSize:            cfg.PageSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.audit == nil {
		b.audit = audit.New("connector_context", logger)
	}
	if b.tracer == nil {
		b.tracer = observability.NewClientTracer(cfg.ConnectorName)
	}
	if b.metrics == nil {
		b.metrics = metrics.Default()
	}
	return b, nil
}

// Client returns the metadata client.
func (b *ClientBase) Client() metadata.Client { return b.client }

// UserID returns the user the connector acts as.
func (b *ClientBase) UserID() string { return b.userID }

// ConnectorName returns the connector's name.
func (b *ClientBase) ConnectorName() string { return b.connectorName }

// ConnectorGUID returns the GUID of the connector's element, if known.
func (b *ClientBase) ConnectorGUID() string { return b.connectorGUID }

// ReportWriter returns the integration report writer, or nil.
func (b *ClientBase) ReportWriter() report.IntegrationReportWriter { return b.reports }

// Logger returns the context's logger.
func (b *ClientBase) Logger() *zap.Logger { return b.logger }

// SetEffectiveTime sets the time requests are evaluated at; nil means any
// time.
func (b *ClientBase) SetEffectiveTime(t *time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t == nil {
		b.effectiveTime = nil
		return
	}
	at := *t
	b.effectiveTime = &at
}

// EffectiveTime returns the default effective time.
func (b *ClientBase) EffectiveTime() *time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.effectiveTime == nil {
		return nil
	}
	at := *b.effectiveTime
	return &at
}

// SetForLineage makes archived elements visible.
func (b *ClientBase) SetForLineage(v bool) {
	b.mu.Lock()
	b.forLineage = v
	b.mu.Unlock()
}

// ForLineage reports whether archived elements are visible.
func (b *ClientBase) ForLineage() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.forLineage
}

// SetForDuplicateProcessing makes known duplicates visible.
func (b *ClientBase) SetForDuplicateProcessing(v bool) {
	b.mu.Lock()
	b.forDuplicateProcessing = v
	b.mu.Unlock()
}

// ForDuplicateProcessing reports whether known duplicates are visible.
func (b *ClientBase) ForDuplicateProcessing() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.forDuplicateProcessing
}

// SetSequencing sets the order of query results. property is used by the
// property orders only.
func (b *ClientBase) SetSequencing(order metadata.SequencingOrder, property string) {
	b.mu.Lock()
	b.sequencingOrder = order
	b.sequencingProperty = property
	b.mu.Unlock()
}

// Sequencing returns the order of query results.
func (b *ClientBase) Sequencing() (metadata.SequencingOrder, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sequencingOrder, b.sequencingProperty
}

// SetDeleteMethod sets how elements are removed.
func (b *ClientBase) SetDeleteMethod(m metadata.DeleteMethod) {
	b.mu.Lock()
	b.deleteMethod = m
	b.mu.Unlock()
}

// DeleteMethod returns how elements are removed.
func (b *ClientBase) DeleteMethod() metadata.DeleteMethod {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.deleteMethod
}

// SetMaxPageSize caps the page size of queries; 0 leaves it to the
// metadata store.
func (b *ClientBase) SetMaxPageSize(n int) {
	b.mu.Lock()
	b.maxPageSize = n
	b.mu.Unlock()
}

// MaxPageSize returns the page size cap.
func (b *ClientBase) MaxPageSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.maxPageSize
}

// MetadataSourceOptions identifies the connector's external source.
func (b *ClientBase) MetadataSourceOptions() metadata.MetadataSourceOptions {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sourceOptionsLocked()
}

func (b *ClientBase) sourceOptionsLocked() metadata.MetadataSourceOptions {
	return metadata.MetadataSourceOptions{
		ExternalSourceGUID:     b.sourceGUID,
		ExternalSourceName:     b.sourceName,
		EffectiveTime:          copyTime(b.effectiveTime),
		ForLineage:             b.forLineage,
		ForDuplicateProcessing: b.forDuplicateProcessing,
	}
}

// QueryOptions applies the defaults to a page request. A page size of 0,
// or one above the cap, is replaced by the cap.
func (b *ClientBase) QueryOptions(startFrom, pageSize int) metadata.QueryOptions {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.maxPageSize > 0 && (pageSize == 0 || pageSize > b.maxPageSize) {
		pageSize = b.maxPageSize
	}
	return metadata.QueryOptions{
		EffectiveTime:          copyTime(b.effectiveTime),
		ForLineage:             b.forLineage,
		ForDuplicateProcessing: b.forDuplicateProcessing,
		StartFrom:              startFrom,
		PageSize:               pageSize,
		SequencingOrder:        b.sequencingOrder,
		SequencingProperty:     b.sequencingProperty,
	}
}

// SearchOptions applies the defaults to a search.
func (b *ClientBase) SearchOptions(startFrom, pageSize int) metadata.SearchOptions {
	return metadata.SearchOptions{QueryOptions: b.QueryOptions(startFrom, pageSize)}
}

// NewElementOptions applies the defaults to a create request.
func (b *ClientBase) NewElementOptions() metadata.NewElementOptions {
	return metadata.NewElementOptions{MetadataSourceOptions: b.MetadataSourceOptions()}
}

// TemplateOptions applies the defaults to a create-from-template request.
func (b *ClientBase) TemplateOptions() metadata.TemplateOptions {
	return metadata.TemplateOptions{NewElementOptions: b.NewElementOptions()}
}

// UpdateOptions applies the defaults to an update.
func (b *ClientBase) UpdateOptions(merge bool) metadata.UpdateOptions {
	return metadata.UpdateOptions{MetadataSourceOptions: b.MetadataSourceOptions(), MergeUpdate: merge}
}

// DeleteOptions applies the defaults to a delete.
func (b *ClientBase) DeleteOptions(cascade bool) metadata.DeleteOptions {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return metadata.DeleteOptions{
		MetadataSourceOptions: b.sourceOptionsLocked(),
		Cascade:               cascade,
		DeleteMethod:          b.deleteMethod,
	}
}

// call runs one client operation inside a span, times it and audits a
// failure. The error is returned unchanged.
func (b *ClientBase) call(ctx context.Context, kind, operation string, fn func(ctx context.Context) error) error {
	timer := metrics.NewTimer(kind + "." + operation)
	err := b.tracer.Trace(ctx, kind, operation, fn)
	b.metrics.ObserveCall(kind, operation, timer.Stop(), err)
	if err != nil {
		b.audit.LogError(audit.ClientCallFailed, err, b.connectorName, kind+" handler", operation, err.Error())
	}
	return err
}

func (b *ClientBase) reportCreation(guid string) {
	if b.reports != nil && guid != "" {
		b.reports.ReportElementCreation(guid)
	}
}

func (b *ClientBase) reportUpdate(guid string) {
	if b.reports != nil && guid != "" {
		b.reports.ReportElementUpdate(guid)
	}
}

func (b *ClientBase) reportDelete(guid string) {
	if b.reports != nil && guid != "" {
		b.reports.ReportElementDelete(guid)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Property accessors for elements retrieved without a typed client.

// QualifiedName returns the element's qualifiedName property.
func QualifiedName(e *metadata.Element) string {
	if e == nil {
		return ""
	}
	return e.Properties.GetString("qualifiedName")
}

// DisplayName returns the first of displayName, name and qualifiedName that
// is set.
func DisplayName(e *metadata.Element) string {
	if e == nil {
		return ""
	}
	for _, p := range []string{"displayName", "name", "qualifiedName"} {
		if v := e.Properties.GetString(p); v != "" {
			return v
		}
	}
	return ""
}

// AdditionalProperties returns the element's additionalProperties map.
func AdditionalProperties(e *metadata.Element) map[string]string {
	if e == nil {
		return nil
	}
	return e.Properties.GetMap("additionalProperties")
}

// Description returns the element's description property.
func Description(e *metadata.Element) string {
	if e == nil {
		return ""
	}
	return e.Properties.GetString("description")
}

// Package observability provides OpenTelemetry tracing for metactx.
package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ajitpratap0/metactx/pkg/logger"
)

const instrumentationName = "github.com/ajitpratap0/metactx"

// Tracer returns the tracer of the current global provider. Before Init it
// is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Meter returns the meter of the current global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// ClientTracer traces the calls of one connector's metadata clients.
type ClientTracer struct {
	connectorName string
	calls         metric.Int64Counter
}

// NewClientTracer creates a tracer for the named connector.
func NewClientTracer(connectorName string) *ClientTracer {
	// the no-op meter never fails; a real provider only fails on a bad name
	calls, _ := Meter().Int64Counter("metactx.client.calls",
		metric.WithDescription("Connector context client calls"))
	return &ClientTracer{connectorName: connectorName, calls: calls}
}

// Trace runs fn inside a span named <kind>.<operation> and records its
// outcome on the span and the call counter.
func (ct *ClientTracer) Trace(ctx context.Context, kind, operation string, fn func(ctx context.Context) error) error {
	attrs := append(requestAttributes(ctx),
		attribute.String("connector.name", ct.connectorName),
		attribute.String("metadata.kind", kind),
		attribute.String("metadata.operation", operation),
	)
	ctx, span := Tracer().Start(ctx, kind+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
	defer span.End()

	err := fn(ctx)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if ct.calls != nil {
		ct.calls.Add(ctx, 1, metric.WithAttributes(
			attribute.String("connector", ct.connectorName),
			attribute.String("kind", kind),
			attribute.String("operation", operation),
			attribute.String("status", status),
		))
	}
	return err
}

// requestAttributes copies the request values set by the logger package.
func requestAttributes(ctx context.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if id := logger.RequestID(ctx); id != "" {
		attrs = append(attrs, attribute.String("request.id", id))
	}
	if user, ok := ctx.Value(logger.UserIDKey).(string); ok && user != "" {
		attrs = append(attrs, attribute.String("enduser.id", user))
	}
	return attrs
}

// InjectHeaders writes the trace context of ctx into outgoing headers.
func InjectHeaders(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// TracingMiddleware starts a server span per request, continuing any trace
// propagated by a remote client, and records the response status.
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := Tracer().Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
					attribute.String("service.name", serviceName),
				))
			defer span.End()
			if id := r.Header.Get(logger.RequestIDHeader); id != "" {
				span.SetAttributes(attribute.String("request.id", id))
			}

			otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", rec.status))
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
		})
	}
}

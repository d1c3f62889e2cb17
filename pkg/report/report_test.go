package report

import (
	"context"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/events"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/repository"
	"github.com/ajitpratap0/metactx/pkg/storage/memory"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type capture struct {
	events []events.Event
}

func (c *capture) Name() string { return "capture" }
func (c *capture) Publish(_ context.Context, e events.Event) error {
	c.events = append(c.events, e)
	return nil
}
func (c *capture) Close() error { return nil }

func TestRecordingLists(t *testing.T) {
	sink := &capture{}
	w := NewWriter(nil, Config{ConnectorName: "crm"}, zaptest.NewLogger(t), WithPublisher(sink))
	w.StartRecording("refresh")

	w.ReportElementCreation("a")
	w.ReportElementCreation("a")
	w.ReportElementUpdate("a")
	w.ReportElementUpdate("b")
	w.ReportElementUpdate("b")
	w.ReportElementCreation("c")
	w.ReportElementDelete("c")
	w.ReportElementDelete("b")
	w.ReportElementDelete("d")
	w.ReportElementDelete("d")
	w.ReportElementCreation("")

	r := w.Report()
	assert.Equal(t, "refresh", r.RefreshPhase)
	assert.Equal(t, []string{"a"}, r.CreatedElements)
	assert.Empty(t, r.UpdatedElements)
	assert.Equal(t, []string{"c", "b", "d"}, r.DeletedElements)
	assert.Len(t, sink.events, 10)

	w.StartRecording("second")
	r = w.Report()
	assert.Empty(t, r.CreatedElements)
	assert.Empty(t, r.DeletedElements)
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.New(), repository.Config{}, zaptest.NewLogger(t))
	connector, err := repo.CreateElement(ctx, "daemon", typedefs.IntegrationConnector, metadata.NewElementOptions{},
		metadata.Properties{"qualifiedName": "Connector::crm"})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	sink := &capture{}
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	w := NewWriter(repo, Config{
		ServerName:    "metactx",
		ConnectorID:   "crm-1",
		ConnectorName: "crm",
		ConnectorGUID: connector,
		UserID:        "daemon",
	}, zaptest.NewLogger(t),
		WithPublisher(sink),
		WithMetrics(metrics.NewCollector(reg)),
		WithClock(func() time.Time { return start }))

	w.StartRecording("startup")
	w.ReportElementCreation("x")
	w.ReportElementUpdate("y")

	guid, err := w.Publish(ctx)
	require.NoError(t, err)

	e, err := repo.GetElementByGUID(ctx, "daemon", guid, metadata.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, typedefs.IntegrationReport, e.TypeName())
	assert.Equal(t, "startup", e.Properties.GetString("refreshPhase"))
	assert.Equal(t, []string{"x"}, e.Properties.GetStrings("createdElements"))
	assert.Equal(t, []string{"y"}, e.Properties.GetStrings("updatedElements"))
	assert.Equal(t, "crm-1", e.Properties.GetString("connectorId"))

	related, err := repo.GetRelatedElements(ctx, "daemon", connector, typedefs.RelatedIntegrationReport, metadata.End1, metadata.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, guid, related[0].Element.Header.GUID)

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, events.KindReport, last.Kind)
	assert.Equal(t, guid, last.GUID)

	assert.Empty(t, w.Report().CreatedElements)
	assert.Equal(t, "startup", w.Report().RefreshPhase)
	assert.Equal(t, 3, testutil.CollectAndCount(reg, "metactx_report_events_total"))
}

package events

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSaramaConfig(t *testing.T) {
	tests := []struct {
		acks, compression string
		wantAcks          sarama.RequiredAcks
		wantCompression   sarama.CompressionCodec
	}{
		{"all", "none", sarama.WaitForAll, sarama.CompressionNone},
		{"1", "gzip", sarama.WaitForLocal, sarama.CompressionGZIP},
		{"0", "lz4", sarama.NoResponse, sarama.CompressionLZ4},
		{"", "zstd", sarama.WaitForAll, sarama.CompressionZSTD},
	}
	for _, tt := range tests {
		sc := SaramaConfig(config.EventsConfig{Acks: tt.acks, Compression: tt.compression, ClientID: "metactx"})
		assert.Equal(t, tt.wantAcks, sc.Producer.RequiredAcks)
		assert.Equal(t, tt.wantCompression, sc.Producer.Compression)
		assert.True(t, sc.Producer.Return.Successes)
		assert.Equal(t, "metactx", sc.ClientID)
	}
}

func TestKafkaPublisher(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var e Event
		if err := json.Unmarshal(value, &e); err != nil {
			return err
		}
		if e.GUID != "guid-1" || e.Kind != KindCreated {
			return errors.New("unexpected event")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "metactx.elements", zaptest.NewLogger(t))
	require.NoError(t, p.Publish(context.Background(), Event{Kind: KindCreated, GUID: "guid-1", TypeName: "Glossary"}))
	assert.Error(t, p.Publish(context.Background(), Event{Kind: KindDeleted, GUID: "guid-2"}))
	require.NoError(t, p.Close())
}

type recordingPublisher struct {
	name   string
	events []Event
	err    error
}

func (r *recordingPublisher) Name() string { return r.name }
func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}
func (r *recordingPublisher) Close() error { return nil }

func TestMultiPublisher(t *testing.T) {
	reg := prometheus.NewRegistry()
	ok := &recordingPublisher{name: "ok"}
	failing := &recordingPublisher{name: "failing", err: errors.New("down")}

	m := NewMultiPublisher(metrics.NewCollector(reg), zaptest.NewLogger(t), ok, NewLogPublisher(zaptest.NewLogger(t)))
	m.Add(failing)

	err := m.Publish(context.Background(), Event{Kind: KindUpdated, GUID: "g"})
	assert.Error(t, err)
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)
	assert.Equal(t, 3, testutil.CollectAndCount(reg, "metactx_events_published_total"))
	assert.NoError(t, m.Close())
}

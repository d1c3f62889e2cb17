package events

import (
	"context"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/json"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"go.uber.org/zap"
)

// KafkaPublisher sends events to a Kafka topic, keyed by element GUID so
// that events for one element stay ordered.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaPublisher connects a synchronous producer to the brokers.
func NewKafkaPublisher(cfg config.EventsConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "no Kafka brokers configured")
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, SaramaConfig(cfg))
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to create Kafka producer")
	}
	p := NewKafkaPublisherWithProducer(producer, cfg.Topic, logger)
	p.logger.Info("Connected to Kafka",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic))
	return p, nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With(zap.String("component", "kafka_publisher")),
	}
}

// SaramaConfig maps the events configuration onto a producer config.
func SaramaConfig(cfg config.EventsConfig) *sarama.Config {
	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}

	switch strings.ToLower(cfg.Acks) {
	case "all", "-1":
		sc.Producer.RequiredAcks = sarama.WaitForAll
	case "1":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	case "0":
		sc.Producer.RequiredAcks = sarama.NoResponse
	default:
		sc.Producer.RequiredAcks = sarama.WaitForAll
	}

	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Retry.Max = 3

	switch strings.ToLower(cfg.Compression) {
	case "gzip":
		sc.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		sc.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		sc.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		sc.Producer.Compression = sarama.CompressionZSTD
		sc.Version = sarama.V2_1_0_0
	default:
		sc.Producer.Compression = sarama.CompressionNone
	}
	return sc
}

func (p *KafkaPublisher) Name() string { return "kafka" }

// Publish sends one event and waits for the broker acknowledgement.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeTimeout, "event publication cancelled")
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to encode event")
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.GUID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(event.Kind)},
			{Key: []byte("type"), Value: []byte(event.TypeName)},
			{Key: []byte("connector"), Value: []byte(event.Connector)},
			{Key: []byte("content-type"), Value: []byte("application/json")},
		},
		Timestamp: event.Time,
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to send event")
	}
	p.logger.Debug("Sent element event",
		zap.String("guid", event.GUID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close closes the producer.
func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to close Kafka producer")
	}
	return nil
}

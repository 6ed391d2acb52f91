package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"order_backend/internal/config"
	domain "order_backend/internal/domain/order"
	"order_backend/internal/infrastructure/encoding/avro"
	"order_backend/pkg/logger"
)

const headerEventType = "event_type"

// recordProducer is the part of *kgo.Client the producer uses.
type recordProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// OrderEventProducer publishes Avro-encoded order events keyed by order id.
type OrderEventProducer struct {
	client recordProducer
	codec  *avro.OrderEventCodec
	topic  string
	logger logger.Logger
}

func NewOrderEventProducer(cfg config.KafkaConfig, log logger.Logger) (*OrderEventProducer, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log.Info("creating kafka producer",
		logger.Any("brokers", cfg.Brokers),
		logger.String("topic", cfg.OrderTopic),
	)

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.OrderTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	codec, err := avro.NewOrderEventCodec()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &OrderEventProducer{
		client: client,
		codec:  codec,
		topic:  cfg.OrderTopic,
		logger: log,
	}, nil
}

func (p *OrderEventProducer) PublishOrderEvent(ctx context.Context, e domain.Event) error {
	if p.codec == nil {
		return fmt.Errorf("order event codec is not configured")
	}
	payload, err := p.codec.Encode(e)
	if err != nil {
		return fmt.Errorf("encode order event %s: %w", e.ID, err)
	}
	return p.publish(ctx, strconv.FormatInt(e.OrderID, 10), string(e.Type), payload)
}

func (p *OrderEventProducer) publish(ctx context.Context, key, eventType string, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload is empty")
	}
	if p.client == nil {
		return fmt.Errorf("kafka client is not initialized")
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(key),
		Value:     payload,
		Headers:   []kgo.RecordHeader{{Key: headerEventType, Value: []byte(eventType)}},
		Timestamp: time.Now().UTC(),
	}

	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		p.logger.Error("failed to publish order event",
			logger.String("topic", p.topic),
			logger.String("key", key),
			logger.Int("payload_size", len(payload)),
			logger.Error(err),
		)
		return fmt.Errorf("publish to kafka topic %s: %w", p.topic, err)
	}

	p.logger.Debug("order event published",
		logger.String("topic", p.topic),
		logger.String("key", key),
		logger.String("event_type", eventType),
	)
	return nil
}

func (p *OrderEventProducer) Close(ctx context.Context) error {
	p.logger.Info("Closing Kafka producer", logger.String("topic", p.topic))
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

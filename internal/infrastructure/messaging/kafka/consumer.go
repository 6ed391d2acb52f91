package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"order_backend/internal/config"
	domain "order_backend/internal/domain/order"
	"order_backend/internal/infrastructure/encoding/avro"
	"order_backend/pkg/logger"
)

// EventHandler processes one decoded order event.
type EventHandler interface {
	HandleOrderEvent(ctx context.Context, e domain.Event) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// OrderEventConsumer reads order events and commits each offset only after
// the handler succeeded. Undecodable messages are logged and skipped.
type OrderEventConsumer struct {
	reader  messageReader
	codec   *avro.OrderEventCodec
	handler EventHandler
	logger  logger.Logger
	backoff time.Duration
}

func NewOrderEventConsumer(cfg config.KafkaConfig, handler EventHandler, log logger.Logger) (*OrderEventConsumer, error) {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.ConsumerGroup,
		Topic:          cfg.OrderTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafkago.FirstOffset,
	})
	return newOrderEventConsumer(reader, handler, log)
}

func newOrderEventConsumer(reader messageReader, handler EventHandler, log logger.Logger) (*OrderEventConsumer, error) {
	if log == nil {
		log = logger.NewNop()
	}
	codec, err := avro.NewOrderEventCodec()
	if err != nil {
		return nil, err
	}
	return &OrderEventConsumer{
		reader:  reader,
		codec:   codec,
		handler: handler,
		logger:  log,
		backoff: time.Second,
	}, nil
}

// Start blocks until ctx is cancelled or the reader fails.
func (c *OrderEventConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		e, err := c.codec.Decode(msg.Value)
		if err != nil {
			c.logger.Warn("skipping undecodable order event",
				logger.Int64("offset", msg.Offset),
				logger.Int("partition", msg.Partition),
				logger.Error(err),
			)
		} else if err := c.handleWithRetry(ctx, e); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset: %w", err)
		}
	}
}

// handleWithRetry retries until the handler succeeds or ctx ends, so a
// failed event is never committed.
func (c *OrderEventConsumer) handleWithRetry(ctx context.Context, e domain.Event) error {
	for {
		err := c.handler.HandleOrderEvent(ctx, e)
		if err == nil {
			return nil
		}
		c.logger.Error("failed to handle order event",
			logger.String("event_id", e.ID),
			logger.Int64("order_id", e.OrderID),
			logger.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
}

func (c *OrderEventConsumer) Close() error {
	return c.reader.Close()
}

package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one message. A returned error triggers a bounded
// retry of the same message before its offset is committed.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// ExhaustedHandler receives a message whose retries ran out, with the last
// handler error. Returning nil lets the offset be committed.
type ExhaustedHandler func(ctx context.Context, msg kafkago.Message, cause error) error

// Consumer reads one topic as part of a consumer group.
type Consumer struct {
	reader      *kafkago.Reader
	logger      *zap.Logger
	maxAttempts int
	retryDelay  time.Duration
	onExhausted ExhaustedHandler
}

// NewConsumer creates a Consumer for topic in group groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: kafkago.FirstOffset,
		}),
		logger:      logger,
		maxAttempts: 5,
		retryDelay:  2 * time.Second,
	}
}

// OnExhausted registers fn for messages whose retries ran out. Without one
// such messages are logged and committed.
func (c *Consumer) OnExhausted(fn ExhaustedHandler) {
	c.onExhausted = fn
}

// Consume blocks, handing each message to handler until ctx is cancelled.
// It returns without committing when a message can neither be handled nor
// passed to the exhausted handler, so the message is redelivered on restart.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return context.Canceled
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := c.process(ctx, handler, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// process runs handler with retries. A nil return means the offset may be committed.
func (c *Consumer) process(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	err := c.handleWithRetry(ctx, handler, msg)
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}

	fields := []zap.Field{
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.Error(err),
	}
	if c.onExhausted == nil {
		c.logger.Error("message dropped after retries", fields...)
		return nil
	}
	if fallbackErr := c.onExhausted(ctx, msg, err); fallbackErr != nil {
		c.logger.Error("message not handed off after retries", append(fields, zap.NamedError("fallback_error", fallbackErr))...)
		return fmt.Errorf("message at offset %d not handed off: %w", msg.Offset, errors.Join(err, fallbackErr))
	}
	c.logger.Warn("message handed off after retries", fields...)
	return nil
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		c.logger.Warn("message handler failed",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return context.Canceled
		case <-time.After(c.retryDelay):
		}
	}
	return err
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

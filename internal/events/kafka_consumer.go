package events

import (
	"context"
	"errors"

	"github.com/hearth-catering/service-booking/internal/application"
	"github.com/hearth-catering/service-booking/pkg/domain"
	"github.com/hearth-catering/service-booking/pkg/events"
	"github.com/hearth-catering/service-booking/pkg/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NotificationHandler reconciles relayed gateway notifications.
type NotificationHandler interface {
	HandleRelayed(ctx context.Context, signature string, body []byte) (*application.Outcome, error)
	ParkUndelivered(ctx context.Context, body []byte, cause error) error
}

// GatewayNotificationConsumer applies gateway webhooks relayed over Kafka.
type GatewayNotificationConsumer struct {
	consumer  *kafka.Consumer
	processor NotificationHandler
	logger    *zap.Logger
}

// NewGatewayNotificationConsumer creates a new GatewayNotificationConsumer.
func NewGatewayNotificationConsumer(
	brokers []string,
	groupID string,
	processor NotificationHandler,
	logger *zap.Logger,
) *GatewayNotificationConsumer {
	c := &GatewayNotificationConsumer{
		consumer:  kafka.NewConsumer(brokers, groupID, events.TopicGatewayNotifications, logger),
		processor: processor,
		logger:    logger,
	}
	c.consumer.OnExhausted(c.parkExhausted)
	return c
}

// Start begins consuming relayed notifications. This blocks until the context is cancelled.
func (c *GatewayNotificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *GatewayNotificationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *GatewayNotificationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from gateway topic",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.GatewayNotificationRelayed:
		return c.handleRelayed(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled gateway event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *GatewayNotificationConsumer) handleRelayed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var relayed events.RelayedNotification
	if err := cloudEvent.ParseData(&relayed); err != nil {
		c.logger.Error("failed to parse RelayedNotification data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	outcome, err := c.processor.HandleRelayed(ctx, relayed.Signature, relayed.Payload)
	if err != nil {
		var unauthorized *domain.UnauthorizedError
		if errors.As(err, &unauthorized) {
			// Already logged as a security event; a retry cannot fix the signature.
			return nil
		}
		c.logger.Error("failed to reconcile relayed notification",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("relayed notification processed",
		zap.String("event_id", cloudEvent.ID),
		zap.String("outcome", string(outcome.Status)),
		zap.String("reference", outcome.Reference),
	)
	return nil
}

// parkExhausted queues a relayed notification whose retries ran out.
func (c *GatewayNotificationConsumer) parkExhausted(ctx context.Context, msg kafkago.Message, cause error) error {
	payload := msg.Value
	if cloudEvent, err := kafka.ParseCloudEvent(msg.Value); err == nil {
		var relayed events.RelayedNotification
		if err := cloudEvent.ParseData(&relayed); err == nil && len(relayed.Payload) > 0 {
			payload = relayed.Payload
		}
	}

	if err := c.processor.ParkUndelivered(ctx, payload, cause); err != nil {
		return err
	}
	c.logger.Warn("relayed notification parked after retries",
		zap.Int64("offset", msg.Offset),
		zap.Error(cause),
	)
	return nil
}

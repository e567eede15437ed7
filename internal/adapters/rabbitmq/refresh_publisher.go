package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"kama-bff/internal/constants"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// amqpPublisher - часть rabbitmq_producer.Publisher, нужная адаптеру.
type amqpPublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// RefreshPublisherAdapter отправляет события refreshMatchingProperties в fanout-обменник.
type RefreshPublisherAdapter struct {
	producer amqpPublisher
}

func NewRefreshPublisherAdapter(producer amqpPublisher) (*RefreshPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &RefreshPublisherAdapter{producer: producer}, nil
}

func (a *RefreshPublisherAdapter) PublishRefresh(ctx context.Context, event domain.RefreshMatchingPropertiesEvent) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RefreshPublisherAdapter",
		"exchange":  constants.RefreshExchange,
		"user_id":   event.UserID,
	})

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{constants.OriginHeader: event.Origin},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.TraceIDHeader] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// fanout игнорирует ключ маршрутизации
	if err := a.producer.Publish(publishCtx, "", msg); err != nil {
		adapterLogger.Error("Failed to publish refresh event", err, nil)
		return fmt.Errorf("failed to publish refresh event: %w", err)
	}

	adapterLogger.Debug("Refresh event published", port.Fields{"reason": string(event.Reason)})
	return nil
}

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"kama-bff/internal/constants"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RefreshRelay принимает события других экземпляров из брокера и передаёт их
// в локальную шину. Собственные события (тот же origin) пропускаются:
// локальная шина их уже получила.
type RefreshRelay struct {
	local  port.RefreshPublisherPort
	origin string
	logger port.LoggerPort
}

func NewRefreshRelay(local port.RefreshPublisherPort, origin string, logger port.LoggerPort) *RefreshRelay {
	return &RefreshRelay{
		local:  local,
		origin: origin,
		logger: logger.WithFields(port.Fields{"component": "RefreshRelay"}),
	}
}

// HandleDelivery - обработчик для rabbitmq_consumer.Subscriber.
func (r *RefreshRelay) HandleDelivery(ctx context.Context, d amqp.Delivery) error {
	traceID, _ := d.Headers[constants.TraceIDHeader].(string)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	msgLogger := r.logger.WithFields(port.Fields{"trace_id": traceID})

	var event domain.RefreshMatchingPropertiesEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		msgLogger.Error("Failed to unmarshal refresh event", err, nil)
		return fmt.Errorf("invalid refresh event body: %w", err)
	}
	if event.Origin == "" {
		event.Origin, _ = d.Headers[constants.OriginHeader].(string)
	}

	if event.Origin == r.origin {
		msgLogger.Debug("Own refresh event skipped", nil)
		return nil
	}
	if event.UserID == "" {
		msgLogger.Warn("Refresh event without user id dropped", nil)
		return nil
	}

	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)

	msgLogger.Debug("Relaying refresh event from another instance", port.Fields{
		"user_id": event.UserID,
		"origin":  event.Origin,
	})
	return r.local.PublishRefresh(ctx, event)
}

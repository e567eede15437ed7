package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	"kama-bff/internal/constants"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentLogger struct{}

func (silentLogger) Info(string, port.Fields)                 {}
func (silentLogger) Warn(string, port.Fields)                 {}
func (silentLogger) Error(string, error, port.Fields)         {}
func (silentLogger) Debug(string, port.Fields)                {}
func (l silentLogger) WithFields(port.Fields) port.LoggerPort { return l }

type capturingProducer struct {
	routingKey string
	msg        amqp.Publishing
}

func (p *capturingProducer) Publish(_ context.Context, routingKey string, msg amqp.Publishing) error {
	p.routingKey = routingKey
	p.msg = msg
	return nil
}

type recordingPublisher struct {
	events []domain.RefreshMatchingPropertiesEvent
}

func (p *recordingPublisher) PublishRefresh(_ context.Context, e domain.RefreshMatchingPropertiesEvent) error {
	p.events = append(p.events, e)
	return nil
}

func TestRefreshPublisher_SetsHeaders(t *testing.T) {
	producer := &capturingProducer{}
	adapter, err := NewRefreshPublisherAdapter(producer)
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	event := domain.RefreshMatchingPropertiesEvent{UserID: "u1", Reason: domain.RefreshAlertCreated, Origin: "i-1"}
	require.NoError(t, adapter.PublishRefresh(ctx, event))

	assert.Equal(t, "application/json", producer.msg.ContentType)
	assert.Equal(t, "trace-1", producer.msg.Headers[constants.TraceIDHeader])
	assert.Equal(t, "i-1", producer.msg.Headers[constants.OriginHeader])

	var decoded domain.RefreshMatchingPropertiesEvent
	require.NoError(t, json.Unmarshal(producer.msg.Body, &decoded))
	assert.Equal(t, "u1", decoded.UserID)
}

func TestRefreshRelay_DropsOwnOrigin(t *testing.T) {
	local := &recordingPublisher{}
	relay := NewRefreshRelay(local, "i-1", silentLogger{})

	own, _ := json.Marshal(domain.RefreshMatchingPropertiesEvent{UserID: "u1", Origin: "i-1"})
	require.NoError(t, relay.HandleDelivery(context.Background(), amqp.Delivery{Body: own}))
	assert.Empty(t, local.events)

	foreign, _ := json.Marshal(domain.RefreshMatchingPropertiesEvent{UserID: "u1", Origin: "i-2"})
	require.NoError(t, relay.HandleDelivery(context.Background(), amqp.Delivery{Body: foreign}))
	require.Len(t, local.events, 1)
	assert.Equal(t, "i-2", local.events[0].Origin)
}

func TestRefreshRelay_RejectsGarbage(t *testing.T) {
	relay := NewRefreshRelay(&recordingPublisher{}, "i-1", silentLogger{})
	err := relay.HandleDelivery(context.Background(), amqp.Delivery{Body: []byte("not json")})
	assert.Error(t, err)
}

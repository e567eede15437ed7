package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"

	"kama-bff/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Ошибка приводит к Nack без повторной постановки.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// SubscriberConfig - подписка на обменник через собственную очередь экземпляра.
type SubscriberConfig struct {
	rabbitmq_common.Config
	ExchangeName string
	ExchangeType string
	RoutingKey   string
	// QueueName пустой - брокер сгенерирует имя (эксклюзивная автоудаляемая очередь).
	QueueName     string
	PrefetchCount int
	ConsumerTag   string

	Logger rabbitmq_common.Logger
}

// Subscriber доставляет каждое сообщение обменника всем экземплярам сервиса.
type Subscriber struct {
	config    SubscriberConfig
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	handler   MessageHandler
	wg        sync.WaitGroup

	Logger rabbitmq_common.Logger
}

func NewSubscriber(cfg SubscriberConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Subscriber, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("subscriber: invalid base config: %w", err)
	}
	if cfg.ExchangeName == "" || cfg.ExchangeType == "" {
		return nil, fmt.Errorf("subscriber: exchange name and type are required")
	}
	if handler == nil {
		return nil, fmt.Errorf("subscriber: message handler is required")
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("subscriber: failed to get channel from manager: %w", err)
	}

	s := &Subscriber{config: cfg, conn: conn, channel: ch, handler: handler, Logger: logger}
	if err := s.setup(); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return s, nil
}

func (s *Subscriber) setup() error {
	if s.config.PrefetchCount > 0 {
		if err := s.channel.Qos(s.config.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("subscriber: failed to set QoS: %w", err)
		}
	}

	err := s.channel.ExchangeDeclare(s.config.ExchangeName, s.config.ExchangeType, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("subscriber: failed to declare exchange '%s': %w", s.config.ExchangeName, err)
	}

	exclusive := s.config.QueueName == ""
	q, err := s.channel.QueueDeclare(
		s.config.QueueName,
		!exclusive, // durable
		exclusive,  // auto-delete
		exclusive,  // exclusive
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("subscriber: failed to declare queue: %w", err)
	}
	s.queueName = q.Name

	if err := s.channel.QueueBind(s.queueName, s.config.RoutingKey, s.config.ExchangeName, false, nil); err != nil {
		return fmt.Errorf("subscriber: failed to bind queue '%s': %w", s.queueName, err)
	}

	s.Logger.Debug("Subscriber setup complete", "queue", s.queueName, "exchange", s.config.ExchangeName)
	return nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения.
func (s *Subscriber) StartConsuming(ctx context.Context) error {
	msgs, err := s.channel.Consume(s.queueName, s.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("subscriber: failed to register a consumer on queue '%s': %w", s.queueName, err)
	}
	s.Logger.Info("[*] Waiting for messages", "queue_name", s.queueName)

	notifyClose := s.conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("Context cancelled, stopping subscriber", "queue_name", s.queueName)
			return nil

		case amqpErr := <-notifyClose:
			if amqpErr == nil {
				return nil
			}
			s.Logger.Error(amqpErr, "Connection closed for subscriber")
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				s.Logger.Info("Deliveries channel closed", "queue_name", s.queueName)
				return nil
			}
			s.wg.Add(1)
			func() {
				defer s.wg.Done()
				if err := s.handler(ctx, d); err != nil {
					s.Logger.Error(err, "Handler error for message", "delivery_tag", d.DeliveryTag)
					_ = d.Nack(false, false)
					return
				}
				_ = d.Ack(false)
			}()
		}
	}
}

// Close ждёт текущий обработчик и закрывает канал.
func (s *Subscriber) Close() error {
	s.wg.Wait()
	if s.channel == nil {
		return nil
	}
	err := s.channel.Close()
	s.channel = nil
	if err != nil {
		s.Logger.Error(err, "Error closing channel")
		return err
	}
	s.Logger.Info("Subscriber closed")
	return nil
}

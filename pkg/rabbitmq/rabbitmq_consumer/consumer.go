package rabbitmq_consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wg-parser-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Пакет сам решает, делать ack или nack.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// ErrPermanent помечает ошибку, при которой повторная доставка бессмысленна
// (невалидное сообщение, неизвестный город и т.п.)
var ErrPermanent = errors.New("permanent message error")

// ConsumerConfig конфигурация потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName    string
	DurableQueue bool

	ExchangeName string // обменник, к которому привязывается очередь
	ExchangeType string
	RoutingKey   string

	// DeadLetterExchange получает сообщения, от которых отказались окончательно.
	// Если пусто, такие сообщения просто отбрасываются брокером.
	DeadLetterExchange string

	PrefetchCount int
	ConsumerTag   string

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("consumer: invalid base config: %w", err)
	}
	if c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required")
	}
	if c.ExchangeName != "" && c.ExchangeType == "" {
		return fmt.Errorf("consumer: exchange type is required when exchange name is set")
	}
	return nil
}

// Consumer читает очередь и обрабатывает сообщения строго по одному
type Consumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	handler    MessageHandler
	wg         sync.WaitGroup

	Logger rabbitmq_common.Logger
}

// NewConsumer открывает канал и объявляет обменник, очередь и привязку
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}

	c := &Consumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		handler:    handler,
		Logger:     logger,
	}

	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}
	return c, nil
}

func (c *Consumer) setup() error {
	if c.config.PrefetchCount > 0 {
		if err := c.channel.Qos(c.config.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	var queueArgs amqp.Table
	if c.config.DeadLetterExchange != "" {
		if err := c.channel.ExchangeDeclare(c.config.DeadLetterExchange, "fanout", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare dead letter exchange '%s': %w", c.config.DeadLetterExchange, err)
		}
		dlq := c.config.QueueName + ".dead"
		if _, err := c.channel.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare dead letter queue '%s': %w", dlq, err)
		}
		if err := c.channel.QueueBind(dlq, "", c.config.DeadLetterExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind dead letter queue: %w", err)
		}
		queueArgs = amqp.Table{"x-dead-letter-exchange": c.config.DeadLetterExchange}
	}

	if c.config.ExchangeName != "" {
		c.Logger.Debug("Declaring exchange", "name", c.config.ExchangeName, "type", c.config.ExchangeType)
		if err := c.channel.ExchangeDeclare(c.config.ExchangeName, c.config.ExchangeType, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange '%s': %w", c.config.ExchangeName, err)
		}
	}

	c.Logger.Debug("Declaring queue", "name", c.config.QueueName, "durable", c.config.DurableQueue)
	if _, err := c.channel.QueueDeclare(c.config.QueueName, c.config.DurableQueue, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
	}

	if c.config.ExchangeName != "" {
		if err := c.channel.QueueBind(c.config.QueueName, c.config.RoutingKey, c.config.ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.config.QueueName, c.config.ExchangeName, err)
		}
	}
	return nil
}

// ackDecision - что делать с сообщением после обработчика
type ackDecision int

const (
	decisionAck ackDecision = iota
	decisionRequeue
	decisionReject
)

// decide: успех подтверждаем, постоянную ошибку отклоняем сразу,
// временную повторяем один раз и потом отклоняем (уходит в DLX, если он задан)
func decide(handlerErr error, redelivered bool) ackDecision {
	switch {
	case handlerErr == nil:
		return decisionAck
	case errors.Is(handlerErr, ErrPermanent):
		return decisionReject
	case !redelivered:
		return decisionRequeue
	default:
		return decisionReject
	}
}

// StartConsuming блокируется до отмены контекста или закрытия соединения
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.config.QueueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer: failed to register on queue '%s': %w", c.config.QueueName, err)
	}
	c.Logger.Info("[*] Waiting for messages", "queue_name", c.config.QueueName)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, stopping consumer", "queue_name", c.config.QueueName)
			return nil
		case amqpErr := <-notifyClose:
			c.Logger.Error(amqpErr, "Connection closed for consumer", "queue_name", c.config.QueueName)
			if amqpErr == nil {
				return fmt.Errorf("consumer: connection closed")
			}
			return amqpErr
		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed", "queue_name", c.config.QueueName)
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	c.wg.Add(1)
	defer c.wg.Done()

	err := c.handler(ctx, d)
	switch decide(err, d.Redelivered) {
	case decisionAck:
		_ = d.Ack(false)
	case decisionRequeue:
		c.Logger.Warn("Handler failed, requeueing once", "delivery_tag", d.DeliveryTag, "error", err.Error())
		_ = d.Nack(false, true)
	case decisionReject:
		c.Logger.Error(err, "Handler failed, rejecting message", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
	}
}

// Close дожидается текущего обработчика и закрывает канал
func (c *Consumer) Close() error {
	c.wg.Wait()
	if c.channel == nil {
		return nil
	}
	err := c.channel.Close()
	c.channel = nil
	if err != nil {
		c.Logger.Error(err, "Error closing channel")
		return err
	}
	c.Logger.Info("Consumer closed", "queue_name", c.config.QueueName)
	return nil
}

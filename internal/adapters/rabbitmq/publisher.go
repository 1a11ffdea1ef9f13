package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wg-parser-service/internal/contextkeys"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// messagePublisher - то, что адаптерам нужно от rabbitmq_producer.Publisher
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// buildMessage упаковывает DTO в сохраняемое JSON-сообщение с trace_id из контекста
func buildMessage(ctx context.Context, dto interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(dto)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Headers:      make(amqp.Table),
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}
	return msg, nil
}

func publishWithTimeout(ctx context.Context, p messagePublisher, routingKey string, msg amqp.Publishing) error {
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.Publish(publishCtx, routingKey, msg)
}

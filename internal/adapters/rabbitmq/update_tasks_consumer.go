package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	logger_adapter "wg-parser-service/internal/adapters/logger"
	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/contracts"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
	"wg-parser-service/internal/core/port/usecases_port"
	"wg-parser-service/pkg/rabbitmq/rabbitmq_common"
	"wg-parser-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// UpdateTasksConsumerAdapter запускает внеочередное обновление города по сообщению из очереди
type UpdateTasksConsumerAdapter struct {
	consumer *rabbitmq_consumer.Consumer
	updateUC usecases_port.UpdateActiveAdsUseCase
	logger   port.LoggerPort
}

func NewUpdateTasksConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	updateUC usecases_port.UpdateActiveAdsUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*UpdateTasksConsumerAdapter, error) {
	adapter := &UpdateTasksConsumerAdapter{
		updateUC: updateUC,
		logger:   logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = logger_adapter.NewKeyValueBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for update tasks: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func (a *UpdateTasksConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	task, err := decodeUpdateTask(d.Body)
	if err != nil {
		msgLogger.Error("Invalid update task, rejecting message", err, nil)
		return err
	}

	taskLogger := msgLogger.WithFields(port.Fields{"task_id": task.TaskID.String(), "city": task.CityName})
	ctx = contextkeys.ContextWithLogger(ctx, taskLogger)
	taskLogger.Info("Received update task", nil)

	_, err = a.updateUC.Execute(ctx, task.CityName)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrRunInProgress):
		// город уже обновляется, повторный прогон ничего не добавит
		taskLogger.Warn("Update already running for city, task dropped", nil)
		return nil
	case errors.Is(err, domain.ErrUnknownCity):
		return fmt.Errorf("%w: %w", rabbitmq_consumer.ErrPermanent, err)
	default:
		taskLogger.Error("Update use case failed", err, nil)
		return err
	}
}

// decodeUpdateTask проверяет сообщение по схеме и разбирает его.
// Любая ошибка здесь постоянная: повторная доставка того же тела не поможет.
func decodeUpdateTask(body []byte) (*domain.UpdateTask, error) {
	if err := contracts.ValidateEvent(contracts.UpdateTaskEvent, contracts.Version1, body); err != nil {
		return nil, fmt.Errorf("%w: %w", rabbitmq_consumer.ErrPermanent, err)
	}

	var dto UpdateTaskDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("%w: unmarshal error: %w", rabbitmq_consumer.ErrPermanent, err)
	}
	return &domain.UpdateTask{CityName: dto.CityName, TaskID: dto.TaskID}, nil
}

// Start реализует EventListenerPort
func (a *UpdateTasksConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *UpdateTasksConsumerAdapter) Close() error {
	return a.consumer.Close()
}

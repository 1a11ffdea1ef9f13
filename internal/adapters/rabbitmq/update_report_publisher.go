package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
)

type UpdateReportPublisherAdapter struct {
	producer   messagePublisher
	routingKey string
}

func NewUpdateReportPublisherAdapter(producer messagePublisher, routingKey string) (*UpdateReportPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &UpdateReportPublisherAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *UpdateReportPublisherAdapter) PublishUpdateReport(ctx context.Context, report domain.UpdateReport) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "UpdateReportPublisherAdapter",
		"routing_key": a.routingKey,
		"run_id":      report.RunID.String(),
	})

	msg, err := buildMessage(ctx, toUpdateReportDTO(report), time.Now())
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: %w", err)
	}

	if err := publishWithTimeout(ctx, a.producer, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish update report", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish update report %s: %w", report.RunID, err)
	}

	adapterLogger.Debug("Update report published", nil)
	return nil
}

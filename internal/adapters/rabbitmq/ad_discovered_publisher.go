package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
)

type AdDiscoveredPublisherAdapter struct {
	producer   messagePublisher
	routingKey string
}

func NewAdDiscoveredPublisherAdapter(producer messagePublisher, routingKey string) (*AdDiscoveredPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &AdDiscoveredPublisherAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *AdDiscoveredPublisherAdapter) PublishAdDiscovered(ctx context.Context, ad domain.Ad) error {
	msg, err := buildMessage(ctx, toAdDiscoveredDTO(ad), time.Now())
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: %w", err)
	}

	if err := publishWithTimeout(ctx, a.producer, a.routingKey, msg); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to publish discovered ad", err, port.Fields{
			"component":   "AdDiscoveredPublisherAdapter",
			"routing_key": a.routingKey,
			"ad_id":       ad.AdID,
		})
		return fmt.Errorf("rabbitmq adapter: failed to publish ad %d: %w", ad.AdID, err)
	}
	return nil
}

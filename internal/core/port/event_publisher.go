package port

import (
	"context"

	"wg-parser-service/internal/core/domain"
)

// UpdateReportPublisherPort отправляет итог прогона обновления
type UpdateReportPublisherPort interface {
	PublishUpdateReport(ctx context.Context, report domain.UpdateReport) error
}

// AdDiscoveredPublisherPort сообщает о новом сохраненном объявлении
type AdDiscoveredPublisherPort interface {
	PublishAdDiscovered(ctx context.Context, ad domain.Ad) error
}

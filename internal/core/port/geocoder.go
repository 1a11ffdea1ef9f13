package port

import (
	"context"

	"wg-parser-service/internal/core/domain"
)

// GeocoderPort переводит адрес в координаты
type GeocoderPort interface {
	Geocode(ctx context.Context, address string) (*domain.GeoLocation, error)
}

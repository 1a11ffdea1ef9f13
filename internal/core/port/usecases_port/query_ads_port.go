package usecases_port

import (
	"context"

	"wg-parser-service/internal/core/domain"
)

type QueryAdsUseCase interface {
	ListAds(ctx context.Context, filter domain.AdFilter) ([]domain.Ad, error)
	Stats(ctx context.Context) ([]domain.CityStats, error)
}
